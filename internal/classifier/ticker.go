package classifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// tradeSuffix matches the trailing " <quantity> @ <price>" of a dealing description.
var tradeSuffix = regexp.MustCompile(`\s+\d[\d.]*\s*@.*$`)

// StripTradeSuffix returns the security name part of a description.
func StripTradeSuffix(description string) string {
	return strings.TrimSpace(tradeSuffix.ReplaceAllString(description, ""))
}

type tickerMatch struct {
	ticker string
	prefix string
}

// TickerIndex resolves security names to tickers by longest case-insensitive
// prefix. It is immutable once built and safe for concurrent use.
type TickerIndex struct {
	matches []tickerMatch
}

// NewTickerIndex builds an index from reference entries. Entries with an
// empty match text are ignored.
func NewTickerIndex(entries []model.TickerEntry) *TickerIndex {
	matches := make([]tickerMatch, 0, len(entries))
	for _, e := range entries {
		prefix := strings.ToLower(strings.TrimSpace(e.MatchText))
		if prefix == "" || e.Ticker == "" {
			continue
		}
		matches = append(matches, tickerMatch{ticker: e.Ticker, prefix: prefix})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if len(matches[i].prefix) != len(matches[j].prefix) {
			return len(matches[i].prefix) > len(matches[j].prefix)
		}
		return matches[i].ticker < matches[j].ticker
	})
	return &TickerIndex{matches: matches}
}

// Lookup returns the ticker whose match text is the longest prefix of name.
func (ix *TickerIndex) Lookup(name string) (string, bool) {
	if ix == nil {
		return "", false
	}
	lower := strings.ToLower(name)
	for _, m := range ix.matches {
		if strings.HasPrefix(lower, m.prefix) {
			return m.ticker, true
		}
	}
	return "", false
}

// Resolve returns the ticker for a Buy, Sell or Dividend description, or nil.
func (ix *TickerIndex) Resolve(t model.TransactionType, description string) *string {
	if !t.ResolvesTicker() {
		return nil
	}
	ticker, ok := ix.Lookup(StripTradeSuffix(description))
	if !ok {
		return nil
	}
	return &ticker
}

// Len reports the number of usable entries.
func (ix *TickerIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.matches)
}
