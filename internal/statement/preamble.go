package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
)

// ClientInfo is the account holder read from the statement preamble.
type ClientInfo struct {
	RawName string
	Name    string
	Number  string
}

var (
	clientNumberPattern = regexp.MustCompile(`\d{5,}`)
	jenWord             = regexp.MustCompile(`\bjen\b`)
)

// ScanPreamble finds the "Client name" and "Client number" lines. The number
// is the first run of five or more digits on its line; the name is the text
// after the first colon.
func ScanPreamble(lines []string) (ClientInfo, error) {
	var info ClientInfo
	for _, line := range lines {
		lower := strings.ToLower(line)
		if info.Number == "" && strings.Contains(lower, "client number") {
			info.Number = clientNumberPattern.FindString(line)
		}
		if info.RawName == "" && strings.Contains(lower, "client name") {
			if _, after, ok := strings.Cut(line, ":"); ok {
				info.RawName = strings.Trim(after, "\" ,;\t")
			}
		}
		if info.RawName != "" && info.Number != "" {
			break
		}
	}

	if info.RawName == "" || info.Number == "" {
		return ClientInfo{}, fmt.Errorf("%w: name=%t number=%t",
			apperrors.ErrMissingClientInfo, info.RawName != "", info.Number != "")
	}
	info.Name = MapClientName(info.RawName)
	return info, nil
}

// MapClientName maps a statement holder name onto its display alias.
// Names matching no alias are returned unchanged.
func MapClientName(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "david"):
		return "David"
	case strings.Contains(s, "jenifer"), strings.Contains(s, "jennifer"), jenWord.MatchString(s):
		return "Jen"
	}
	return raw
}
