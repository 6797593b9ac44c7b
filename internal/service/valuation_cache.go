package service

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

const cacheKeySep = "\x1f"

// ValuationCache memoises valuations per account, date and cash mode.
// Entries for an account are dropped from a date onwards whenever the ledger
// changes on or before that date. A nil cache is valid and caches nothing.
type ValuationCache struct {
	c *cache.Cache
}

// NewValuationCache creates a cache whose entries expire after ttl.
func NewValuationCache(ttl time.Duration) *ValuationCache {
	return &ValuationCache{c: cache.New(ttl, 2*ttl)}
}

func valuationKey(key model.AccountKey, date time.Time, mode CashMode) string {
	return strings.Join([]string{key.ClientName, string(key.AccountType), date.Format(dateLayout), mode.String()}, cacheKeySep)
}

func (vc *ValuationCache) get(key model.AccountKey, date time.Time, mode CashMode) (*model.Valuation, bool) {
	if vc == nil {
		return nil, false
	}
	v, ok := vc.c.Get(valuationKey(key, date, mode))
	if !ok {
		return nil, false
	}
	valuation, ok := v.(*model.Valuation)
	return valuation, ok
}

func (vc *ValuationCache) set(key model.AccountKey, date time.Time, mode CashMode, v *model.Valuation) {
	if vc == nil {
		return
	}
	vc.c.SetDefault(valuationKey(key, date, mode), v)
}

// InvalidateFrom drops every cached valuation of the account dated on or after from.
// It returns the number of entries removed.
func (vc *ValuationCache) InvalidateFrom(key model.AccountKey, from time.Time) int {
	if vc == nil {
		return 0
	}
	cutoff := from.Format(dateLayout)
	removed := 0
	for k := range vc.c.Items() {
		parts := strings.Split(k, cacheKeySep)
		if len(parts) != 4 || parts[0] != key.ClientName || parts[1] != string(key.AccountType) {
			continue
		}
		if parts[2] >= cutoff {
			vc.c.Delete(k)
			removed++
		}
	}
	return removed
}

func (vc *ValuationCache) itemCount() int {
	if vc == nil {
		return 0
	}
	return vc.c.ItemCount()
}

// Flush drops every entry. Price changes can affect any account.
func (vc *ValuationCache) Flush() {
	if vc == nil {
		return
	}
	vc.c.Flush()
}
