package service

import (
	"testing"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

func TestValuationCache_InvalidateFrom(t *testing.T) {
	cache := NewValuationCache(time.Minute)
	isa := model.AccountKey{ClientName: "David", AccountType: model.AccountISA}
	sipp := model.AccountKey{ClientName: "David", AccountType: model.AccountSIPP}
	day := func(s string) time.Time {
		d, _ := time.Parse(dateLayout, s)
		return d
	}

	cache.set(isa, day("2024-03-01"), CashStandard, &model.Valuation{})
	cache.set(isa, day("2024-03-10"), CashStandard, &model.Valuation{})
	cache.set(isa, day("2024-03-10"), CashExcludingFlows, &model.Valuation{})
	cache.set(sipp, day("2024-03-10"), CashStandard, &model.Valuation{})

	if removed := cache.InvalidateFrom(isa, day("2024-03-05")); removed != 2 {
		t.Errorf("Expected 2 entries removed, got %d", removed)
	}
	if _, ok := cache.get(isa, day("2024-03-01"), CashStandard); !ok {
		t.Error("Expected the earlier valuation to survive")
	}
	if _, ok := cache.get(sipp, day("2024-03-10"), CashStandard); !ok {
		t.Error("Expected other accounts to be untouched")
	}
}

func TestValuationCache_Nil(t *testing.T) {
	var cache *ValuationCache
	key := model.AccountKey{ClientName: "David", AccountType: model.AccountISA}

	cache.set(key, time.Now(), CashStandard, &model.Valuation{})
	if _, ok := cache.get(key, time.Now(), CashStandard); ok {
		t.Error("Expected a nil cache to miss")
	}
	if cache.InvalidateFrom(key, time.Now()) != 0 || cache.Len() != 0 {
		t.Error("Expected a nil cache to be empty")
	}
}

func TestKeyedMutex(t *testing.T) {
	locks := newKeyedMutex()
	unlock := locks.Lock("a")

	done := make(chan struct{})
	go func() {
		release := locks.Lock("b")
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Lock on a different key blocked")
	}
	unlock()
}
