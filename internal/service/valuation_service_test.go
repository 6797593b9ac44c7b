package service_test

import (
	"context"
	"testing"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/testutil"
)

var davidISA = model.AccountKey{ClientName: testutil.DefaultClientName, AccountType: model.AccountISA}

func TestValuationService_Calculate(t *testing.T) {
	ctx := context.Background()

	// A deposit, a buy of 10 VWRL and prices of 96.5 from 1 March and 98 from 28 March.
	setup := func(t *testing.T) *testutil.Services {
		t.Helper()
		db := testutil.SetupTestDB(t)
		testutil.NewTransaction().WithTradeDate(testutil.Date("2024-02-29")).WithValue("1000").Build(t, db)
		testutil.NewTransaction().
			WithTradeDate(testutil.Date("2024-03-01")).
			WithReference("B123").
			WithType(model.TypeBuy).
			WithTicker("VWRL").
			WithQuantity("10").
			WithValue("-950").
			Build(t, db)
		testutil.CreatePrice(t, db, "VWRL", "2024-03-01", "96.5", "GBP")
		testutil.CreatePrice(t, db, "VWRL", "2024-03-28", "98", "GBP")
		return testutil.NewTestServices(t, db)
	}

	t.Run("values holdings at the latest price on or before the date", func(t *testing.T) {
		svcs := setup(t)

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-03-27"), service.CashStandard)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}

		if len(v.Positions) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(v.Positions))
		}
		if v.Positions[0].PriceDate != "2024-03-01" {
			t.Errorf("Expected carried-forward price from 2024-03-01, got %s", v.Positions[0].PriceDate)
		}
		testutil.AssertDecimal(t, "position value", v.Positions[0].Value, "965")
		testutil.AssertDecimal(t, "cash", v.Cash, "50")
		testutil.AssertDecimal(t, "GBP bucket", v.HoldingsByCurrency["GBP"], "1015")
		testutil.AssertDecimal(t, "total", v.Total, "1015")
	})

	t.Run("picks up a newer price", func(t *testing.T) {
		svcs := setup(t)

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-03-31"), service.CashStandard)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		testutil.AssertDecimal(t, "total", v.Total, "1030")
	})

	t.Run("returns zeros when nothing is held", func(t *testing.T) {
		svcs := setup(t)

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-02-29"), service.CashStandard)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if !v.Total.IsZero() || !v.Cash.IsZero() {
			t.Errorf("Expected zero valuation, got total=%s cash=%s", v.Total, v.Cash)
		}
		if len(v.HoldingsByCurrency) != 0 || len(v.Positions) != 0 {
			t.Errorf("Expected no holdings, got %v", v.HoldingsByCurrency)
		}
	})

	t.Run("excludes positions without a price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		testutil.Buy(t, db, model.AccountISA, "2024-03-01", "NOPRICE", "5")

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-03-31"), service.CashStandard)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if len(v.Unpriced) != 1 || v.Unpriced[0] != "NOPRICE" {
			t.Errorf("Expected NOPRICE unpriced, got %v", v.Unpriced)
		}
		testutil.AssertDecimal(t, "cash", v.Cash, "-100")
		testutil.AssertDecimal(t, "total", v.Total, "-100")
	})

	t.Run("keeps cash when a buy has no ticker", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		testutil.NewTransaction().WithTradeDate(testutil.Date("2024-02-29")).WithValue("1000").Build(t, db)
		testutil.NewTransaction().
			WithTradeDate(testutil.Date("2024-03-01")).
			WithReference("B456").
			WithType(model.TypeBuy).
			WithQuantity("10").
			WithValue("-950").
			Build(t, db)

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-03-27"), service.CashStandard)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if len(v.Positions) != 0 || len(v.Unpriced) != 0 {
			t.Errorf("Expected no priced or unpriced positions, got %v / %v", v.Positions, v.Unpriced)
		}
		testutil.AssertDecimal(t, "cash", v.Cash, "50")
		testutil.AssertDecimal(t, "GBP bucket", v.HoldingsByCurrency["GBP"], "50")
		testutil.AssertDecimal(t, "total", v.Total, "50")
	})

	t.Run("ignores closed positions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		testutil.Buy(t, db, model.AccountISA, "2024-03-01", "VWRL", "5")
		testutil.Sell(t, db, model.AccountISA, "2024-03-02", "VWRL", "5")
		testutil.CreatePrice(t, db, "VWRL", "2024-03-01", "100", "GBP")

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-03-31"), service.CashStandard)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if !v.Total.IsZero() {
			t.Errorf("Expected zero total, got %s", v.Total)
		}
	})

	t.Run("groups holdings by price currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		testutil.Buy(t, db, model.AccountISA, "2024-03-01", "VWRL", "10")
		testutil.Buy(t, db, model.AccountISA, "2024-03-01", "AAPL", "2")
		testutil.CreatePrice(t, db, "VWRL", "2024-03-01", "100", "GBP")
		testutil.CreatePrice(t, db, "AAPL", "2024-03-01", "170.25", "USD")

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-03-01"), service.CashStandard)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		testutil.AssertDecimal(t, "USD bucket", v.HoldingsByCurrency["USD"], "340.5")
		testutil.AssertDecimal(t, "GBP bucket", v.HoldingsByCurrency["GBP"], "800")
		testutil.AssertDecimal(t, "total", v.Total, "1140.5")
	})

	t.Run("excluding flows ignores deposits", func(t *testing.T) {
		svcs := setup(t)

		v, err := svcs.Valuation.Calculate(ctx, davidISA, testutil.Date("2024-03-31"), service.CashExcludingFlows)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		testutil.AssertDecimal(t, "cash", v.Cash, "-950")
		testutil.AssertDecimal(t, "total", v.Total, "30")
	})
}

func TestValuationService_CurrentValuation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	testutil.Buy(t, db, model.AccountISA, "2024-03-01", "VWRL", "10")
	testutil.CreateLatestPrice(t, db, "VWRL", "2024-06-01", "110", "GBP")

	v, err := svcs.Valuation.CurrentValuation(context.Background(), davidISA)
	if err != nil {
		t.Fatalf("CurrentValuation() error = %v", err)
	}
	testutil.AssertDecimal(t, "total", v.Total, "1000")
}

func TestValuationService_CacheInvalidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	testutil.CreateTicker(t, db, "VWRL", "Vanguard FTSE All-World")
	testutil.CreatePrice(t, db, "VWRL", "2024-03-01", "100", "GBP")

	first := testutil.Statement("Mr David Appleyard", testutil.DefaultClientNumber,
		"01/03/2024,05/03/2024,B123,Vanguard FTSE All-World 10 @ 95.00,9500,10,-950.00",
	)
	if _, err := svcs.Import.Import(ctx, first, model.AccountISA); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	before, err := svcs.Valuation.Valuation(ctx, davidISA, testutil.Date("2024-03-31"), service.CashStandard)
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}
	testutil.AssertDecimal(t, "total before", before.Total, "50")
	if svcs.Cache.Len() != 1 {
		t.Fatalf("Expected 1 cached valuation, got %d", svcs.Cache.Len())
	}

	second := testutil.Statement("Mr David Appleyard", testutil.DefaultClientNumber,
		"15/03/2024,,B999,Vanguard FTSE All-World 5 @ 97,9700,5,-485.00",
	)
	if _, err := svcs.Import.Import(ctx, second, model.AccountISA); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if svcs.Cache.Len() != 0 {
		t.Errorf("Expected cache to be invalidated, got %d entries", svcs.Cache.Len())
	}

	after, err := svcs.Valuation.Valuation(ctx, davidISA, testutil.Date("2024-03-31"), service.CashStandard)
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}
	testutil.AssertDecimal(t, "total after", after.Total, "65")
}
