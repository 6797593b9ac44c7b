package classifier

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		reference   string
		description string
		value       string
		want        model.TransactionType
	}{
		{"buy by reference prefix", "B0123", "Transfer to Capital Account", "-10.00", model.TypeBuy},
		{"sell by reference prefix", "S998877", "Vanguard 10 @ 100", "1000.00", model.TypeSell},
		{"interest", "Interest", "Gross interest", "1.23", model.TypeInterest},
		{"management fee", "Manage Fee", "Management fee", "-4.50", model.TypeFee},
		{"transfer from income account", "Cash", "Transfer from Income Account", "5.00", model.TypeTransferFromIncomeAccount},
		{"transfer to capital account", "Cash", "Transfer to Capital Account", "-5.00", model.TypeTransferToCapitalAccount},
		{"overseas dividend", "Ovr Cr", "Apple Inc dividend", "3.10", model.TypeDividend},
		{"unit trust distribution", "UTG CR", "Fund distribution", "7.77", model.TypeDividend},
		{"loyalty bonus", "LoyaltyU", "Loyalty bonus", "0.42", model.TypeLoyaltyPayment},
		{"negative transfer", "TRANSFER", "Card payment", "-50.00", model.TypeWithdrawal},
		{"title-cased negative transfer", "Transfer", "Withdrawal to bank", "-50.00", model.TypeWithdrawal},
		{"positive transfer", "TRANSFER", "Card payment", "50.00", model.TypeDeposit},
		{"unmatched", "Fpc", "Faster payment", "100.00", model.TypeDeposit},
		{"reference is trimmed", "  interest ", "", "1.00", model.TypeInterest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.reference, tt.description, decimal.RequireFromString(tt.value))
			if got != tt.want {
				t.Errorf("Classify(%q, %q, %s) = %q, want %q", tt.reference, tt.description, tt.value, got, tt.want)
			}
		})
	}
}

func TestStripTradeSuffix(t *testing.T) {
	tests := map[string]string{
		"Vanguard FTSE All-World 100 @ 95.2":    "Vanguard FTSE All-World",
		"Legal & General 12.5 @ 101.3 (ACC)":    "Legal & General",
		"Apple Inc  3@170":                      "Apple Inc",
		"Fundsmith Equity Class I Accumulation": "Fundsmith Equity Class I Accumulation",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := StripTradeSuffix(in); got != want {
				t.Errorf("StripTradeSuffix(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestTickerIndex(t *testing.T) {
	index := NewTickerIndex([]model.TickerEntry{
		{Ticker: "VWRL", MatchText: "Vanguard"},
		{Ticker: "VWRP", MatchText: "Vanguard FTSE"},
		{Ticker: "EMPTY", MatchText: "  "},
		{Ticker: "AAPL", MatchText: "apple inc"},
	})

	t.Run("prefers the longest matching prefix", func(t *testing.T) {
		got := index.Resolve(model.TypeBuy, "Vanguard FTSE All-World 100 @ 95.2")
		if got == nil || *got != "VWRP" {
			t.Errorf("Expected VWRP, got %v", got)
		}
	})

	t.Run("falls back to a shorter prefix", func(t *testing.T) {
		got := index.Resolve(model.TypeSell, "Vanguard LifeStrategy 60% 10 @ 200")
		if got == nil || *got != "VWRL" {
			t.Errorf("Expected VWRL, got %v", got)
		}
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		got := index.Resolve(model.TypeDividend, "APPLE INC ORD USD")
		if got == nil || *got != "AAPL" {
			t.Errorf("Expected AAPL, got %v", got)
		}
	})

	t.Run("ignores types without a security", func(t *testing.T) {
		if got := index.Resolve(model.TypeDeposit, "Vanguard FTSE"); got != nil {
			t.Errorf("Expected nil ticker for deposit, got %q", *got)
		}
	})

	t.Run("returns nil when nothing matches", func(t *testing.T) {
		if got := index.Resolve(model.TypeBuy, "Fundsmith Equity 10 @ 5"); got != nil {
			t.Errorf("Expected nil ticker, got %q", *got)
		}
	})

	t.Run("skips blank match text", func(t *testing.T) {
		if index.Len() != 3 {
			t.Errorf("Expected 3 usable entries, got %d", index.Len())
		}
	})
}
