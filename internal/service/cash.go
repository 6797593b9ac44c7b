package service

import (
	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// CashMode selects how ledger rows move the cash balance.
type CashMode int

const (
	// CashStandard counts every cash-affecting row.
	CashStandard CashMode = iota
	// CashExcludingFlows ignores deposits and withdrawals, isolating investment activity.
	CashExcludingFlows
)

func (m CashMode) String() string {
	if m == CashExcludingFlows {
		return "excluding-flows"
	}
	return "standard"
}

// CashImpact returns the signed cash effect of one ledger row.
// Outflow types subtract the absolute value whatever sign the statement used;
// types outside either set, such as internal transfers, have no effect.
func CashImpact(t model.TransactionType, value decimal.Decimal, mode CashMode) decimal.Decimal {
	switch t {
	case model.TypeInterest, model.TypeSell, model.TypeDividend, model.TypeLoyaltyPayment:
		return value
	case model.TypeBuy, model.TypeFee:
		return value.Abs().Neg()
	case model.TypeDeposit:
		if mode == CashExcludingFlows {
			return decimal.Zero
		}
		return value
	case model.TypeWithdrawal:
		if mode == CashExcludingFlows {
			return decimal.Zero
		}
		return value.Abs().Neg()
	}
	return decimal.Zero
}

// CashBalance replays the rows in order and returns the resulting balance.
// An empty ledger has a zero balance.
func CashBalance(transactions []model.Transaction, mode CashMode) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range transactions {
		balance = balance.Add(CashImpact(t.Type, t.Value, mode))
	}
	return balance
}
