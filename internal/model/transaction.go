package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
)

// TransactionType is the closed set of canonical ledger row kinds.
// The string value is what gets persisted.
type TransactionType string

const (
	TypeBuy                       TransactionType = "Buy"
	TypeSell                      TransactionType = "Sell"
	TypeInterest                  TransactionType = "Interest"
	TypeFee                       TransactionType = "Fee"
	TypeDividend                  TransactionType = "Dividend"
	TypeLoyaltyPayment            TransactionType = "Loyalty Payment"
	TypeTransferFromIncomeAccount TransactionType = "Transfer from Income Account"
	TypeTransferToCapitalAccount  TransactionType = "Transfer to Capital Account"
	TypeWithdrawal                TransactionType = "Withdrawal"
	TypeDeposit                   TransactionType = "Deposit"
)

var transactionTypes = map[TransactionType]struct{}{
	TypeBuy:                       {},
	TypeSell:                      {},
	TypeInterest:                  {},
	TypeFee:                       {},
	TypeDividend:                  {},
	TypeLoyaltyPayment:            {},
	TypeTransferFromIncomeAccount: {},
	TypeTransferToCapitalAccount:  {},
	TypeWithdrawal:                {},
	TypeDeposit:                   {},
}

// ParseTransactionType returns the TransactionType whose stored form is exactly s.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if _, ok := transactionTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidTransactionType, s)
	}
	return t, nil
}

// ResolvesTicker reports whether rows of this type carry a security identifier.
func (t TransactionType) ResolvesTicker() bool {
	return t == TypeBuy || t == TypeSell || t == TypeDividend
}

// Storage scales for ledger amounts.
const (
	QuantityScale int32 = 6
	UnitCostScale int32 = 6
	ValueScale    int32 = 2
)

// Transaction is one accepted row of the ledger.
// Decimal fields are kept at their import scale: 6 places for unit cost and
// quantity, 2 places for value.
type Transaction struct {
	ID            string              `json:"id"`
	ClientName    string              `json:"clientName"`
	ClientNumber  string              `json:"clientNumber"`
	AccountType   AccountType         `json:"accountType"`
	TradeDate     time.Time           `json:"tradeDate"`
	SettleDate    *time.Time          `json:"settleDate"`
	Reference     string              `json:"reference"`
	Description   string              `json:"description"`
	Type          TransactionType     `json:"type"`
	Ticker        *string             `json:"ticker"`
	UnitCost      decimal.NullDecimal `json:"unitCost"`
	Quantity      decimal.NullDecimal `json:"quantity"`
	Value         decimal.Decimal     `json:"value"`
	ImportBatchID *string             `json:"importBatchId"`
	CreatedAt     time.Time           `json:"createdAt,omitempty"`
}

// TransactionFilter narrows a ledger listing. Zero values are ignored.
// From and To are inclusive trade dates.
type TransactionFilter struct {
	ClientName  string
	AccountType AccountType
	From        time.Time
	To          time.Time
	Types       []TransactionType
}
