package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/repository"
)

// Default identity of ledger rows built in tests.
const (
	DefaultClientName   = "David"
	DefaultClientNumber = "1234567"
)

// TransactionBuilder provides a fluent interface for creating ledger rows.
//
// Example usage:
//
//	// Simple creation with defaults
//	tx := testutil.NewTransaction().Build(t, db)
//
//	// A buy of 10 VWRL on 1 March
//	tx := testutil.NewTransaction().
//	    WithType(model.TypeBuy).
//	    WithTicker("VWRL").
//	    WithQuantity("10").
//	    WithValue("-950.00").
//	    WithTradeDate(testutil.Date("2024-03-01")).
//	    Build(t, db)
type TransactionBuilder struct {
	tx model.Transaction
}

// NewTransaction creates a TransactionBuilder for a £100 deposit into David's ISA.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{tx: model.Transaction{
		ClientName:   DefaultClientName,
		ClientNumber: DefaultClientNumber,
		AccountType:  model.AccountISA,
		TradeDate:    Date("2024-01-02"),
		Reference:    "Card Payment",
		Description:  "Deposit",
		Type:         model.TypeDeposit,
		Value:        decimal.NewFromInt(100),
	}}
}

// WithClient sets the display name and client number.
func (b *TransactionBuilder) WithClient(name, number string) *TransactionBuilder {
	b.tx.ClientName = name
	b.tx.ClientNumber = number
	return b
}

// WithAccount sets the account type.
func (b *TransactionBuilder) WithAccount(a model.AccountType) *TransactionBuilder {
	b.tx.AccountType = a
	return b
}

// WithTradeDate sets the trade date.
func (b *TransactionBuilder) WithTradeDate(d time.Time) *TransactionBuilder {
	b.tx.TradeDate = d
	return b
}

// WithSettleDate sets the settle date.
func (b *TransactionBuilder) WithSettleDate(d time.Time) *TransactionBuilder {
	b.tx.SettleDate = &d
	return b
}

// WithReference sets the statement reference.
func (b *TransactionBuilder) WithReference(ref string) *TransactionBuilder {
	b.tx.Reference = ref
	return b
}

// WithDescription sets the description.
func (b *TransactionBuilder) WithDescription(desc string) *TransactionBuilder {
	b.tx.Description = desc
	return b
}

// WithType sets the transaction type.
func (b *TransactionBuilder) WithType(t model.TransactionType) *TransactionBuilder {
	b.tx.Type = t
	return b
}

// WithTicker sets the ticker.
func (b *TransactionBuilder) WithTicker(ticker string) *TransactionBuilder {
	b.tx.Ticker = &ticker
	return b
}

// WithQuantity sets the quantity from its decimal text.
func (b *TransactionBuilder) WithQuantity(q string) *TransactionBuilder {
	b.tx.Quantity = decimal.NewNullDecimal(decimal.RequireFromString(q))
	return b
}

// WithUnitCost sets the unit cost in pence from its decimal text.
func (b *TransactionBuilder) WithUnitCost(p string) *TransactionBuilder {
	b.tx.UnitCost = decimal.NewNullDecimal(decimal.RequireFromString(p))
	return b
}

// WithValue sets the signed value from its decimal text.
func (b *TransactionBuilder) WithValue(v string) *TransactionBuilder {
	b.tx.Value = decimal.RequireFromString(v)
	return b
}

// WithBatch links the row to an import batch.
func (b *TransactionBuilder) WithBatch(id string) *TransactionBuilder {
	b.tx.ImportBatchID = &id
	return b
}

// Build inserts the row through the repository and returns it with its ID set.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	tx := b.tx
	if err := repository.NewTransactionRepository(db).Insert(context.Background(), &tx); err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}
	return tx
}

// Buy creates a Buy row for the default client.
func Buy(t *testing.T, db *sql.DB, account model.AccountType, date, ticker, qty string) model.Transaction {
	t.Helper()
	return NewTransaction().
		WithAccount(account).
		WithTradeDate(Date(date)).
		WithReference("B" + date).
		WithDescription(ticker + " shares " + qty + " @ 100").
		WithType(model.TypeBuy).
		WithTicker(ticker).
		WithQuantity(qty).
		WithValue("-100").
		Build(t, db)
}

// Sell creates a Sell row for the default client.
func Sell(t *testing.T, db *sql.DB, account model.AccountType, date, ticker, qty string) model.Transaction {
	t.Helper()
	return NewTransaction().
		WithAccount(account).
		WithTradeDate(Date(date)).
		WithReference("S" + date).
		WithDescription(ticker + " shares " + qty + " @ 100").
		WithType(model.TypeSell).
		WithTicker(ticker).
		WithQuantity(qty).
		WithValue("100").
		Build(t, db)
}

// CreateBatch inserts an open import batch for the default client.
func CreateBatch(t *testing.T, db *sql.DB, account model.AccountType, archive string) model.ImportBatch {
	t.Helper()

	b := model.ImportBatch{
		ClientName:   DefaultClientName,
		ClientNumber: DefaultClientNumber,
		AccountType:  account,
	}
	if err := repository.NewBatchRepository(db).Create(context.Background(), &b, archive); err != nil {
		t.Fatalf("Failed to create test batch: %v", err)
	}
	return b
}

// CreateTicker registers a ticker reference entry.
func CreateTicker(t *testing.T, db *sql.DB, ticker, matchText string) {
	t.Helper()

	err := repository.NewReferenceRepository(db).UpsertTicker(context.Background(), model.TickerEntry{
		Ticker:    ticker,
		MatchText: matchText,
	})
	if err != nil {
		t.Fatalf("Failed to create test ticker: %v", err)
	}
}

// CreatePrice stores a historical price for a ticker.
func CreatePrice(t *testing.T, db *sql.DB, ticker, date, price, currency string) {
	t.Helper()

	err := repository.NewReferenceRepository(db).UpsertHistoricalPrice(context.Background(), model.PricePoint{
		Ticker:   ticker,
		Date:     Date(date),
		Price:    decimal.RequireFromString(price),
		Currency: currency,
	})
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
}

// CreateLatestPrice stores the latest price for a ticker.
func CreateLatestPrice(t *testing.T, db *sql.DB, ticker, date, price, currency string) {
	t.Helper()

	err := repository.NewReferenceRepository(db).UpsertLatestPrice(context.Background(), model.PricePoint{
		Ticker:   ticker,
		Date:     Date(date),
		Price:    decimal.RequireFromString(price),
		Currency: currency,
	})
	if err != nil {
		t.Fatalf("Failed to create latest test price: %v", err)
	}
}
