package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportBatch groups the ledger rows inserted from one statement submission.
type ImportBatch struct {
	ID             string      `json:"id"`
	ClientName     string      `json:"clientName"`
	ClientNumber   string      `json:"clientNumber"`
	AccountType    AccountType `json:"accountType"`
	CreatedAt      time.Time   `json:"createdAt"`
	InsertedCount  int         `json:"insertedCount"`
	DuplicateCount int         `json:"duplicateCount"`
	FinalizedAt    *time.Time  `json:"finalizedAt"`
	RolledBackAt   *time.Time  `json:"rolledBackAt"`
	HasSource      bool        `json:"hasSource"`
}

// DuplicateRow describes a statement row suppressed by the dedupe gate.
type DuplicateRow struct {
	Line        int             `json:"line"`
	TradeDate   string          `json:"tradeDate"`
	Reference   string          `json:"reference"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
}

// DroppedRow is a statement row that lacked a trade date, value or description.
type DroppedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// RowError is a row that passed the dedupe gate but failed to insert.
type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportResult summarises one statement import.
// BatchID is nil when batch tracking is unavailable.
type ImportResult struct {
	BatchID        *string        `json:"batchId"`
	ClientName     string         `json:"clientName"`
	ClientNumber   string         `json:"clientNumber"`
	AccountType    AccountType    `json:"accountType"`
	InsertedCount  int            `json:"insertedCount"`
	DuplicateCount int            `json:"duplicateCount"`
	Duplicates     []DuplicateRow `json:"duplicates"`
	Dropped        []DroppedRow   `json:"dropped"`
	RowErrors      []RowError     `json:"rowErrors"`
}

// RollbackResult reports how many ledger rows a rollback removed.
type RollbackResult struct {
	BatchID      string `json:"batchId"`
	DeletedCount int    `json:"deletedCount"`
}
