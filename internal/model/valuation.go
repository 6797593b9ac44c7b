package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a priced open holding within a valuation.
type Position struct {
	Ticker    string          `json:"ticker"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	PriceDate string          `json:"priceDate"`
	Currency  string          `json:"currency"`
	Value     decimal.Decimal `json:"value"`
}

// Valuation is the reconstructed value of one account on one date.
// HoldingsByCurrency includes cash, folded into the GBP bucket.
type Valuation struct {
	ClientName         string                     `json:"clientName"`
	AccountType        AccountType                `json:"accountType"`
	Date               string                     `json:"date"`
	HoldingsByCurrency map[string]decimal.Decimal `json:"holdingsByCurrency"`
	Cash               decimal.Decimal            `json:"cash"`
	Total              decimal.Decimal            `json:"total"`
	Positions          []Position                 `json:"positions"`
	Unpriced           []string                   `json:"unpriced,omitempty"`
}

// AccountSnapshot is a stored valuation used as a charting and reporting cache.
type AccountSnapshot struct {
	ID                 string                     `json:"id"`
	ClientName         string                     `json:"clientName"`
	AccountType        AccountType                `json:"accountType"`
	Date               string                     `json:"date"`
	HoldingsByCurrency map[string]decimal.Decimal `json:"holdingsByCurrency"`
	Cash               decimal.Decimal            `json:"cash"`
	Total              decimal.Decimal            `json:"total"`
	CalculatedAt       time.Time                  `json:"calculatedAt"`
}

// BackfillResult summarises a snapshot backfill run.
type BackfillResult struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Days     int    `json:"days"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}
