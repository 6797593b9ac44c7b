package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TickerEntry maps a description prefix to a security ticker.
type TickerEntry struct {
	Ticker    string `json:"ticker"`
	MatchText string `json:"matchText"`
}

// PricePoint is a dated closing price for a ticker.
type PricePoint struct {
	Ticker   string          `json:"ticker"`
	Date     time.Time       `json:"date"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}
