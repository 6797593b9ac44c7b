package model

import "github.com/shopspring/decimal"

// CashBalance is the replayed cash position of one account.
type CashBalance struct {
	ClientName  string          `json:"clientName"`
	AccountType AccountType     `json:"accountType"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

// TaxYearTotals aggregates cash flows for a UK tax year (6 April to 5 April).
type TaxYearTotals struct {
	TaxYearStart int             `json:"taxYearStart"`
	Label        string          `json:"label"`
	Fees         decimal.Decimal `json:"fees"`
	Dividends    decimal.Decimal `json:"dividends"`
	Deposits     decimal.Decimal `json:"deposits"`
	Withdrawals  decimal.Decimal `json:"withdrawals"`
}

// PeriodPerformance compares an account's value across a date range with
// deposits and withdrawals inside the range removed.
type PeriodPerformance struct {
	ClientName  string          `json:"clientName"`
	AccountType AccountType     `json:"accountType"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	StartValue  decimal.Decimal `json:"startValue"`
	EndValue    decimal.Decimal `json:"endValue"`
	NetFlows    decimal.Decimal `json:"netFlows"`
	Gain        decimal.Decimal `json:"gain"`
	StartSource string          `json:"startSource"`
	EndSource   string          `json:"endSource"`
}

// DividendTickerFix is a dividend row whose missing ticker can be resolved.
type DividendTickerFix struct {
	TransactionID string `json:"transactionId"`
	TradeDate     string `json:"tradeDate"`
	Description   string `json:"description"`
	Ticker        string `json:"ticker"`
}

// DividendBackfillResult reports a dividend ticker backfill run.
type DividendBackfillResult struct {
	Applied    bool                `json:"applied"`
	Candidates int                 `json:"candidates"`
	Resolved   []DividendTickerFix `json:"resolved"`
	Unresolved int                 `json:"unresolved"`
}
