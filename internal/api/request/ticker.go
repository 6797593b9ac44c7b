package request

// AddTickerRequest maps a description prefix to a ticker.
type AddTickerRequest struct {
	Ticker    string `json:"ticker"`
	MatchText string `json:"matchText"`
}

// SetPriceRequest records a closing price. Price is a decimal string so
// amounts survive JSON decoding without float rounding. When Latest is set
// the price also replaces the ticker's current quote.
type SetPriceRequest struct {
	Ticker   string `json:"ticker"`
	Date     string `json:"date"`
	Price    string `json:"price"`
	Currency string `json:"currency,omitempty"`
	Latest   bool   `json:"latest,omitempty"`
}
