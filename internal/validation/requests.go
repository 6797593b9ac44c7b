package validation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/request"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
)

// ValidateImportRequest validates a statement submission.
//
// Required fields:
//   - accountType: Must be one of: SIPP, ISA, Fund & Share (case-insensitive)
//   - csv: Must be non-blank
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateImportRequest(req request.ImportRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.AccountType) == "" {
		errors["accountType"] = "accountType is required"
	} else if _, err := model.ParseAccountType(req.AccountType); err != nil {
		errors["accountType"] = err.Error()
	}

	if strings.TrimSpace(req.CSV) == "" {
		errors["csv"] = "csv is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateAddTicker validates a ticker mapping request.
func ValidateAddTicker(req request.AddTickerRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}
	if strings.TrimSpace(req.MatchText) == "" {
		errors["matchText"] = "matchText is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSetPrice validates a price request.
//
// Required fields:
//   - ticker: Must be non-blank
//   - date: Must be in YYYY-MM-DD format
//   - price: Must be a non-negative decimal
//
// Optional fields:
//   - currency: Three letter code, defaults to GBP
func ValidateSetPrice(req request.SetPriceRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if price, err := decimal.NewFromString(strings.TrimSpace(req.Price)); err != nil {
		errors["price"] = "price must be a decimal number"
	} else if price.IsNegative() {
		errors["price"] = "price must not be negative"
	}

	if c := strings.TrimSpace(req.Currency); c != "" && len(c) != 3 {
		errors["currency"] = "currency must be a three letter code"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
