package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/request"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

func TestValidateImportRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        request.ImportRequest
		wantFields []string
	}{
		{"valid ISA", request.ImportRequest{AccountType: "isa", CSV: "x"}, nil},
		{"valid Fund & Share", request.ImportRequest{AccountType: "Fund & Share", CSV: "x"}, nil},
		{"missing everything", request.ImportRequest{}, []string{"accountType", "csv"}},
		{"unknown account", request.ImportRequest{AccountType: "LISA", CSV: "x"}, []string{"accountType"}},
		{"blank csv", request.ImportRequest{AccountType: "SIPP", CSV: "  \n"}, []string{"csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateImportRequest(tt.req)
			assertFields(t, err, tt.wantFields)
		})
	}
}

func TestValidateSetPrice(t *testing.T) {
	tests := []struct {
		name       string
		req        request.SetPriceRequest
		wantFields []string
	}{
		{"valid", request.SetPriceRequest{Ticker: "VWRL", Date: "2024-03-01", Price: "95.12"}, nil},
		{"valid with currency", request.SetPriceRequest{Ticker: "VWRL", Date: "2024-03-01", Price: "0", Currency: "usd"}, nil},
		{"bad date", request.SetPriceRequest{Ticker: "VWRL", Date: "01/03/2024", Price: "1"}, []string{"date"}},
		{"negative price", request.SetPriceRequest{Ticker: "VWRL", Date: "2024-03-01", Price: "-1"}, []string{"price"}},
		{"not a number", request.SetPriceRequest{Ticker: "VWRL", Date: "2024-03-01", Price: "abc"}, []string{"price"}},
		{"bad currency", request.SetPriceRequest{Ticker: "VWRL", Date: "2024-03-01", Price: "1", Currency: "POUND"}, []string{"currency"}},
		{"missing ticker", request.SetPriceRequest{Date: "2024-03-01", Price: "1"}, []string{"ticker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFields(t, validation.ValidateSetPrice(tt.req), tt.wantFields)
		})
	}
}

func TestValidateAddTicker(t *testing.T) {
	assertFields(t, validation.ValidateAddTicker(request.AddTickerRequest{Ticker: "VWRL", MatchText: "Vanguard FTSE All-World"}), nil)
	assertFields(t, validation.ValidateAddTicker(request.AddTickerRequest{Ticker: " "}), []string{"ticker", "matchText"})
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"2024", 2024, false},
		{" 2019 ", 2019, false},
		{"24", 0, true},
		{"20245", 0, true},
		{"abcd", 0, true},
		{"0999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := validation.ParseYear(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseYear(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseYear(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.AddDate(0, 0, 1)

	if err := validation.ValidateDateRange(a, a); err != nil {
		t.Errorf("Expected single-day range to pass, got %v", err)
	}
	if err := validation.ValidateDateRange(a, b); err != nil {
		t.Errorf("Expected ascending range to pass, got %v", err)
	}
	if err := validation.ValidateDateRange(b, a); !errors.Is(err, validation.ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestValidateUUID(t *testing.T) {
	if err := validation.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := validation.ValidateUUID("nope"); !errors.Is(err, validation.ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

func assertFields(t *testing.T, err error, want []string) {
	t.Helper()

	if len(want) == 0 {
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return
	}

	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *validation.Error, got %v", err)
	}
	if len(verr.Fields) != len(want) {
		t.Errorf("Expected fields %v, got %v", want, verr.Fields)
	}
	for _, f := range want {
		if _, ok := verr.Fields[f]; !ok {
			t.Errorf("Expected error for field %q, got %v", f, verr.Fields)
		}
	}
}

func TestErrorMessageOrder(t *testing.T) {
	err := &validation.Error{Fields: map[string]string{
		"to":   "required",
		"from": "required",
	}}
	if got, want := err.Error(), "from: required; to: required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	single := validation.FieldError("limit", "must be a positive integer")
	if got, want := single.Error(), "limit: must be a positive integer"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
