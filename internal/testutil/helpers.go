package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
)

// TestArchiveKey is a valid Fernet key for tests.
const TestArchiveKey = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="

// Services is the service graph used by tests.
type Services = service.Services

// NewTestServices wires the full service graph the way cmd/server does,
// with archiving enabled and a valuation cache.
func NewTestServices(t *testing.T, db *sql.DB) *Services {
	t.Helper()

	archive, err := service.NewArchive(TestArchiveKey)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	return service.NewServices(db, archive, service.NewValuationCache(time.Minute))
}

// NewTestServicesWithoutArchive wires the services with archiving disabled.
func NewTestServicesWithoutArchive(t *testing.T, db *sql.DB) *Services {
	t.Helper()
	return service.NewServices(db, nil, service.NewValuationCache(time.Minute))
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// Date parses a YYYY-MM-DD date and panics on malformed input.
func Date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// Dec parses a decimal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// AssertDecimal fails the test when got and want differ numerically.
func AssertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(Dec(want)) {
		t.Errorf("%s = %s, want %s", name, got.String(), want)
	}
}

// Statement builds an export with the standard preamble and header around rows.
// Each row is the comma-joined fields after the header.
func Statement(clientName, clientNumber string, rows ...string) string {
	text := "Client name:," + clientName + "\n" +
		"Client number:," + clientNumber + "\n" +
		"\n" +
		"Trade date,Settle date,Reference,Description,Unit cost (p),Quantity,Value (£)\n"
	for _, r := range rows {
		text += r + "\n"
	}
	return text
}
