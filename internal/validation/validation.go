// Package validation checks request payloads and query parameters before
// they reach the service layer.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
)

// DateLayout is the only accepted date format for request fields.
const DateLayout = "2006-01-02"

// Common validation errors
var (
	ErrInvalidUUID      = apperrors.ErrInvalidUUID
	ErrInvalidDateRange = apperrors.ErrInvalidDateRange
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD string as a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %q", s)
	}
	return t, nil
}

// ValidateDateRange rejects ranges whose start falls after their end.
func ValidateDateRange(from, to time.Time) error {
	if from.After(to) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, from.Format(DateLayout), to.Format(DateLayout))
	}
	return nil
}

// ParseYear accepts a four digit calendar year.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, fmt.Errorf("year must have four digits: %q", s)
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 {
		return 0, fmt.Errorf("invalid year: %q", s)
	}
	return year, nil
}
