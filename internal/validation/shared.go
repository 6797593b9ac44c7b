package validation

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Error collects per-field messages for a rejected request or query.
type Error struct {
	Fields map[string]string
}

// FieldError returns an Error for a single field.
func FieldError(field, msg string) *Error {
	return &Error{Fields: map[string]string{field: msg}}
}

// Error joins the field messages in field name order.
func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
