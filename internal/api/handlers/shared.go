package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// parseJSON decodes the request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}

// parseAccountKey reads the client and account query parameters.
func parseAccountKey(r *http.Request) (model.AccountKey, error) {
	q := r.URL.Query()
	errors := make(map[string]string)

	client := strings.TrimSpace(q.Get("client"))
	if client == "" {
		errors["client"] = "client is required"
	}

	account, err := model.ParseAccountType(q.Get("account"))
	if err != nil {
		errors["account"] = err.Error()
	}

	if len(errors) > 0 {
		return model.AccountKey{}, &validation.Error{Fields: errors}
	}
	return model.AccountKey{ClientName: client, AccountType: account}, nil
}

// parseDateParam reads a YYYY-MM-DD query parameter. A missing parameter
// yields the zero time and ok false.
func parseDateParam(r *http.Request, name string) (t time.Time, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err = validation.ParseDate(raw)
	if err != nil {
		return time.Time{}, false, validation.FieldError(name, err.Error())
	}
	return t, true, nil
}

// parseBoolParam reads an optional boolean query parameter.
func parseBoolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, validation.FieldError(name, "must be true or false")
	}
	return v, nil
}

// parseIntParam reads an optional positive integer query parameter.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, validation.FieldError(name, "must be a positive integer")
	}
	return v, nil
}
