package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/middleware"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/logger"
)

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := middleware.RateLimit(1, 2)(next)

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/import", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("Expected the burst to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 429 once the burst is spent, got %d", codes[2])
	}
}

func TestRateLimit_LogsRejection(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithContext(t.Context(), logger.NewJSON(&buf, "info"))

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := middleware.RateLimit(1, 1)(next)

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/import", nil).WithContext(ctx)
		mw.ServeHTTP(httptest.NewRecorder(), req)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("Invalid log line: %v", err)
	}
	if entry["level"] != "warn" || entry["message"] != "rate limit exceeded" {
		t.Errorf("Unexpected log entry %v", entry)
	}
	if entry["path"] != "/api/import" {
		t.Errorf("Expected path /api/import, got %v", entry["path"])
	}
}
