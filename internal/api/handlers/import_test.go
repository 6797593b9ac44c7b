package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/request"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/testutil"
)

func statementBody(t *testing.T, accountType string, rows ...string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(request.ImportRequest{
		AccountType: accountType,
		CSV:         testutil.Statement("Mr David Appleyard", testutil.DefaultClientNumber, rows...),
	})
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	return bytes.NewReader(body)
}

func TestImportHandler_Import(t *testing.T) {
	setupHandler := func(t *testing.T, maxBytes int64) (*ImportHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		return NewImportHandler(svcs.Import, svcs.Batch, maxBytes), db
	}

	rows := []string{
		"29/02/2024,,Card Payment,Deposit,,,1000.00",
		"01/03/2024,05/03/2024,B123,Vanguard FTSE All-World,9500,10,-950.00",
	}

	t.Run("imports a statement and reports duplicates on repeat", func(t *testing.T) {
		handler, db := setupHandler(t, 1<<20)

		w := httptest.NewRecorder()
		handler.Import(w, httptest.NewRequest(http.MethodPost, "/api/import", statementBody(t, "ISA", rows...)))

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var first model.ImportResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&first)

		if first.InsertedCount != 2 || first.BatchID == nil {
			t.Errorf("Expected 2 rows under a batch, got %d (batch %v)", first.InsertedCount, first.BatchID)
		}
		if first.AccountType != model.AccountISA {
			t.Errorf("Expected ISA, got %s", first.AccountType)
		}

		w = httptest.NewRecorder()
		handler.Import(w, httptest.NewRequest(http.MethodPost, "/api/import", statementBody(t, "isa", rows...)))

		var second model.ImportResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&second)

		if second.InsertedCount != 0 || second.DuplicateCount != 2 {
			t.Errorf("Expected 0 inserted and 2 duplicates, got %d and %d", second.InsertedCount, second.DuplicateCount)
		}
		if n := testutil.CountRows(t, db, "transaction"); n != 2 {
			t.Errorf("Expected 2 ledger rows, got %d", n)
		}
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed JSON", `{"accountType":`, http.StatusBadRequest},
		{"unknown field", `{"accountType":"ISA","csv":"x","extra":1}`, http.StatusBadRequest},
		{"invalid account type", `{"accountType":"LISA","csv":"x"}`, http.StatusBadRequest},
		{"missing csv", `{"accountType":"ISA"}`, http.StatusBadRequest},
		{"statement without header", `{"accountType":"ISA","csv":"Client name:,David\nClient number:,1\n"}`, http.StatusBadRequest},
		{"statement without client", `{"accountType":"ISA","csv":"Trade date,Settle date,Reference,Description,Unit cost (p),Quantity,Value (£)\n"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, db := setupHandler(t, 1<<20)

			w := httptest.NewRecorder()
			handler.Import(w, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if n := testutil.CountRows(t, db, "transaction"); n != 0 {
				t.Errorf("Expected nothing inserted, got %d rows", n)
			}
		})
	}

	t.Run("rejects oversized bodies", func(t *testing.T) {
		handler, _ := setupHandler(t, 64)

		w := httptest.NewRecorder()
		handler.Import(w, httptest.NewRequest(http.MethodPost, "/api/import", statementBody(t, "ISA", rows...)))

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestImportHandler_Batches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	handler := NewImportHandler(svcs.Import, svcs.Batch, 0)

	result, err := svcs.Import.Import(context.Background(),
		testutil.Statement("David", testutil.DefaultClientNumber, "29/02/2024,,Card Payment,Deposit,,,1000.00"),
		model.AccountSIPP)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	batchID := *result.BatchID

	t.Run("lists recent batches", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Batches(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/import/batch", map[string]string{"limit": "3"}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var batches []model.ImportBatch
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&batches)

		if len(batches) != 1 || batches[0].ID != batchID {
			t.Fatalf("Expected the one batch %s, got %+v", batchID, batches)
		}
		if !batches[0].HasSource {
			t.Error("Expected the batch to carry an archived source")
		}
	})

	t.Run("rejects a non positive limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Batches(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/import/batch", map[string]string{"limit": "0"}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("returns a single batch", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Batch(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/import/batch/"+batchID, map[string]string{"uuid": batchID}))

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for an unknown batch", func(t *testing.T) {
		id := testutil.MakeID()
		w := httptest.NewRecorder()
		handler.Batch(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/import/batch/"+id, map[string]string{"uuid": id}))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("serves the archived statement", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Source(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/import/batch/"+batchID+"/source", map[string]string{"uuid": batchID}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Card Payment") {
			t.Errorf("Expected original statement text, got %q", w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Expected text/csv, got %q", ct)
		}
	})

	t.Run("rolls back the batch", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Rollback(w, testutil.NewRequestWithURLParams(http.MethodPost, "/api/import/batch/"+batchID+"/rollback", map[string]string{"uuid": batchID}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.RollbackResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.DeletedCount != 1 {
			t.Errorf("Expected 1 deleted row, got %d", result.DeletedCount)
		}

		w = httptest.NewRecorder()
		handler.Rollback(w, testutil.NewRequestWithURLParams(http.MethodPost, "/api/import/batch/"+batchID+"/rollback", map[string]string{"uuid": batchID}))

		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if w.Code != http.StatusOK || result.DeletedCount != 0 {
			t.Errorf("Expected repeat rollback to delete nothing, got %d / %d", w.Code, result.DeletedCount)
		}
	})
}

func TestImportHandler_SourceWithoutArchive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServicesWithoutArchive(t, db)
	handler := NewImportHandler(svcs.Import, svcs.Batch, 0)

	result, err := svcs.Import.Import(context.Background(),
		testutil.Statement("David", testutil.DefaultClientNumber, "29/02/2024,,Card Payment,Deposit,,,1000.00"),
		model.AccountISA)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	id := *result.BatchID

	w := httptest.NewRecorder()
	handler.Source(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/import/batch/"+id+"/source", map[string]string{"uuid": id}))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a batch without archived source, got %d: %s", w.Code, w.Body.String())
	}
}
