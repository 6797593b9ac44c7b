package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/testutil"
)

// setupAccountHandler seeds an ISA with two deposits and one purchase:
//
//	2024-01-02 deposit 1000
//	2024-01-03 buy 10 VWRL for 100, priced 50
//	2024-01-08 deposit 200
//	2024-01-10 VWRL priced 60, latest quote 70
func setupAccountHandler(t *testing.T) (*AccountHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)

	testutil.NewTransaction().WithValue("1000").Build(t, db)
	testutil.Buy(t, db, model.AccountISA, "2024-01-03", "VWRL", "10")
	testutil.NewTransaction().WithTradeDate(testutil.Date("2024-01-08")).WithValue("200").Build(t, db)
	testutil.CreatePrice(t, db, "VWRL", "2024-01-03", "50", "GBP")
	testutil.CreatePrice(t, db, "VWRL", "2024-01-10", "60", "GBP")
	testutil.CreateLatestPrice(t, db, "VWRL", "2024-01-12", "70", "GBP")

	return NewAccountHandler(svcs.Valuation, svcs.Snapshot, svcs.Report), db
}

func TestAccountHandler_Valuation(t *testing.T) {
	handler, _ := setupAccountHandler(t)

	tests := []struct {
		name      string
		params    map[string]string
		wantCash  string
		wantTotal string
	}{
		{
			name:      "values holdings at the carried forward price",
			params:    map[string]string{"client": "David", "account": "ISA", "date": "2024-01-05"},
			wantCash:  "900",
			wantTotal: "1400",
		},
		{
			name:      "excludes deposits from cash",
			params:    map[string]string{"client": "David", "account": "ISA", "date": "2024-01-05", "excludeFlows": "true"},
			wantCash:  "-100",
			wantTotal: "400",
		},
		{
			name:      "uses latest prices without a date",
			params:    map[string]string{"client": "David", "account": "ISA"},
			wantCash:  "1100",
			wantTotal: "1800",
		},
		{
			name:      "returns zeros for an account without holdings",
			params:    map[string]string{"client": "Jen", "account": "SIPP", "date": "2024-01-05"},
			wantCash:  "0",
			wantTotal: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Valuation(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/account/valuation", tt.params))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
			}

			var response model.Valuation
			//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
			json.NewDecoder(w.Body).Decode(&response)

			testutil.AssertDecimal(t, "cash", response.Cash, tt.wantCash)
			testutil.AssertDecimal(t, "total", response.Total, tt.wantTotal)
		})
	}

	badRequests := []struct {
		name   string
		params map[string]string
	}{
		{"missing client", map[string]string{"account": "ISA"}},
		{"unknown account", map[string]string{"client": "David", "account": "Pension"}},
		{"malformed date", map[string]string{"client": "David", "account": "ISA", "date": "05/01/2024"}},
		{"malformed excludeFlows", map[string]string{"client": "David", "account": "ISA", "excludeFlows": "maybe"}},
	}

	for _, tt := range badRequests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Valuation(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/account/valuation", tt.params))

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAccountHandler_Performance(t *testing.T) {
	handler, _ := setupAccountHandler(t)

	t.Run("removes deposits inside the range from the gain", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Performance(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/account/performance", map[string]string{
			"client": "David", "account": "ISA", "from": "2024-01-05", "to": "2024-01-10",
		}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.PeriodPerformance
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		testutil.AssertDecimal(t, "start", response.StartValue, "1400")
		testutil.AssertDecimal(t, "end", response.EndValue, "1700")
		testutil.AssertDecimal(t, "netFlows", response.NetFlows, "200")
		testutil.AssertDecimal(t, "gain", response.Gain, "100")
	})

	tests := []struct {
		name   string
		params map[string]string
	}{
		{"inverted range", map[string]string{"client": "David", "account": "ISA", "from": "2024-01-10", "to": "2024-01-05"}},
		{"missing from", map[string]string{"client": "David", "account": "ISA", "to": "2024-01-05"}},
		{"missing to", map[string]string{"client": "David", "account": "ISA", "from": "2024-01-05"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Performance(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/account/performance", tt.params))

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAccountHandler_History(t *testing.T) {
	handler, _ := setupAccountHandler(t)

	w := httptest.NewRecorder()
	handler.History(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/account/history", map[string]string{
		"client": "David", "account": "ISA", "from": "2024-01-05", "to": "2024-01-07",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response []model.AccountSnapshot
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&response)

	if len(response) != 3 {
		t.Fatalf("Expected one entry per day, got %d", len(response))
	}
	if response[0].Date != "2024-01-05" || response[2].Date != "2024-01-07" {
		t.Errorf("Unexpected dates %s..%s", response[0].Date, response[2].Date)
	}
	testutil.AssertDecimal(t, "total", response[0].Total, "1400")
}

func TestAccountHandler_Cash(t *testing.T) {
	handler, _ := setupAccountHandler(t)

	w := httptest.NewRecorder()
	handler.Cash(w, httptest.NewRequest(http.MethodGet, "/api/account/cash", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var response []model.CashBalance
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&response)

	if len(response) != len(model.Clients)*len(model.AccountTypes) {
		t.Fatalf("Expected a balance for every client and account, got %d", len(response))
	}
	for _, b := range response {
		want := "0"
		if b.ClientName == "David" && b.AccountType == model.AccountISA {
			want = "1100"
		}
		testutil.AssertDecimal(t, b.ClientName+"/"+string(b.AccountType), b.Amount, want)
	}
}
