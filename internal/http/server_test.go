package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dailyspend/internal/budget"
	"dailyspend/internal/clock"
	"dailyspend/internal/core"
	"dailyspend/internal/ledger/memory"
	"dailyspend/internal/log"
	"dailyspend/internal/services"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

// newTestServer wires a server against an in-memory ledger with the clock
// pinned to 2024-06-16 and a 3000.00 monthly budget.
func newTestServer(t *testing.T) (*Server, *memory.Store, *clock.Clock) {
	t.Helper()

	store := memory.New(core.BudgetConfig{
		MonthlyBudget:    core.Money{Cents: 300000},
		FirstDayOverride: core.Money{Cents: 10000},
	})
	clk := clock.New(nil)
	if _, err := clk.SetOverride("2024-06-16"); err != nil {
		t.Fatalf("SetOverride() error = %v", err)
	}

	logger := testLogger()
	engine := budget.New(store, clk, logger)
	recorder := services.NewRecorder(store, engine, clk, nil, logger)
	stats := services.NewAggregator(store, clk)
	history := services.NewHistory(store, logger)

	return NewServer(":0", recorder, engine, stats, history, clk, logger), store, clk
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGetAllowance(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/allowance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp allowanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// 3000.00 over the 15 days from June 16 through June 30.
	if resp.Allowance != "200.00" {
		t.Errorf("Allowance = %q, want %q", resp.Allowance, "200.00")
	}
	if resp.Date != "2024-06-16" {
		t.Errorf("Date = %q, want %q", resp.Date, "2024-06-16")
	}
}

func TestRecordExpenseFreeText(t *testing.T) {
	s, store, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/expense", `{"text":"taxi, 1,500"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp expenseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Category != "taxi" {
		t.Errorf("Category = %q, want %q", resp.Category, "taxi")
	}
	if resp.Amount != "1500.00" {
		t.Errorf("Amount = %q, want %q", resp.Amount, "1500.00")
	}
	// 1500.00 against the 200.00 pre-expense allowance.
	if resp.PercentOfAllowance != 750.0 {
		t.Errorf("PercentOfAllowance = %v, want 750", resp.PercentOfAllowance)
	}

	records, err := store.ReadAllExpenses(context.Background())
	if err != nil {
		t.Fatalf("ReadAllExpenses() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(records))
	}
}

func TestRecordExpenseSeparateFields(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/expense", `{"category":"food","amount":"12.34"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp expenseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Amount != "12.34" {
		t.Errorf("Amount = %q, want %q", resp.Amount, "12.34")
	}
}

func TestRecordExpenseRejectsMalformedAmount(t *testing.T) {
	s, store, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/expense", `{"text":"coffee, lots"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	records, _ := store.ReadAllExpenses(context.Background())
	if len(records) != 0 {
		t.Errorf("ledger has %d records, want 0", len(records))
	}
}

func TestRecordExpenseRejectsBadJSON(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/expense", "not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAllowanceMethodNotAllowed(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/allowance", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow = %q, want %q", allow, http.MethodGet)
	}
}

func TestRemainingAfterExpense(t *testing.T) {
	s, _, _ := newTestServer(t)

	if rec := doRequest(s, http.MethodPost, "/expense", `{"text":"food, 50"}`); rec.Code != http.StatusCreated {
		t.Fatalf("expense status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec := doRequest(s, http.MethodGet, "/allowance/remaining", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp remainingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Recomputed allowance after the expense: 2950.00 over 15 days is
	// 196.67, minus the 50.00 already spent today.
	if resp.Remaining != "146.67" {
		t.Errorf("Remaining = %q, want %q", resp.Remaining, "146.67")
	}
}

func TestResetReturnsFullMonthlyBudget(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/allowance/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp allowanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Allowance != "3000.00" {
		t.Errorf("Allowance = %q, want %q", resp.Allowance, "3000.00")
	}
}

func TestClockOverrideAndReset(t *testing.T) {
	s, _, clk := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/clock", `{"date":"2024-07-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp clockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Today != "2024-07-01" || !resp.Overridden {
		t.Errorf("resp = %+v, want today 2024-07-01 overridden", resp)
	}

	rec = doRequest(s, http.MethodPost, "/clock", `{"date":"reset"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, want %d", rec.Code, http.StatusOK)
	}
	if _, overridden := clk.Overridden(); overridden {
		t.Error("override still set after reset")
	}
}

func TestClockOverrideRejectsBadDate(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/clock", `{"date":"01.07.2024"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestStatsGroupsByCategory(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, body := range []string{
		`{"text":"food, 100"}`,
		`{"text":"taxi, 30"}`,
		`{"text":"food, 20"}`,
	} {
		if rec := doRequest(s, http.MethodPost, "/expense", body); rec.Code != http.StatusCreated {
			t.Fatalf("expense status = %d (body %s)", rec.Code, rec.Body.String())
		}
	}

	rec := doRequest(s, http.MethodGet, "/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.YearMonth != "2024-06" {
		t.Errorf("YearMonth = %q, want %q", resp.YearMonth, "2024-06")
	}
	if resp.Total != "150.00" {
		t.Errorf("Total = %q, want %q", resp.Total, "150.00")
	}
	if len(resp.Categories) != 2 || resp.Categories[0].Name != "food" || resp.Categories[0].Total != "120.00" {
		t.Errorf("Categories = %+v", resp.Categories)
	}
}

func TestChartDataAlignedSeries(t *testing.T) {
	s, _, _ := newTestServer(t)

	if rec := doRequest(s, http.MethodPost, "/expense", `{"text":"food, 100"}`); rec.Code != http.StatusCreated {
		t.Fatalf("expense status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec := doRequest(s, http.MethodGet, "/chart-data", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp chartDataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Dates) != 1 || len(resp.Actual) != 1 || len(resp.Allowance) != 1 {
		t.Fatalf("series lengths = %d/%d/%d, want 1/1/1", len(resp.Dates), len(resp.Actual), len(resp.Allowance))
	}
	if resp.Dates[0] != "2024-06-16" {
		t.Errorf("Dates[0] = %q, want %q", resp.Dates[0], "2024-06-16")
	}
	// Day 0 of the reconstruction is the configured first-day override.
	if resp.Allowance[0] != "100.00" {
		t.Errorf("Allowance[0] = %q, want %q", resp.Allowance[0], "100.00")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
