package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fingenius/internal/analytics"
	"fingenius/internal/core"
	"fingenius/internal/kv"
	"fingenius/internal/ledger"
	"fingenius/internal/services"
)

var testClock = func() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestServer() (*Server, *ledger.Ledger) {
	l := ledger.NewWithClock(kv.NewMemory(), testClock)
	svc := services.NewLedgerService(l, nil)
	return NewServer(":0", svc, analytics.New(l)), l
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer()

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv, _ := newTestServer()

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2024-06-01","category":"Food & Dining","amount":-42.5,"mood":"😊"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created core.Expense
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.Amount != -42.5 {
		t.Fatalf("created = %+v", created)
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list []core.Expense
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d", len(list))
	}

	rr = do(t, srv, http.MethodPut, "/api/expenses/"+created.ID, `{"description":"lunch"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d", rr.Code)
	}
	var updated core.Expense
	json.Unmarshal(rr.Body.Bytes(), &updated)
	if updated.Description != "lunch" || updated.Amount != -42.5 {
		t.Fatalf("updated = %+v", updated)
	}

	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rr.Code)
	}
}

func TestCreateExpense_BadBody(t *testing.T) {
	srv, _ := newTestServer()

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestGoalProgressEndpoint(t *testing.T) {
	srv, l := newTestServer()

	g, err := l.Goals.Add(ledger.GoalInput{Title: "trip", TargetAmount: 1200.0, CurrentAmount: 1000.0})
	if err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	rr := do(t, srv, http.MethodPost, "/api/goals/"+g.ID+"/progress", `{"amount":500}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var got struct {
		CurrentAmount float64 `json:"current_amount"`
		Progress      float64 `json:"progress"`
	}
	json.Unmarshal(rr.Body.Bytes(), &got)
	if got.CurrentAmount != 1500 {
		t.Fatalf("current_amount = %v, want 1500", got.CurrentAmount)
	}
	if got.Progress != 125 {
		t.Fatalf("progress = %v, want 125 (overshoot reported as-is)", got.Progress)
	}

	rr = do(t, srv, http.MethodPost, "/api/goals/missing/progress", `{"amount":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown goal status = %d", rr.Code)
	}
}

func TestCreateGoal_ValidationError(t *testing.T) {
	srv, _ := newTestServer()

	rr := do(t, srv, http.MethodPost, "/api/goals", `{"title":"  ","target_amount":10}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer()

	rr := do(t, srv, http.MethodGet, "/api/settings", "")
	var s core.Settings
	json.Unmarshal(rr.Body.Bytes(), &s)
	if s != core.DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", s)
	}

	rr = do(t, srv, http.MethodPut, "/api/settings", `{"theme":"sparkle"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown theme status = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/api/settings", `{"theme":"neon","currency":"€"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d", rr.Code)
	}
	json.Unmarshal(rr.Body.Bytes(), &s)
	if s.Theme != core.ThemeNeon || s.Currency != "€" {
		t.Fatalf("settings after update = %+v", s)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	srv, _ := newTestServer()

	rr := do(t, srv, http.MethodGet, "/api/budgets", "")
	var cats []core.BudgetCategory
	json.Unmarshal(rr.Body.Bytes(), &cats)
	if len(cats) != 8 {
		t.Fatalf("budget list = %d entries, want seeded 8", len(cats))
	}

	rr = do(t, srv, http.MethodPut, "/api/budgets/limit", `{"category":"Shopping","limit":9999}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set limit status = %d", rr.Code)
	}
	var b core.BudgetCategory
	json.Unmarshal(rr.Body.Bytes(), &b)
	if b.Limit != 9999 {
		t.Fatalf("limit = %v", b.Limit)
	}

	rr = do(t, srv, http.MethodPut, "/api/budgets/limit", `{"category":"Nope","limit":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown category status = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/budgets", `{"category":"Pets","limit":1200,"icon":"🐕"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add budget status = %d", rr.Code)
	}
	json.Unmarshal(rr.Body.Bytes(), &b)
	if b.Category != "Pets" || b.Limit != 1200 || b.Icon != "🐕" {
		t.Fatalf("added budget = %+v", b)
	}
	rr = do(t, srv, http.MethodGet, "/api/budgets", "")
	cats = nil
	json.Unmarshal(rr.Body.Bytes(), &cats)
	if len(cats) != 9 {
		t.Fatalf("budget list after add = %d entries, want 9", len(cats))
	}

	rr = do(t, srv, http.MethodPost, "/api/budgets", `{"category":"  ","limit":5}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank category status = %d", rr.Code)
	}
}

func TestGroupEndpointsReportSplit(t *testing.T) {
	srv, _ := newTestServer()

	rr := do(t, srv, http.MethodPost, "/api/groups", `{"title":"pizza","total_amount":90,"participants":["a","b","c"],"paid_by":"a"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var got struct {
		SplitAmount float64 `json:"split_amount"`
	}
	json.Unmarshal(rr.Body.Bytes(), &got)
	if got.SplitAmount != 30 {
		t.Fatalf("split_amount = %v, want 30", got.SplitAmount)
	}

	rr = do(t, srv, http.MethodPost, "/api/groups", `{"title":"solo","total_amount":10,"participants":["a"]}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("one participant status = %d", rr.Code)
	}
}

func TestChartAndCalendarEndpoints(t *testing.T) {
	srv, l := newTestServer()

	l.Expenses.Add(ledger.ExpenseInput{Date: "2024-06-01", Category: "Food", Amount: -100.0})
	l.Expenses.Add(ledger.ExpenseInput{Date: "2024-05-01", Category: "Food", Amount: -40.0})

	rr := do(t, srv, http.MethodGet, "/api/charts/category", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"Food"`) {
		t.Fatalf("category chart: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/charts/monthly?months=1", "")
	var months []struct {
		Month string  `json:"month"`
		Total float64 `json:"total"`
	}
	json.Unmarshal(rr.Body.Bytes(), &months)
	if len(months) != 1 || months[0].Month != "2024-06" {
		t.Fatalf("monthly chart = %+v", months)
	}

	rr = do(t, srv, http.MethodGet, "/api/calendar/2024/6", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "2024-06-01") {
		t.Fatalf("calendar: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/calendar/2024/13", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid month status = %d", rr.Code)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	srv, l := newTestServer()

	e, _ := l.Expenses.Add(ledger.ExpenseInput{Date: "2024-06-01", Amount: -10.0})

	rr := do(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	exported := rr.Body.String()

	l.Clear()

	rr = do(t, srv, http.MethodPost, "/api/import", exported)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if _, ok := l.Expenses.Get(e.ID); !ok {
		t.Fatalf("expense not restored by import")
	}

	rr = do(t, srv, http.MethodPost, "/api/import", `{broken`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed import status = %d", rr.Code)
	}
}

func TestStoreUnavailableSurfacesAs503(t *testing.T) {
	store := kv.NewMemory()
	l := ledger.NewWithClock(store, testClock)
	svc := services.NewLedgerService(l, nil)
	srv := NewServer(":0", svc, analytics.New(l))

	store.FailWrites = true

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"amount":-1}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rr.Code)
	}
}
