package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fingenius/internal/core"
	"fingenius/internal/ledger"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.Expenses.List())
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in ledger.ExpenseInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, ok := s.svc.AddExpense(r.Context(), in)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var patch ledger.ExpensePatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := r.PathValue("id")
	if !s.svc.UpdateExpense(r.Context(), id, patch) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	e, _ := s.svc.Ledger.Expenses.Get(id)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if !s.svc.DeleteExpense(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.Income.List())
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in ledger.IncomeInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, ok := s.svc.AddIncome(r.Context(), in)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var patch ledger.IncomePatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := r.PathValue("id")
	if !s.svc.UpdateIncome(r.Context(), id, patch) {
		writeError(w, http.StatusNotFound, "income not found")
		return
	}
	rec, _ := s.svc.Ledger.Income.Get(id)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if !s.svc.DeleteIncome(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "income not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// goalView augments a goal with its derived completion percentage. Overshoot
// past the target is reported as-is.
type goalView struct {
	core.Goal
	Progress float64 `json:"progress"`
}

func newGoalView(g core.Goal) goalView {
	v := goalView{Goal: g}
	if g.TargetAmount > 0 {
		v.Progress = g.CurrentAmount / g.TargetAmount * 100
	}
	return v
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.svc.Ledger.Goals.List()
	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, newGoalView(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in ledger.GoalInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := s.svc.AddGoal(r.Context(), in)
	switch {
	case errors.Is(err, core.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, newGoalView(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch ledger.GoalPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := r.PathValue("id")
	if !s.svc.UpdateGoal(r.Context(), id, patch) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	g, _ := s.svc.Ledger.Goals.Get(id)
	writeJSON(w, http.StatusOK, newGoalView(g))
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount any `json:"amount"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := r.PathValue("id")
	err := s.svc.AddGoalProgress(r.Context(), id, body.Amount)
	switch {
	case errors.Is(err, core.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "goal not found")
		return
	case errors.Is(err, core.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	}
	g, _ := s.svc.Ledger.Goals.Get(id)
	writeJSON(w, http.StatusOK, newGoalView(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if !s.svc.DeleteGoal(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.Settings.Get())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch ledger.SettingsPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	settings, err := s.svc.UpdateSettings(r.Context(), patch)
	switch {
	case errors.Is(err, core.ErrUnknownTheme):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, core.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Ledger.Settings.Reset()
	if errors.Is(err, core.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.Budgets.List())
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
		Limit    any    `json:"limit"`
		Icon     string `json:"icon"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Category = strings.TrimSpace(body.Category)
	if body.Category == "" {
		writeError(w, http.StatusUnprocessableEntity, "category name is required")
		return
	}
	b := core.BudgetCategory{
		Category: body.Category,
		Limit:    core.CoerceNumber(body.Limit),
		Icon:     body.Icon,
	}
	if !s.svc.AddBudget(r.Context(), b) {
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleSetBudgetLimit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
		Limit    any    `json:"limit"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := s.svc.SetBudgetLimit(r.Context(), body.Category, body.Limit)
	switch {
	case errors.Is(err, core.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, "unknown budget category")
		return
	case errors.Is(err, core.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	}
	b, _ := s.svc.Ledger.Budgets.Get(body.Category)
	writeJSON(w, http.StatusOK, b)
}

// groupView adds the derived per-head share to the wire shape.
type groupView struct {
	core.GroupExpense
	SplitAmount float64 `json:"split_amount"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups := s.svc.Ledger.Groups.List()
	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, groupView{GroupExpense: g, SplitAmount: g.SplitAmount()})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var in ledger.GroupInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := s.svc.AddGroup(r.Context(), in)
	switch {
	case errors.Is(err, core.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, groupView{GroupExpense: g, SplitAmount: g.SplitAmount()})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if !s.svc.DeleteGroup(r.Context(), r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "group expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"insights": s.analytics.Insights()})
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analytics.SpendingByCategory())
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	months := 0
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			months = n
		}
	}
	writeJSON(w, http.StatusOK, s.analytics.MonthlyTrend(months))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year := parseIntPath(r, "year")
	month := parseIntPath(r, "month")
	if year < 1 || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	writeJSON(w, http.StatusOK, s.analytics.DailySpending(year, month))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Ledger.ExportJSON()
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="fingenius-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	err = s.svc.Import(r.Context(), data)
	switch {
	case errors.Is(err, core.ErrMalformedDoc):
		writeError(w, http.StatusBadRequest, "malformed import document")
		return
	case errors.Is(err, core.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "state not persisted")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}
