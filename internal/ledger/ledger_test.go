package ledger

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fingenius/internal/core"
	"fingenius/internal/kv"
)

var testClock = func() time.Time {
	return time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
}

func newTestLedger() (*Ledger, *kv.Memory) {
	store := kv.NewMemory()
	return NewWithClock(store, testClock), store
}

func TestExpenses_AddFillsDefaults(t *testing.T) {
	l, _ := newTestLedger()

	e, ok := l.Expenses.Add(ExpenseInput{Amount: -120.5, Description: "groceries"})
	if !ok {
		t.Fatalf("Add returned false")
	}
	if e.ID == "" {
		t.Fatalf("no id generated")
	}
	if e.Category != core.DefaultExpenseCategory {
		t.Fatalf("Category = %q, want %q", e.Category, core.DefaultExpenseCategory)
	}
	if e.Mood != core.DefaultMood {
		t.Fatalf("Mood = %q, want %q", e.Mood, core.DefaultMood)
	}
	if e.Kind != core.Outflow {
		t.Fatalf("Kind = %q, want %q", e.Kind, core.Outflow)
	}
	if e.Date != "2024-06-15" {
		t.Fatalf("Date = %q, want clock date", e.Date)
	}
	if e.CreatedAt != "2024-06-15T10:30:00Z" {
		t.Fatalf("CreatedAt = %q", e.CreatedAt)
	}

	list := l.Expenses.List()
	if len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("List = %+v, want exactly the added record", list)
	}
}

func TestExpenses_AddCoercesAmount(t *testing.T) {
	l, _ := newTestLedger()

	tests := []struct {
		name   string
		amount any
		want   float64
	}{
		{"float", -42.5, -42.5},
		{"numeric string", "-42.5", -42.5},
		{"comma decimal", "-42,5", -42.5},
		{"unparsable", "not a number", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := l.Expenses.Add(ExpenseInput{Amount: tt.amount})
			if !ok {
				t.Fatalf("Add returned false")
			}
			if e.Amount != tt.want {
				t.Fatalf("Amount = %v, want %v", e.Amount, tt.want)
			}
		})
	}
}

func TestExpenses_UpdateChangesOnlyPatchedFields(t *testing.T) {
	l, _ := newTestLedger()

	e, _ := l.Expenses.Add(ExpenseInput{
		Date:        "2024-06-01",
		Category:    "Food & Dining",
		Description: "lunch",
		Amount:      -30.0,
		Mood:        "😐",
	})

	mood := "😊"
	if !l.Expenses.Update(e.ID, ExpensePatch{Mood: &mood}) {
		t.Fatalf("Update returned false")
	}

	got, ok := l.Expenses.Get(e.ID)
	if !ok {
		t.Fatalf("record gone after update")
	}
	if got.Mood != "😊" {
		t.Fatalf("Mood = %q, want patched value", got.Mood)
	}
	if got.Date != e.Date || got.Category != e.Category || got.Description != e.Description || got.Amount != e.Amount {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
}

func TestExpenses_UpdateUnknownIDLeavesStoreUntouched(t *testing.T) {
	l, _ := newTestLedger()

	e, _ := l.Expenses.Add(ExpenseInput{Amount: -10.0})

	desc := "changed"
	if l.Expenses.Update("no-such-id", ExpensePatch{Description: &desc}) {
		t.Fatalf("Update returned true for unknown id")
	}

	got, _ := l.Expenses.Get(e.ID)
	if got.Description != "" {
		t.Fatalf("existing record changed: %+v", got)
	}
}

func TestExpenses_DeleteIsNotIdempotent(t *testing.T) {
	l, _ := newTestLedger()

	e, _ := l.Expenses.Add(ExpenseInput{Amount: -10.0})
	l.Expenses.Add(ExpenseInput{Amount: -20.0})

	if !l.Expenses.Delete(e.ID) {
		t.Fatalf("first Delete returned false")
	}
	if len(l.Expenses.List()) != 1 {
		t.Fatalf("List length = %d after delete, want 1", len(l.Expenses.List()))
	}
	if l.Expenses.Delete(e.ID) {
		t.Fatalf("second Delete returned true")
	}
	if len(l.Expenses.List()) != 1 {
		t.Fatalf("second delete changed the collection")
	}
}

func TestIncome_AddDefaultsCategory(t *testing.T) {
	l, _ := newTestLedger()

	rec, ok := l.Income.Add(IncomeInput{Amount: 5000})
	if !ok {
		t.Fatalf("Add returned false")
	}
	if rec.Category != core.DefaultIncomeCategory {
		t.Fatalf("Category = %q, want %q", rec.Category, core.DefaultIncomeCategory)
	}
	if rec.Amount != 5000 {
		t.Fatalf("Amount = %v", rec.Amount)
	}
}

func TestGoals_AddValidates(t *testing.T) {
	l, _ := newTestLedger()

	if _, err := l.Goals.Add(GoalInput{Title: "  "}); err != core.ErrEmptyTitle {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}
	if _, err := l.Goals.Add(GoalInput{Title: "car", TargetAmount: -1.0}); err != core.ErrNegativeTarget {
		t.Fatalf("err = %v, want ErrNegativeTarget", err)
	}
	if len(l.Goals.List()) != 0 {
		t.Fatalf("invalid goal reached the store")
	}

	g, err := l.Goals.Add(GoalInput{Title: "car", TargetAmount: 20000.0})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if g.ID == "" || g.CreatedAt == "" {
		t.Fatalf("goal missing generated fields: %+v", g)
	}
}

func TestGoals_AddProgressNoClamping(t *testing.T) {
	l, _ := newTestLedger()

	g, _ := l.Goals.Add(GoalInput{Title: "trip", TargetAmount: 1200.0, CurrentAmount: 1000.0})

	if err := l.Goals.AddProgress(g.ID, 500); err != nil {
		t.Fatalf("AddProgress returned error: %v", err)
	}
	got, _ := l.Goals.Get(g.ID)
	if got.CurrentAmount != 1500 {
		t.Fatalf("CurrentAmount = %v, want 1500 (no clamping)", got.CurrentAmount)
	}
	if got.UpdatedAt == "" {
		t.Fatalf("UpdatedAt not stamped")
	}

	// unparsable amounts contribute zero
	if err := l.Goals.AddProgress(g.ID, "oops"); err != nil {
		t.Fatalf("AddProgress with junk amount returned error: %v", err)
	}
	got, _ = l.Goals.Get(g.ID)
	if got.CurrentAmount != 1500 {
		t.Fatalf("CurrentAmount = %v after junk progress, want 1500", got.CurrentAmount)
	}

	if err := l.Goals.AddProgress("no-such-id", 10); !errors.Is(err, core.ErrRecordNotFound) {
		t.Fatalf("AddProgress for unknown id = %v, want ErrRecordNotFound", err)
	}
}

func TestBudgets_ListSeedsDefaults(t *testing.T) {
	l, _ := newTestLedger()

	cats := l.Budgets.List()
	if len(cats) != 8 {
		t.Fatalf("seeded %d categories, want 8", len(cats))
	}
	if cats[0].Category != "Food & Dining" || cats[0].Limit != 5000 {
		t.Fatalf("unexpected first seed entry: %+v", cats[0])
	}

	// seed must be persisted, not recomputed
	if !l.Budgets.Delete("Food & Dining") {
		t.Fatalf("Delete seeded category failed")
	}
	if len(l.Budgets.List()) != 7 {
		t.Fatalf("seed reappeared after delete")
	}
}

func TestBudgets_SetLimit(t *testing.T) {
	l, _ := newTestLedger()

	if err := l.Budgets.SetLimit("Shopping", 9000); err != nil {
		t.Fatalf("SetLimit: %v", err)
	}
	b, ok := l.Budgets.Get("Shopping")
	if !ok || b.Limit != 9000 {
		t.Fatalf("limit not updated: %+v", b)
	}

	if err := l.Budgets.SetLimit("Nonexistent", 100); err != core.ErrUnknownCategory {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestSettings_DefaultsAndMerge(t *testing.T) {
	l, store := newTestLedger()

	got := l.Settings.Get()
	if got != core.DefaultSettings() {
		t.Fatalf("Get on empty store = %+v, want defaults", got)
	}

	// stored document from an older version missing newer fields
	if err := store.Set(KeySettings, `{"theme":"dark"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got = l.Settings.Get()
	if got.Theme != core.ThemeDark {
		t.Fatalf("Theme = %q, want dark", got.Theme)
	}
	if got.Currency != "₹" || !got.BudgetAlerts {
		t.Fatalf("defaults not merged under stored overrides: %+v", got)
	}
}

func TestSettings_UpdateRejectsUnknownTheme(t *testing.T) {
	l, _ := newTestLedger()

	theme := "sparkle"
	if _, err := l.Settings.Update(SettingsPatch{Theme: &theme}); err != core.ErrUnknownTheme {
		t.Fatalf("err = %v, want ErrUnknownTheme", err)
	}
	if l.Settings.Get().Theme != core.ThemeLight {
		t.Fatalf("theme changed despite rejection")
	}

	neon := string(core.ThemeNeon)
	currency := "€"
	s, err := l.Settings.Update(SettingsPatch{Theme: &neon, Currency: &currency})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Theme != core.ThemeNeon || s.Currency != "€" {
		t.Fatalf("Update = %+v", s)
	}
	if s.Language != "en" {
		t.Fatalf("unpatched field changed: %+v", s)
	}
}

func TestGroups_AddValidatesParticipants(t *testing.T) {
	l, _ := newTestLedger()

	if _, err := l.Groups.Add(GroupInput{Title: "dinner", Participants: []string{"solo"}}); err != core.ErrNoParticipants {
		t.Fatalf("err = %v, want ErrNoParticipants", err)
	}

	g, err := l.Groups.Add(GroupInput{
		Title:        "dinner",
		TotalAmount:  90.0,
		Participants: []string{"a", "b", "c"},
		PaidBy:       "a",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := g.SplitAmount(); got != 30 {
		t.Fatalf("SplitAmount = %v, want 30", got)
	}
}

func TestCollection_ReadsLegacyBareArray(t *testing.T) {
	l, store := newTestLedger()

	// data written before envelopes: a bare JSON array under the key
	legacy := `[{"id":"old-1","date":"2024-01-02","category":"Food & Dining","amount":-12,"kind":"outflow","mood":"😊"}]`
	if err := store.Set(KeyExpenses, legacy); err != nil {
		t.Fatalf("Set: %v", err)
	}

	list := l.Expenses.List()
	if len(list) != 1 || list[0].ID != "old-1" {
		t.Fatalf("legacy layout not readable: %+v", list)
	}

	// the next write upgrades the layout to a versioned envelope
	l.Expenses.Add(ExpenseInput{Amount: -5.0})
	raw, _, _ := store.Get(KeyExpenses)
	if raw == "" || raw[0] != '{' {
		t.Fatalf("rewrite did not produce an envelope: %q", raw)
	}
	if len(l.Expenses.List()) != 2 {
		t.Fatalf("records lost during envelope upgrade")
	}
}

func TestEnvelope_DecodesBothLayoutsInOnePass(t *testing.T) {
	// legacy bare array: decodes directly, no failed envelope attempt first
	var env envelope[core.Expense]
	if err := json.Unmarshal([]byte(`[{"id":"old-1"}]`), &env); err != nil {
		t.Fatalf("legacy array rejected: %v", err)
	}
	if env.Version != 0 || len(env.Records) != 1 || env.Records[0].ID != "old-1" {
		t.Fatalf("legacy decode = %+v", env)
	}

	env = envelope[core.Expense]{}
	if err := json.Unmarshal([]byte(`{"version":1,"records":[{"id":"new-1"}]}`), &env); err != nil {
		t.Fatalf("envelope rejected: %v", err)
	}
	if env.Version != 1 || len(env.Records) != 1 || env.Records[0].ID != "new-1" {
		t.Fatalf("envelope decode = %+v", env)
	}

	if err := json.Unmarshal([]byte(`"neither"`), &env); err == nil {
		t.Fatalf("non-collection value accepted")
	}
}

func TestLedger_ClearWipesAllCollections(t *testing.T) {
	l, _ := newTestLedger()

	l.Expenses.Add(ExpenseInput{Amount: -1.0})
	l.Income.Add(IncomeInput{Amount: 1.0})
	l.Goals.Add(GoalInput{Title: "g", TargetAmount: 1.0})

	l.Clear()

	if len(l.Expenses.List()) != 0 || len(l.Income.List()) != 0 || len(l.Goals.List()) != 0 {
		t.Fatalf("collections survived Clear")
	}
}
