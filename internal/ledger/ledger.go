// Package ledger holds the six record collections on top of the kv store:
// one generic collection manager instantiated per entity, the settings
// singleton, and whole-state import/export.
package ledger

import (
	"time"

	"fingenius/internal/core"
	"fingenius/internal/kv"
)

// Storage keys: the fixed, enumerated namespace the module owns inside the
// shared key/value store.
const (
	KeyExpenses         = "fingenius_expenses"
	KeyIncome           = "fingenius_income"
	KeyGoals            = "fingenius_goals"
	KeySettings         = "fingenius_settings"
	KeyBudgetCategories = "fingenius_budget_categories"
	KeyGroupExpenses    = "fingenius_group_expenses"
)

// OwnedKeys enumerates every key Clear is allowed to touch.
func OwnedKeys() []string {
	return []string{
		KeyExpenses,
		KeyIncome,
		KeyGoals,
		KeySettings,
		KeyBudgetCategories,
		KeyGroupExpenses,
	}
}

// Ledger is the single-writer facade over all collections.
type Ledger struct {
	store *kv.Adapter
	now   func() time.Time

	Expenses *Expenses
	Income   *Income
	Goals    *Goals
	Budgets  *Budgets
	Groups   *Groups
	Settings *SettingsManager
}

// New builds a ledger over the given backend using the wall clock.
func New(store kv.Store) *Ledger {
	return NewWithClock(store, time.Now)
}

// NewWithClock injects the clock; tests pin it to get stable timestamps and
// a stable "current month".
func NewWithClock(store kv.Store, now func() time.Time) *Ledger {
	adapter := kv.NewAdapter(store, OwnedKeys())
	l := &Ledger{store: adapter, now: now}
	l.Expenses = &Expenses{c: newCollection[core.Expense](adapter, KeyExpenses, func(e core.Expense) string { return e.ID }), now: now}
	l.Income = &Income{c: newCollection[core.Income](adapter, KeyIncome, func(i core.Income) string { return i.ID }), now: now}
	l.Goals = &Goals{c: newCollection[core.Goal](adapter, KeyGoals, func(g core.Goal) string { return g.ID }), now: now}
	l.Budgets = &Budgets{c: newCollection[core.BudgetCategory](adapter, KeyBudgetCategories, func(b core.BudgetCategory) string { return b.Category })}
	l.Groups = &Groups{c: newCollection[core.GroupExpense](adapter, KeyGroupExpenses, func(g core.GroupExpense) string { return g.ID }), now: now}
	l.Settings = &SettingsManager{store: adapter, key: KeySettings}
	return l
}

// Available reports whether the backing store accepts writes.
func (l *Ledger) Available() bool {
	return l.store.Available()
}

// Clear wipes every collection this module owns and nothing else.
func (l *Ledger) Clear() {
	l.store.Clear()
}

// Now returns the ledger clock, for read models that depend on "today".
func (l *Ledger) Now() time.Time {
	return l.now()
}
