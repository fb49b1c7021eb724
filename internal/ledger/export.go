package ledger

import (
	"encoding/json"
	"fmt"

	"fingenius/internal/core"
)

// Snapshot is the whole-state export document. Field names are part of the
// interchange format; renaming one breaks older exports.
type Snapshot struct {
	Version          int                   `json:"version"`
	Expenses         []core.Expense        `json:"expenses"`
	Income           []core.Income         `json:"income"`
	Goals            []core.Goal           `json:"goals"`
	Settings         core.Settings         `json:"settings"`
	BudgetCategories []core.BudgetCategory `json:"budget_categories"`
	GroupExpenses    []core.GroupExpense   `json:"group_expenses"`
	ExportedAt       string                `json:"exported_at"`
}

// importDoc mirrors Snapshot with pointer collections so an absent section
// can be told apart from an explicitly empty one. Absent sections leave the
// stored collection alone.
type importDoc struct {
	Version          *int                   `json:"version"`
	Expenses         *[]core.Expense        `json:"expenses"`
	Income           *[]core.Income         `json:"income"`
	Goals            *[]core.Goal           `json:"goals"`
	Settings         *core.Settings         `json:"settings"`
	BudgetCategories *[]core.BudgetCategory `json:"budget_categories"`
	GroupExpenses    *[]core.GroupExpense   `json:"group_expenses"`
}

// ExportAll assembles the full state into one document.
func (l *Ledger) ExportAll() Snapshot {
	return Snapshot{
		Version:          schemaVersion,
		Expenses:         l.Expenses.List(),
		Income:           l.Income.List(),
		Goals:            l.Goals.List(),
		Settings:         l.Settings.Get(),
		BudgetCategories: l.Budgets.List(),
		GroupExpenses:    l.Groups.List(),
		ExportedAt:       core.Timestamp(l.now()),
	}
}

// ExportJSON renders the snapshot for download or backup.
func (l *Ledger) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(l.ExportAll(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// ImportAll replaces every section present in the document and leaves absent
// sections untouched. A document that does not parse is rejected before any
// collection changes; record contents are taken as-is.
func (l *Ledger) ImportAll(data []byte) error {
	var doc importDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", core.ErrMalformedDoc, err)
	}
	if doc.Expenses != nil && !l.Expenses.c.save(*doc.Expenses) {
		return core.ErrStoreUnavailable
	}
	if doc.Income != nil && !l.Income.c.save(*doc.Income) {
		return core.ErrStoreUnavailable
	}
	if doc.Goals != nil && !l.Goals.c.save(*doc.Goals) {
		return core.ErrStoreUnavailable
	}
	if doc.Settings != nil && !l.store.Save(KeySettings, *doc.Settings) {
		return core.ErrStoreUnavailable
	}
	if doc.BudgetCategories != nil && !l.Budgets.c.save(*doc.BudgetCategories) {
		return core.ErrStoreUnavailable
	}
	if doc.GroupExpenses != nil && !l.Groups.c.save(*doc.GroupExpenses) {
		return core.ErrStoreUnavailable
	}
	return nil
}
