package ledger

import (
	"strings"
	"time"

	"fingenius/internal/core"
)

// ExpenseInput carries the caller-supplied fields for a new expense. Amount
// is loosely typed on purpose: unparsable input coerces to 0 rather than
// failing the add.
type ExpenseInput struct {
	Date         string `json:"date"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Amount       any    `json:"amount"`
	Kind         string `json:"kind"`
	Mood         string `json:"mood"`
	ReceiptImage string `json:"receipt_image"`
}

// ExpensePatch updates only the fields that are set.
type ExpensePatch struct {
	Date         *string `json:"date"`
	Category     *string `json:"category"`
	Description  *string `json:"description"`
	Amount       any     `json:"amount"`
	Kind         *string `json:"kind"`
	Mood         *string `json:"mood"`
	ReceiptImage *string `json:"receipt_image"`
}

type Expenses struct {
	c   collection[core.Expense]
	now func() time.Time
}

func (m *Expenses) List() []core.Expense {
	return m.c.list()
}

func (m *Expenses) Get(id string) (core.Expense, bool) {
	return m.c.get(id)
}

// Add fills defaults, generates the id, stamps created_at and persists. The
// returned bool reports persistence only; missing optional fields never fail.
func (m *Expenses) Add(in ExpenseInput) (core.Expense, bool) {
	ts := core.Timestamp(m.now())
	e := core.Expense{
		ID:           core.NewID(),
		Date:         in.Date,
		Category:     strings.TrimSpace(in.Category),
		Description:  in.Description,
		Amount:       core.CoerceNumber(in.Amount),
		Kind:         core.FlowKind(in.Kind),
		Mood:         in.Mood,
		ReceiptImage: in.ReceiptImage,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if e.Date == "" {
		e.Date = m.now().UTC().Format("2006-01-02")
	}
	if e.Category == "" {
		e.Category = core.DefaultExpenseCategory
	}
	if e.Mood == "" {
		e.Mood = core.DefaultMood
	}
	if !e.Kind.Valid() {
		e.Kind = core.Outflow
	}
	return e, m.c.add(e)
}

// Update shallow-merges the patch over the stored record and stamps
// updated_at. Unknown ids fail without touching the store.
func (m *Expenses) Update(id string, patch ExpensePatch) bool {
	return m.c.update(id, func(e *core.Expense) {
		if patch.Date != nil {
			e.Date = *patch.Date
		}
		if patch.Category != nil {
			e.Category = *patch.Category
		}
		if patch.Description != nil {
			e.Description = *patch.Description
		}
		if patch.Amount != nil {
			e.Amount = core.CoerceNumber(patch.Amount)
		}
		if patch.Kind != nil && core.FlowKind(*patch.Kind).Valid() {
			e.Kind = core.FlowKind(*patch.Kind)
		}
		if patch.Mood != nil {
			e.Mood = *patch.Mood
		}
		if patch.ReceiptImage != nil {
			e.ReceiptImage = *patch.ReceiptImage
		}
		e.UpdatedAt = core.Timestamp(m.now())
	})
}

func (m *Expenses) Delete(id string) bool {
	return m.c.remove(id)
}
