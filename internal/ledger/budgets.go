package ledger

import "fingenius/internal/core"

// Budgets manages per-category spending limits. The collection is keyed by
// category name rather than a generated id, and an empty store is seeded with
// the stock categories on first read.
type Budgets struct {
	c collection[core.BudgetCategory]
}

// List returns the stored categories, seeding the defaults when the store
// key does not exist yet. A stored empty list (for example after importing a
// document with no categories) stays empty; only a missing key seeds. The
// seed is persisted so later reads see it even if the write of the seed
// itself fails mid-session.
func (m *Budgets) List() []core.BudgetCategory {
	cats, present := m.c.load()
	if present {
		return cats
	}
	cats = core.DefaultBudgetCategories()
	m.c.save(cats)
	return cats
}

func (m *Budgets) Get(category string) (core.BudgetCategory, bool) {
	for _, b := range m.List() {
		if b.Category == category {
			return b, true
		}
	}
	return core.BudgetCategory{}, false
}

// SetLimit updates the limit of an existing category. Unknown categories are
// rejected; adding new ones goes through Add.
func (m *Budgets) SetLimit(category string, limit any) error {
	cats := m.List()
	for i := range cats {
		if cats[i].Category == category {
			cats[i].Limit = core.CoerceNumber(limit)
			if !m.c.save(cats) {
				return core.ErrStoreUnavailable
			}
			return nil
		}
	}
	return core.ErrUnknownCategory
}

// Add appends a new category, or overwrites the limit and icon when the name
// already exists.
func (m *Budgets) Add(b core.BudgetCategory) bool {
	cats := m.List()
	for i := range cats {
		if cats[i].Category == b.Category {
			cats[i] = b
			return m.c.save(cats)
		}
	}
	return m.c.save(append(cats, b))
}

func (m *Budgets) Delete(category string) bool {
	cats := m.List()
	kept := cats[:0]
	found := false
	for _, b := range cats {
		if b.Category == category {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return false
	}
	return m.c.save(kept)
}
