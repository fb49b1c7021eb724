package ledger

import (
	"strings"
	"time"

	"fingenius/internal/core"
)

type IncomeInput struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      any    `json:"amount"`
}

type IncomePatch struct {
	Date        *string `json:"date"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Amount      any     `json:"amount"`
}

type Income struct {
	c   collection[core.Income]
	now func() time.Time
}

func (m *Income) List() []core.Income {
	return m.c.list()
}

func (m *Income) Get(id string) (core.Income, bool) {
	return m.c.get(id)
}

func (m *Income) Add(in IncomeInput) (core.Income, bool) {
	rec := core.Income{
		ID:          core.NewID(),
		Date:        in.Date,
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Amount:      core.CoerceNumber(in.Amount),
		CreatedAt:   core.Timestamp(m.now()),
	}
	if rec.Date == "" {
		rec.Date = m.now().UTC().Format("2006-01-02")
	}
	if rec.Category == "" {
		rec.Category = core.DefaultIncomeCategory
	}
	return rec, m.c.add(rec)
}

func (m *Income) Update(id string, patch IncomePatch) bool {
	return m.c.update(id, func(rec *core.Income) {
		if patch.Date != nil {
			rec.Date = *patch.Date
		}
		if patch.Category != nil {
			rec.Category = *patch.Category
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		if patch.Amount != nil {
			rec.Amount = core.CoerceNumber(patch.Amount)
		}
	})
}

func (m *Income) Delete(id string) bool {
	return m.c.remove(id)
}
