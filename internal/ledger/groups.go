package ledger

import (
	"time"

	"fingenius/internal/core"
)

type GroupInput struct {
	Title        string   `json:"title"`
	TotalAmount  any      `json:"total_amount"`
	Participants []string `json:"participants"`
	PaidBy       string   `json:"paid_by"`
	Date         string   `json:"date"`
	Description  string   `json:"description"`
}

type Groups struct {
	c   collection[core.GroupExpense]
	now func() time.Time
}

func (m *Groups) List() []core.GroupExpense {
	return m.c.list()
}

func (m *Groups) Get(id string) (core.GroupExpense, bool) {
	return m.c.get(id)
}

func (m *Groups) Add(in GroupInput) (core.GroupExpense, error) {
	g := core.GroupExpense{
		ID:           core.NewID(),
		Title:        in.Title,
		TotalAmount:  core.CoerceNumber(in.TotalAmount),
		Participants: in.Participants,
		PaidBy:       in.PaidBy,
		Date:         in.Date,
		Description:  in.Description,
		CreatedAt:    core.Timestamp(m.now()),
	}
	if g.Date == "" {
		g.Date = m.now().UTC().Format("2006-01-02")
	}
	if err := g.Validate(); err != nil {
		return core.GroupExpense{}, err
	}
	if !m.c.add(g) {
		return core.GroupExpense{}, core.ErrStoreUnavailable
	}
	return g, nil
}

func (m *Groups) Delete(id string) bool {
	return m.c.remove(id)
}
