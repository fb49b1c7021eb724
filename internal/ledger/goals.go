package ledger

import (
	"time"

	"fingenius/internal/core"
)

type GoalInput struct {
	Title         string `json:"title"`
	TargetAmount  any    `json:"target_amount"`
	CurrentAmount any    `json:"current_amount"`
	Deadline      string `json:"deadline"`
	Category      string `json:"category"`
}

type GoalPatch struct {
	Title        *string `json:"title"`
	TargetAmount any     `json:"target_amount"`
	Deadline     *string `json:"deadline"`
	Category     *string `json:"category"`
}

type Goals struct {
	c   collection[core.Goal]
	now func() time.Time
}

func (m *Goals) List() []core.Goal {
	return m.c.list()
}

func (m *Goals) Get(id string) (core.Goal, bool) {
	return m.c.get(id)
}

// Add validates the goal before persisting. A validation error never touches
// the store.
func (m *Goals) Add(in GoalInput) (core.Goal, error) {
	ts := core.Timestamp(m.now())
	g := core.Goal{
		ID:            core.NewID(),
		Title:         in.Title,
		TargetAmount:  core.CoerceNumber(in.TargetAmount),
		CurrentAmount: core.CoerceNumber(in.CurrentAmount),
		Deadline:      in.Deadline,
		Category:      in.Category,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if !m.c.add(g) {
		return core.Goal{}, core.ErrStoreUnavailable
	}
	return g, nil
}

func (m *Goals) Update(id string, patch GoalPatch) bool {
	return m.c.update(id, func(g *core.Goal) {
		if patch.Title != nil {
			g.Title = *patch.Title
		}
		if patch.TargetAmount != nil {
			g.TargetAmount = core.CoerceNumber(patch.TargetAmount)
		}
		if patch.Deadline != nil {
			g.Deadline = *patch.Deadline
		}
		if patch.Category != nil {
			g.Category = *patch.Category
		}
		g.UpdatedAt = core.Timestamp(m.now())
	})
}

// AddProgress adds amount to the goal's current_amount. Progress past the
// target is kept as-is; overshoot is the caller's to present.
func (m *Goals) AddProgress(id string, amount any) error {
	if _, ok := m.c.get(id); !ok {
		return core.ErrRecordNotFound
	}
	ok := m.c.update(id, func(g *core.Goal) {
		g.CurrentAmount += core.CoerceNumber(amount)
		g.UpdatedAt = core.Timestamp(m.now())
	})
	if !ok {
		return core.ErrStoreUnavailable
	}
	return nil
}

func (m *Goals) Delete(id string) bool {
	return m.c.remove(id)
}
