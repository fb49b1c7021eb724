package services

import (
	"context"
	"log/slog"

	"fingenius/internal/amqp"
	"fingenius/internal/core"
	"fingenius/internal/ledger"
)

// ChangePublisher is the slice of the AMQP client the service needs; nil
// means the change feed is disabled.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event *amqp.ChangeEvent) error
	Close() error
}

// LedgerService wraps the ledger with a change feed: every successful
// mutation is announced on the feed so downstream consumers (the sheet sync
// worker) can react. Publish failures never fail the mutation, the local
// write is the source of truth.
type LedgerService struct {
	Ledger    *ledger.Ledger
	publisher ChangePublisher
}

func NewLedgerService(l *ledger.Ledger, publisher ChangePublisher) *LedgerService {
	return &LedgerService{Ledger: l, publisher: publisher}
}

func (s *LedgerService) AddExpense(ctx context.Context, in ledger.ExpenseInput) (core.Expense, bool) {
	e, ok := s.Ledger.Expenses.Add(in)
	if ok {
		s.publish(ctx, ledger.KeyExpenses, "add", e.ID)
	}
	return e, ok
}

func (s *LedgerService) UpdateExpense(ctx context.Context, id string, patch ledger.ExpensePatch) bool {
	ok := s.Ledger.Expenses.Update(id, patch)
	if ok {
		s.publish(ctx, ledger.KeyExpenses, "update", id)
	}
	return ok
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) bool {
	ok := s.Ledger.Expenses.Delete(id)
	if ok {
		s.publish(ctx, ledger.KeyExpenses, "delete", id)
	}
	return ok
}

func (s *LedgerService) AddIncome(ctx context.Context, in ledger.IncomeInput) (core.Income, bool) {
	rec, ok := s.Ledger.Income.Add(in)
	if ok {
		s.publish(ctx, ledger.KeyIncome, "add", rec.ID)
	}
	return rec, ok
}

func (s *LedgerService) UpdateIncome(ctx context.Context, id string, patch ledger.IncomePatch) bool {
	ok := s.Ledger.Income.Update(id, patch)
	if ok {
		s.publish(ctx, ledger.KeyIncome, "update", id)
	}
	return ok
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id string) bool {
	ok := s.Ledger.Income.Delete(id)
	if ok {
		s.publish(ctx, ledger.KeyIncome, "delete", id)
	}
	return ok
}

func (s *LedgerService) AddGoal(ctx context.Context, in ledger.GoalInput) (core.Goal, error) {
	g, err := s.Ledger.Goals.Add(in)
	if err == nil {
		s.publish(ctx, ledger.KeyGoals, "add", g.ID)
	}
	return g, err
}

func (s *LedgerService) UpdateGoal(ctx context.Context, id string, patch ledger.GoalPatch) bool {
	ok := s.Ledger.Goals.Update(id, patch)
	if ok {
		s.publish(ctx, ledger.KeyGoals, "update", id)
	}
	return ok
}

func (s *LedgerService) AddGoalProgress(ctx context.Context, id string, amount any) error {
	err := s.Ledger.Goals.AddProgress(id, amount)
	if err == nil {
		s.publish(ctx, ledger.KeyGoals, "update", id)
	}
	return err
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) bool {
	ok := s.Ledger.Goals.Delete(id)
	if ok {
		s.publish(ctx, ledger.KeyGoals, "delete", id)
	}
	return ok
}

func (s *LedgerService) AddGroup(ctx context.Context, in ledger.GroupInput) (core.GroupExpense, error) {
	g, err := s.Ledger.Groups.Add(in)
	if err == nil {
		s.publish(ctx, ledger.KeyGroupExpenses, "add", g.ID)
	}
	return g, err
}

func (s *LedgerService) DeleteGroup(ctx context.Context, id string) bool {
	ok := s.Ledger.Groups.Delete(id)
	if ok {
		s.publish(ctx, ledger.KeyGroupExpenses, "delete", id)
	}
	return ok
}

func (s *LedgerService) UpdateSettings(ctx context.Context, patch ledger.SettingsPatch) (core.Settings, error) {
	settings, err := s.Ledger.Settings.Update(patch)
	if err == nil {
		s.publish(ctx, ledger.KeySettings, "update", "")
	}
	return settings, err
}

func (s *LedgerService) AddBudget(ctx context.Context, b core.BudgetCategory) bool {
	ok := s.Ledger.Budgets.Add(b)
	if ok {
		s.publish(ctx, ledger.KeyBudgetCategories, "add", b.Category)
	}
	return ok
}

func (s *LedgerService) SetBudgetLimit(ctx context.Context, category string, limit any) error {
	err := s.Ledger.Budgets.SetLimit(category, limit)
	if err == nil {
		s.publish(ctx, ledger.KeyBudgetCategories, "update", category)
	}
	return err
}

func (s *LedgerService) Import(ctx context.Context, data []byte) error {
	if err := s.Ledger.ImportAll(data); err != nil {
		return err
	}
	s.publish(ctx, "all", "import", "")
	return nil
}

func (s *LedgerService) publish(ctx context.Context, collection, op, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, amqp.NewChangeEvent(collection, op, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"collection", collection, "op", op, "id", id, "error", err)
		// Don't fail the request - the local write succeeded
	}
}

// Close closes the change feed connection if one is configured.
func (s *LedgerService) Close() error {
	if s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}
