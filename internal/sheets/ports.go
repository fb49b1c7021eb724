package sheets

import (
	"context"

	"fingenius/internal/core"
)

// Ports for outbound adapters.
type (
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	ExpenseDeleter interface {
		DeleteExpense(ctx context.Context, id string) error
	}

	// ExpenseIndexer reports which record ids the sheet already holds; the
	// reconcile pass uses it to find rows it still has to append.
	ExpenseIndexer interface {
		ListExpenseIDs(ctx context.Context) ([]string, error)
	}
)
