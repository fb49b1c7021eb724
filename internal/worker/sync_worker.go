// Package worker mirrors ledger expenses into an external sheet. It consumes
// change events for the live path and periodically reconciles the whole
// collection to recover from missed events.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fingenius/internal/amqp"
	"fingenius/internal/ledger"
	"fingenius/internal/sheets"
)

// ChangeConsumer is the slice of the AMQP client the worker needs.
type ChangeConsumer interface {
	ConsumeChanges(ctx context.Context, handler func(*amqp.ChangeEvent) error) error
}

// SyncWorker applies expense changes to the sheet mirror. Other collections
// have no sheet representation and their events are acknowledged untouched.
type SyncWorker struct {
	ledger   *ledger.Ledger
	writer   sheets.ExpenseWriter
	deleter  sheets.ExpenseDeleter
	interval time.Duration
}

func NewSyncWorker(l *ledger.Ledger, writer sheets.ExpenseWriter, deleter sheets.ExpenseDeleter, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		ledger:   l,
		writer:   writer,
		deleter:  deleter,
		interval: interval,
	}
}

// Run consumes change events and reconciles on a timer until ctx is
// cancelled or either loop fails.
func (w *SyncWorker) Run(ctx context.Context, consumer ChangeConsumer) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeChanges(ctx, func(event *amqp.ChangeEvent) error {
			return w.HandleChange(ctx, event)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.Reconcile(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic reconcile failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// HandleChange processes a single change event from AMQP.
func (w *SyncWorker) HandleChange(ctx context.Context, event *amqp.ChangeEvent) error {
	if event.Collection != ledger.KeyExpenses && event.Op != "import" {
		slog.InfoContext(ctx, "No sheet mirror for collection, skipping",
			"collection", event.Collection, "op", event.Op)
		return nil
	}

	switch event.Op {
	case "add":
		return w.appendExpense(ctx, event.ID)
	case "update":
		// rewrite the row: drop the stale copy, then append the new state
		if err := w.deleter.DeleteExpense(ctx, event.ID); err != nil {
			return fmt.Errorf("delete stale row: %w", err)
		}
		return w.appendExpense(ctx, event.ID)
	case "delete":
		if err := w.deleter.DeleteExpense(ctx, event.ID); err != nil {
			return fmt.Errorf("delete expense row: %w", err)
		}
		return nil
	case "import":
		return w.Reconcile(ctx)
	default:
		slog.WarnContext(ctx, "Unknown change op, skipping", "op", event.Op)
		return nil
	}
}

func (w *SyncWorker) appendExpense(ctx context.Context, id string) error {
	e, ok := w.ledger.Expenses.Get(id)
	if !ok {
		// deleted between event and processing; nothing to mirror
		slog.WarnContext(ctx, "Expense no longer in ledger, skipping sync", "id", id)
		return nil
	}

	ref, err := w.writer.Append(ctx, e)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Synced expense to sheet",
		"id", e.ID,
		"sheet_ref", ref,
		"amount", e.Amount)
	return nil
}

// Reconcile appends every ledger expense the sheet does not know about yet.
// This is the recovery path for events lost while the worker was down; it
// needs the writer to also expose its id index.
func (w *SyncWorker) Reconcile(ctx context.Context) error {
	indexer, ok := w.writer.(sheets.ExpenseIndexer)
	if !ok {
		slog.WarnContext(ctx, "Sheet writer has no id index, skipping reconcile")
		return nil
	}

	ids, err := indexer.ListExpenseIDs(ctx)
	if err != nil {
		return fmt.Errorf("list sheet ids: %w", err)
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	var synced int
	for _, e := range w.ledger.Expenses.List() {
		if _, ok := known[e.ID]; ok {
			continue
		}
		if err := w.appendExpense(ctx, e.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to reconcile expense", "id", e.ID, "error", err)
			continue
		}
		synced++
	}

	if synced > 0 {
		slog.InfoContext(ctx, "Reconcile completed", "synced", synced)
	}
	return nil
}
