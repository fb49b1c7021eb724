package services

import (
	"context"
	"errors"
	"testing"

	"fingenius/internal/amqp"
	"fingenius/internal/kv"
	"fingenius/internal/ledger"
)

type fakePublisher struct {
	events []*amqp.ChangeEvent
	err    error
}

func (f *fakePublisher) PublishChange(_ context.Context, e *amqp.ChangeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestMutationsPublishChangeEvents(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(ledger.New(kv.NewMemory()), pub)
	ctx := context.Background()

	e, ok := svc.AddExpense(ctx, ledger.ExpenseInput{Amount: -10.0})
	if !ok {
		t.Fatalf("AddExpense failed")
	}
	svc.DeleteExpense(ctx, e.ID)

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[0].Collection != ledger.KeyExpenses || pub.events[0].Op != "add" || pub.events[0].ID != e.ID {
		t.Fatalf("first event = %+v", pub.events[0])
	}
	if pub.events[1].Op != "delete" {
		t.Fatalf("second event = %+v", pub.events[1])
	}
}

func TestFailedMutationPublishesNothing(t *testing.T) {
	store := kv.NewMemory()
	store.FailWrites = true
	pub := &fakePublisher{}
	svc := NewLedgerService(ledger.New(store), pub)

	if _, ok := svc.AddExpense(context.Background(), ledger.ExpenseInput{Amount: -10.0}); ok {
		t.Fatalf("AddExpense succeeded on failing store")
	}
	if len(pub.events) != 0 {
		t.Fatalf("events published for failed mutation: %+v", pub.events)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(ledger.New(kv.NewMemory()), pub)

	e, ok := svc.AddExpense(context.Background(), ledger.ExpenseInput{Amount: -10.0})
	if !ok {
		t.Fatalf("AddExpense failed because publish failed")
	}
	if _, found := svc.Ledger.Expenses.Get(e.ID); !found {
		t.Fatalf("expense not persisted")
	}
}

func TestNilPublisherIsFine(t *testing.T) {
	svc := NewLedgerService(ledger.New(kv.NewMemory()), nil)

	if _, ok := svc.AddExpense(context.Background(), ledger.ExpenseInput{Amount: -10.0}); !ok {
		t.Fatalf("AddExpense failed without publisher")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
