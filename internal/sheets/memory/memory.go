// Package memory is an in-process sheet mirror for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fingenius/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// DeleteExpense removes the stored expense with the given id, if present.
func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// ListExpenseIDs returns the ids of everything appended so far.
func (s *Store) ListExpenseIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.items))
	for _, e := range s.items {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}
