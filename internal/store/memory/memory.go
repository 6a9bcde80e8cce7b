// Package memory provides an in-memory Repository used as the default dev
// backend and as the test substitute for the SQLite store.
package memory

import (
	"context"
	"sync"

	"financesense/internal/core"
)

type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	cats    []core.Category
	goals   []core.Goal
	applied []core.AppliedSuggestion
}

func New() *Store {
	return &Store{}
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) SaveTransactions(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append([]core.Transaction(nil), txs...)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) SaveCategories(_ context.Context, cats []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = append([]core.Category(nil), cats...)
	return nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

func (s *Store) SaveGoals(_ context.Context, goals []core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append([]core.Goal(nil), goals...)
	return nil
}

func (s *Store) ListAppliedSuggestions(_ context.Context) ([]core.AppliedSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.AppliedSuggestion(nil), s.applied...), nil
}

func (s *Store) SaveAppliedSuggestions(_ context.Context, applied []core.AppliedSuggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append([]core.AppliedSuggestion(nil), applied...)
	return nil
}

func (s *Store) Close() error { return nil }
