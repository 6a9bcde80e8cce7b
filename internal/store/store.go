// Package store defines the persistence ports for the four logical
// collections: transactions, categories, goals and applied suggestions.
//
// Implementations must treat absent or malformed data as an empty
// collection, never as an error surfaced to callers; a log line is the only
// observable trace. Reads and writes within a single call are atomic with
// respect to other callers.
package store

import (
	"context"

	"financesense/internal/core"
)

// Repository is the single injected seam every component depends on instead
// of a shared global. It can be substituted with the in-memory
// implementation for tests.
type Repository interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	SaveTransactions(ctx context.Context, txs []core.Transaction) error

	ListCategories(ctx context.Context) ([]core.Category, error)
	SaveCategories(ctx context.Context, cats []core.Category) error

	ListGoals(ctx context.Context) ([]core.Goal, error)
	SaveGoals(ctx context.Context, goals []core.Goal) error

	ListAppliedSuggestions(ctx context.Context) ([]core.AppliedSuggestion, error)
	SaveAppliedSuggestions(ctx context.Context, applied []core.AppliedSuggestion) error

	Close() error
}
