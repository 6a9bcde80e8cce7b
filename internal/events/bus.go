// Package events carries domain event notifications between the finance
// service and interested subscribers, both in-process and over AMQP.
package events

import (
	"context"
	"sync"

	"financesense/internal/core"
)

// TransactionAdded is published after a transaction has been persisted.
type TransactionAdded struct {
	Transaction core.Transaction
}

// SuggestionApplied is published after a saving suggestion has been
// converted into a goal.
type SuggestionApplied struct {
	SuggestionID int
}

type (
	TransactionHandler func(ctx context.Context, ev TransactionAdded)
	SuggestionHandler  func(ctx context.Context, ev SuggestionApplied)
)

// Bus is a minimal in-process publish/subscribe fan-out. Handlers run
// synchronously on the publishing goroutine, in subscription order. A nil
// *Bus publishes to no one.
type Bus struct {
	mu          sync.RWMutex
	txHandlers  []TransactionHandler
	sugHandlers []SuggestionHandler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeTransactionAdded(h TransactionHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txHandlers = append(b.txHandlers, h)
}

func (b *Bus) SubscribeSuggestionApplied(h SuggestionHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sugHandlers = append(b.sugHandlers, h)
}

func (b *Bus) PublishTransactionAdded(ctx context.Context, ev TransactionAdded) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]TransactionHandler, len(b.txHandlers))
	copy(handlers, b.txHandlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}

func (b *Bus) PublishSuggestionApplied(ctx context.Context, ev SuggestionApplied) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]SuggestionHandler, len(b.sugHandlers))
	copy(handlers, b.sugHandlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}
