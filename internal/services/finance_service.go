package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"financesense/internal/core"
	"financesense/internal/events"
	"financesense/internal/store"
)

// ErrUnknownSuggestion is returned when a suggestion ID is not in the
// static catalog.
var ErrUnknownSuggestion = errors.New("unknown suggestion")

// Dashboard is the full derived view the UI renders: totals, category
// rollup, 7-day trend, health score, risk tier and the alert battery.
type Dashboard struct {
	Summary     core.Summary
	Categories  []core.Category
	DailyTrend  []core.DailyPoint
	HealthScore int
	RiskTier    core.RiskTier
	Alerts      []core.Alert
	Placeholder bool
}

// FinanceService orchestrates transaction and goal operations across the
// repository and the event fan-out (in-process bus plus optional AMQP).
//
// Every mutation is a list-modify-save over a whole collection, so writes
// are serialized under mu. Reads go straight to the repository.
type FinanceService struct {
	repo store.Repository
	bus  *events.Bus
	amqp *events.AMQPClient

	mu  sync.Mutex
	seq atomic.Uint64

	now func() time.Time
}

func NewFinanceService(repo store.Repository, bus *events.Bus, amqpClient *events.AMQPClient) *FinanceService {
	return &FinanceService{
		repo: repo,
		bus:  bus,
		amqp: amqpClient,
		now:  time.Now,
	}
}

// AddTransactionFromInput interprets a free-text sentence and persists the
// resulting transaction. The input is rejected with core.ErrNoAmountFound
// when no positive amount can be extracted; the caller reports that back to
// the user with phrasing guidance.
//
// The stored history is newest-first and capped: inserting past the cap
// drops the oldest entries. Expense transactions also update the running
// category rollup.
func (s *FinanceService) AddTransactionFromInput(ctx context.Context, input string) (core.Transaction, error) {
	draft, err := core.Interpret(input)
	if err != nil {
		return core.Transaction{}, err
	}

	now := s.now()
	tx := core.Transaction{
		ID:          s.nextID("tx", now),
		Description: draft.Description,
		Amount:      draft.Amount,
		Category:    draft.Category,
		Type:        draft.Type,
		Date:        core.DisplayDate(now),
		Timestamp:   now,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("list transactions: %w", err)
	}
	txs = append([]core.Transaction{tx}, txs...)
	if len(txs) > core.MaxTransactions {
		txs = txs[:core.MaxTransactions]
	}
	if err := s.repo.SaveTransactions(ctx, txs); err != nil {
		return core.Transaction{}, fmt.Errorf("save transactions: %w", err)
	}

	if tx.Type == core.Expense {
		if err := s.bumpCategory(ctx, tx.Category, tx.Amount); err != nil {
			// The transaction is saved; the rollup is recomputable from it.
			slog.ErrorContext(ctx, "Failed to update category rollup",
				"category", tx.Category, "error", err)
		}
	}

	s.bus.PublishTransactionAdded(ctx, events.TransactionAdded{Transaction: tx})
	s.amqp.PublishRefresh(ctx, events.NewTransactionAddedMessage(tx.ID))

	return tx, nil
}

// nextID builds a process-unique identifier. The millisecond timestamp
// keeps IDs sortable; the counter disambiguates same-millisecond calls.
func (s *FinanceService) nextID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", prefix, now.UnixMilli(), s.seq.Add(1))
}

// bumpCategory adds an expense amount to the named category's running
// total, creating the category with its display color on first sight.
// Callers hold mu.
func (s *FinanceService) bumpCategory(ctx context.Context, name string, amount core.Money) error {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	found := false
	for i := range cats {
		if cats[i].Name == name {
			cats[i].Amount.Cents += amount.Cents
			found = true
			break
		}
	}
	if !found {
		cats = append(cats, core.Category{
			Name:   name,
			Amount: amount,
			Color:  core.CategoryColor(name),
		})
	}
	return s.repo.SaveCategories(ctx, cats)
}

// AddGoal validates and persists a new goal. A missing ID is assigned.
func (s *FinanceService) AddGoal(ctx context.Context, goal core.Goal) (core.Goal, error) {
	if goal.ID == "" {
		goal.ID = s.nextID("goal", s.now())
	}
	if goal.Category == "" {
		goal.Category = "Outros"
	}
	if err := goal.Validate(); err != nil {
		return core.Goal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.repo.ListGoals(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("list goals: %w", err)
	}
	goals = append(goals, goal)
	if err := s.repo.SaveGoals(ctx, goals); err != nil {
		return core.Goal{}, fmt.Errorf("save goals: %w", err)
	}
	return goal, nil
}

// UpdateGoalProgress adds an amount to a goal's current progress, clamped
// into [0, target]. Unknown goal IDs return core.ErrGoalNotFound.
func (s *FinanceService) UpdateGoalProgress(ctx context.Context, goalID string, delta core.Money) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.repo.ListGoals(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("list goals: %w", err)
	}

	for i := range goals {
		if goals[i].ID != goalID {
			continue
		}
		current := goals[i].CurrentAmount.Cents + delta.Cents
		if current < 0 {
			current = 0
		}
		if current > goals[i].TargetAmount.Cents {
			current = goals[i].TargetAmount.Cents
		}
		goals[i].CurrentAmount = core.Money{Cents: current}

		if err := s.repo.SaveGoals(ctx, goals); err != nil {
			return core.Goal{}, fmt.Errorf("save goals: %w", err)
		}
		return goals[i], nil
	}
	return core.Goal{}, core.ErrGoalNotFound
}

// ApplySuggestion converts a static saving suggestion into a goal. The
// operation is idempotent per suggestion ID: a second apply returns
// core.ErrAlreadyApplied and changes nothing.
//
// The created goal targets one year of the suggested monthly savings, due
// one year out.
func (s *FinanceService) ApplySuggestion(ctx context.Context, suggestionID int) (core.Goal, error) {
	var suggestion core.SavingSuggestion
	found := false
	for _, sg := range core.SavingSuggestions() {
		if sg.ID == suggestionID {
			suggestion = sg
			found = true
			break
		}
	}
	if !found {
		return core.Goal{}, ErrUnknownSuggestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied, err := s.repo.ListAppliedSuggestions(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("list applied suggestions: %w", err)
	}
	for _, a := range applied {
		if a.ID == suggestionID {
			return core.Goal{}, core.ErrAlreadyApplied
		}
	}

	now := s.now()
	goal := core.Goal{
		ID:               s.nextID("goal", now),
		Title:            suggestion.Title,
		TargetAmount:     core.Money{Cents: suggestion.PotentialSavings.Cents * core.GoalFromSuggestionMonths},
		CurrentAmount:    core.Money{Cents: 0},
		TargetDate:       core.DisplayDate(now.AddDate(1, 0, 0)),
		Category:         "economia",
		IsFromSuggestion: true,
		MonthlySavings:   suggestion.PotentialSavings,
	}

	goals, err := s.repo.ListGoals(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("list goals: %w", err)
	}
	goals = append(goals, goal)
	if err := s.repo.SaveGoals(ctx, goals); err != nil {
		return core.Goal{}, fmt.Errorf("save goals: %w", err)
	}

	applied = append(applied, core.AppliedSuggestion{
		ID:               suggestion.ID,
		Title:            suggestion.Title,
		PotentialSavings: suggestion.PotentialSavings,
		AppliedDate:      core.DisplayDate(now),
	})
	if err := s.repo.SaveAppliedSuggestions(ctx, applied); err != nil {
		return core.Goal{}, fmt.Errorf("save applied suggestions: %w", err)
	}

	s.bus.PublishSuggestionApplied(ctx, events.SuggestionApplied{SuggestionID: suggestion.ID})
	s.amqp.PublishRefresh(ctx, events.NewSuggestionAppliedMessage(suggestion.ID))

	return goal, nil
}

// Suggestions returns the static saving-suggestion catalog minus the ones
// already applied.
func (s *FinanceService) Suggestions(ctx context.Context) ([]core.SavingSuggestion, error) {
	applied, err := s.repo.ListAppliedSuggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applied suggestions: %w", err)
	}
	appliedIDs := make(map[int]bool, len(applied))
	for _, a := range applied {
		appliedIDs[a.ID] = true
	}

	out := make([]core.SavingSuggestion, 0)
	for _, sg := range core.SavingSuggestions() {
		if !appliedIDs[sg.ID] {
			out = append(out, sg)
		}
	}
	return out, nil
}

// SuggestedGoals returns the static goal-template catalog.
func (s *FinanceService) SuggestedGoals() []core.SuggestedGoal {
	return core.SuggestedGoals()
}

func (s *FinanceService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

func (s *FinanceService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *FinanceService) Goals(ctx context.Context) ([]core.Goal, error) {
	return s.repo.ListGoals(ctx)
}

// Dashboard recomputes the full derived view from the store.
//
// An empty store (including one emptied by the malformed-data policy)
// substitutes the fixed illustrative dataset instead of rendering zeros, so
// the UI always has something to show. The substitution is flagged on the
// result and logged, never surfaced as an error.
func (s *FinanceService) Dashboard(ctx context.Context) (Dashboard, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}
	goals, err := s.repo.ListGoals(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list goals: %w", err)
	}

	if len(txs) == 0 {
		slog.InfoContext(ctx, "No stored transactions, serving placeholder dashboard")
		summary := core.PlaceholderSummary()
		in := core.ScoreInput{
			TotalIncome:      summary.TotalIncome,
			TotalExpenses:    summary.TotalExpenses,
			CurrentSavings:   summary.CurrentSavings,
			GoalCount:        len(goals),
			TransactionCount: 0,
		}
		return Dashboard{
			Summary:     summary,
			Categories:  core.PlaceholderCategories(),
			DailyTrend:  core.PlaceholderDailyTrend(),
			HealthScore: core.HealthScore(in),
			RiskTier:    core.Risk(in),
			Alerts:      core.GenerateAlerts(nil, goals, s.now()),
			Placeholder: true,
		}, nil
	}

	now := s.now()
	summary := core.Summarize(txs)
	in := core.ScoreInput{
		TotalIncome:      summary.TotalIncome,
		TotalExpenses:    summary.TotalExpenses,
		CurrentSavings:   summary.CurrentSavings,
		GoalCount:        len(goals),
		TransactionCount: len(txs),
	}
	return Dashboard{
		Summary:     summary,
		Categories:  core.RollupCategories(txs),
		DailyTrend:  core.DailyTrend(txs, now),
		HealthScore: core.HealthScore(in),
		RiskTier:    core.Risk(in),
		Alerts:      core.GenerateAlerts(txs, goals, now),
	}, nil
}

// ClearData wipes all four collections.
func (s *FinanceService) ClearData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveTransactions(ctx, nil); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if err := s.repo.SaveCategories(ctx, nil); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	if err := s.repo.SaveGoals(ctx, nil); err != nil {
		return fmt.Errorf("clear goals: %w", err)
	}
	if err := s.repo.SaveAppliedSuggestions(ctx, nil); err != nil {
		return fmt.Errorf("clear applied suggestions: %w", err)
	}
	slog.InfoContext(ctx, "Cleared all stored data")
	return nil
}

// Close releases the repository and the AMQP connection.
func (s *FinanceService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if err := s.amqp.Close(); err != nil {
		errs = append(errs, fmt.Errorf("amqp: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close finance service: %v", errs)
	}
	return nil
}
