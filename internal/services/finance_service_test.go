package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"financesense/internal/core"
	"financesense/internal/events"
	"financesense/internal/store/memory"
)

func newTestService(t *testing.T) *FinanceService {
	t.Helper()
	svc := NewFinanceService(memory.New(), events.NewBus(), nil)
	svc.now = func() time.Time {
		return time.Date(2025, 5, 11, 15, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestAddTransactionFromInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tx, err := svc.AddTransactionFromInput(ctx, "Gastei R$80,50 no mercado hoje")
	if err != nil {
		t.Fatalf("AddTransactionFromInput() error = %v", err)
	}
	if tx.Amount.Cents != 8050 {
		t.Errorf("Amount = %d, want 8050", tx.Amount.Cents)
	}
	if tx.Type != core.Expense {
		t.Errorf("Type = %v, want expense", tx.Type)
	}
	if tx.Category != "Alimentação" {
		t.Errorf("Category = %q, want Alimentação", tx.Category)
	}
	if tx.ID == "" || tx.Date != "11/05/2025" {
		t.Errorf("identity not assigned: ID=%q Date=%q", tx.ID, tx.Date)
	}

	txs, err := svc.Transactions(ctx)
	if err != nil || len(txs) != 1 {
		t.Fatalf("stored transactions = %v / %v", txs, err)
	}

	// Expense also lands in the category rollup.
	cats, err := svc.Categories(ctx)
	if err != nil || len(cats) != 1 {
		t.Fatalf("stored categories = %v / %v", cats, err)
	}
	if cats[0].Name != "Alimentação" || cats[0].Amount.Cents != 8050 {
		t.Errorf("rollup = %+v", cats[0])
	}
	if cats[0].Color != core.CategoryColor("Alimentação") {
		t.Errorf("rollup color = %q", cats[0].Color)
	}
}

func TestAddTransactionFromInputRejectsAmountless(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddTransactionFromInput(context.Background(), "gastei muito no mercado")
	if !errors.Is(err, core.ErrNoAmountFound) {
		t.Fatalf("error = %v, want ErrNoAmountFound", err)
	}

	txs, _ := svc.Transactions(context.Background())
	if len(txs) != 0 {
		t.Error("rejected input must not be persisted")
	}
}

func TestAddTransactionPrependsNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, _ := svc.AddTransactionFromInput(ctx, "almoço 30")
	svc.now = func() time.Time {
		return time.Date(2025, 5, 11, 16, 0, 0, 0, time.UTC)
	}
	second, _ := svc.AddTransactionFromInput(ctx, "uber 25")

	txs, _ := svc.Transactions(ctx)
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2", len(txs))
	}
	if txs[0].ID != second.ID || txs[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", txs[0].ID, txs[1].ID)
	}
}

func TestAddTransactionIDsDistinctWithinMillisecond(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// The fixed clock stamps both adds with the same millisecond.
	first, err := svc.AddTransactionFromInput(ctx, "mercado 10")
	if err != nil {
		t.Fatalf("AddTransactionFromInput() error = %v", err)
	}
	second, err := svc.AddTransactionFromInput(ctx, "padaria 20")
	if err != nil {
		t.Fatalf("AddTransactionFromInput() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("duplicate transaction ID %q", first.ID)
	}
}

func TestConcurrentAddsKeepEveryTransaction(t *testing.T) {
	svc := NewFinanceService(memory.New(), events.NewBus(), nil)
	ctx := context.Background()

	const n = core.MaxTransactions
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddTransactionFromInput(ctx, "Gastei R$10,00 no mercado"); err != nil {
				t.Errorf("AddTransactionFromInput() error = %v", err)
			}
		}()
	}
	wg.Wait()

	txs, err := svc.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(txs) != n {
		t.Fatalf("len = %d, want %d", len(txs), n)
	}
	seen := make(map[string]bool, n)
	for _, tx := range txs {
		if seen[tx.ID] {
			t.Errorf("duplicate ID %q", tx.ID)
		}
		seen[tx.ID] = true
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	var rollup int64
	for _, c := range cats {
		rollup += c.Amount.Cents
	}
	if rollup != int64(n)*1000 {
		t.Errorf("rollup total = %d, want %d", rollup, int64(n)*1000)
	}
}

func TestAddTransactionCapsHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Seed an already-full history directly to keep the test fast.
	seed := make([]core.Transaction, core.MaxTransactions)
	for i := range seed {
		seed[i] = core.Transaction{
			ID:          "old",
			Description: "seed",
			Amount:      core.Money{Cents: 100},
			Category:    "Outros",
			Type:        core.Expense,
			Timestamp:   time.Now(),
		}
	}
	seed[core.MaxTransactions-1].ID = "oldest"
	repo := memory.New()
	if err := repo.SaveTransactions(ctx, seed); err != nil {
		t.Fatal(err)
	}
	svc.repo = repo

	tx, err := svc.AddTransactionFromInput(ctx, "cinema 40")
	if err != nil {
		t.Fatal(err)
	}

	txs, _ := svc.Transactions(ctx)
	if len(txs) != core.MaxTransactions {
		t.Fatalf("len = %d, want %d", len(txs), core.MaxTransactions)
	}
	if txs[0].ID != tx.ID {
		t.Error("new transaction must be first")
	}
	for _, got := range txs {
		if got.ID == "oldest" {
			t.Error("oldest transaction must be dropped on overflow")
		}
	}
}

func TestIncomeDoesNotTouchRollup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddTransactionFromInput(ctx, "recebi salário de 3000"); err != nil {
		t.Fatal(err)
	}
	cats, _ := svc.Categories(ctx)
	if len(cats) != 0 {
		t.Errorf("income must not create categories, got %v", cats)
	}
}

func TestAddGoal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	goal, err := svc.AddGoal(ctx, core.Goal{
		Title:        "Viagem",
		TargetAmount: core.Money{Cents: 5000_00},
		TargetDate:   "11/05/2026",
	})
	if err != nil {
		t.Fatalf("AddGoal() error = %v", err)
	}
	if goal.ID == "" {
		t.Error("goal ID must be assigned")
	}
	if goal.Category != "Outros" {
		t.Errorf("default category = %q, want Outros", goal.Category)
	}

	if _, err := svc.AddGoal(ctx, core.Goal{Title: "", TargetAmount: core.Money{Cents: 100}}); err == nil {
		t.Error("empty title must be rejected")
	}
}

func TestUpdateGoalProgress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	goal, _ := svc.AddGoal(ctx, core.Goal{Title: "Reserva", TargetAmount: core.Money{Cents: 1000_00}})

	got, err := svc.UpdateGoalProgress(ctx, goal.ID, core.Money{Cents: 300_00})
	if err != nil {
		t.Fatalf("UpdateGoalProgress() error = %v", err)
	}
	if got.CurrentAmount.Cents != 300_00 {
		t.Errorf("progress = %d, want 30000", got.CurrentAmount.Cents)
	}

	// Clamped to the target on overshoot.
	got, err = svc.UpdateGoalProgress(ctx, goal.ID, core.Money{Cents: 900_00})
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentAmount.Cents != 1000_00 {
		t.Errorf("progress = %d, want clamp at 100000", got.CurrentAmount.Cents)
	}

	// Floored at zero on negative overshoot.
	got, _ = svc.UpdateGoalProgress(ctx, goal.ID, core.Money{Cents: -2000_00})
	if got.CurrentAmount.Cents != 0 {
		t.Errorf("progress = %d, want 0", got.CurrentAmount.Cents)
	}

	if _, err := svc.UpdateGoalProgress(ctx, "nope", core.Money{Cents: 1}); !errors.Is(err, core.ErrGoalNotFound) {
		t.Errorf("unknown goal error = %v, want ErrGoalNotFound", err)
	}
}

func TestApplySuggestion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var published []int
	svc.bus.SubscribeSuggestionApplied(func(_ context.Context, ev events.SuggestionApplied) {
		published = append(published, ev.SuggestionID)
	})

	goal, err := svc.ApplySuggestion(ctx, 1)
	if err != nil {
		t.Fatalf("ApplySuggestion() error = %v", err)
	}

	// Suggestion 1 saves R$150/month; the goal targets a year of that.
	if goal.TargetAmount.Cents != 150_00*12 {
		t.Errorf("target = %d, want %d", goal.TargetAmount.Cents, 150_00*12)
	}
	if goal.TargetDate != "11/05/2026" {
		t.Errorf("target date = %q, want 11/05/2026", goal.TargetDate)
	}
	if goal.Category != "economia" || !goal.IsFromSuggestion {
		t.Errorf("goal provenance wrong: %+v", goal)
	}
	if goal.MonthlySavings.Cents != 150_00 {
		t.Errorf("monthly savings = %d, want 15000", goal.MonthlySavings.Cents)
	}
	if len(published) != 1 || published[0] != 1 {
		t.Errorf("published = %v, want [1]", published)
	}

	// Second apply is rejected and changes nothing.
	if _, err := svc.ApplySuggestion(ctx, 1); !errors.Is(err, core.ErrAlreadyApplied) {
		t.Fatalf("second apply error = %v, want ErrAlreadyApplied", err)
	}
	goals, _ := svc.Goals(ctx)
	if len(goals) != 1 {
		t.Errorf("goals = %d, want 1", len(goals))
	}

	if _, err := svc.ApplySuggestion(ctx, 99); !errors.Is(err, ErrUnknownSuggestion) {
		t.Errorf("unknown suggestion error = %v", err)
	}
}

func TestSuggestionsExcludeApplied(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	all, err := svc.Suggestions(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("initial suggestions = %v / %v", all, err)
	}

	if _, err := svc.ApplySuggestion(ctx, 2); err != nil {
		t.Fatal(err)
	}

	remaining, err := svc.Suggestions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d, want 2", len(remaining))
	}
	for _, sg := range remaining {
		if sg.ID == 2 {
			t.Error("applied suggestion must be filtered out")
		}
	}
}

func TestDashboardPlaceholderOnEmptyStore(t *testing.T) {
	svc := newTestService(t)

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if !dash.Placeholder {
		t.Error("empty store must serve placeholder data")
	}
	if dash.Summary != core.PlaceholderSummary() {
		t.Errorf("summary = %+v", dash.Summary)
	}
	if len(dash.Categories) != 6 || len(dash.DailyTrend) != 7 {
		t.Errorf("categories=%d trend=%d", len(dash.Categories), len(dash.DailyTrend))
	}
	// Placeholder figures: healthy ratio, no goals (-10), few transactions (-10).
	if dash.HealthScore != 80 {
		t.Errorf("score = %d, want 80", dash.HealthScore)
	}
	if dash.RiskTier != core.RiskLow {
		t.Errorf("risk = %v, want low", dash.RiskTier)
	}
	if len(dash.Alerts) == 0 {
		t.Error("alerts must never be empty")
	}
}

func TestDashboardFromRealData(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddTransactionFromInput(ctx, "recebi salário de 5000"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddTransactionFromInput(ctx, "mercado 200"); err != nil {
		t.Fatal(err)
	}

	dash, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if dash.Placeholder {
		t.Error("populated store must not serve placeholder data")
	}
	if dash.Summary.TotalIncome.Cents != 5000_00 || dash.Summary.TotalExpenses.Cents != 200_00 {
		t.Errorf("summary = %+v", dash.Summary)
	}
	if len(dash.Categories) != 1 || dash.Categories[0].Name != "Alimentação" {
		t.Errorf("rollup = %+v", dash.Categories)
	}
	if len(dash.DailyTrend) != 7 {
		t.Errorf("trend length = %d", len(dash.DailyTrend))
	}
	// Today is the last point and carries the expense.
	if dash.DailyTrend[6].Amount.Cents != 200_00 {
		t.Errorf("today's trend = %d, want 20000", dash.DailyTrend[6].Amount.Cents)
	}
}

func TestClearData(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddTransactionFromInput(ctx, "mercado 50"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ApplySuggestion(ctx, 1); err != nil {
		t.Fatal(err)
	}

	if err := svc.ClearData(ctx); err != nil {
		t.Fatalf("ClearData() error = %v", err)
	}

	txs, _ := svc.Transactions(ctx)
	cats, _ := svc.Categories(ctx)
	goals, _ := svc.Goals(ctx)
	sugs, _ := svc.Suggestions(ctx)
	if len(txs) != 0 || len(cats) != 0 || len(goals) != 0 {
		t.Error("collections must be empty after clear")
	}
	if len(sugs) != 3 {
		t.Error("clearing must reinstate all suggestions")
	}
}
