package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"financesense/internal/advisor"
	"financesense/internal/core"
	"financesense/internal/services"
)

type moneyJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Formatted: m.FormatBRL()}
}

type transactionJSON struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Description: t.Description,
		Amount:      toMoneyJSON(t.Amount),
		Category:    t.Category,
		Type:        string(t.Type),
		Date:        t.Date,
		Timestamp:   t.Timestamp,
	}
}

type categoryJSON struct {
	Name   string    `json:"name"`
	Amount moneyJSON `json:"amount"`
	Color  string    `json:"color"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{Name: c.Name, Amount: toMoneyJSON(c.Amount), Color: c.Color}
}

type goalJSON struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	TargetAmount     moneyJSON `json:"targetAmount"`
	CurrentAmount    moneyJSON `json:"currentAmount"`
	TargetDate       string    `json:"targetDate"`
	Category         string    `json:"category"`
	IsFromSuggestion bool      `json:"isFromSuggestion"`
	MonthlySavings   moneyJSON `json:"monthlySavings"`
}

func toGoalJSON(g core.Goal) goalJSON {
	return goalJSON{
		ID:               g.ID,
		Title:            g.Title,
		TargetAmount:     toMoneyJSON(g.TargetAmount),
		CurrentAmount:    toMoneyJSON(g.CurrentAmount),
		TargetDate:       g.TargetDate,
		Category:         g.Category,
		IsFromSuggestion: g.IsFromSuggestion,
		MonthlySavings:   toMoneyJSON(g.MonthlySavings),
	}
}

type alertJSON struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type dailyPointJSON struct {
	Day    string    `json:"day"`
	Date   string    `json:"date"`
	Amount moneyJSON `json:"amount"`
}

type dashboardJSON struct {
	Summary struct {
		TotalIncome    moneyJSON `json:"totalIncome"`
		TotalExpenses  moneyJSON `json:"totalExpenses"`
		Balance        moneyJSON `json:"balance"`
		CurrentSavings moneyJSON `json:"currentSavings"`
	} `json:"summary"`
	Categories  []categoryJSON   `json:"categories"`
	DailyTrend  []dailyPointJSON `json:"dailyTrend"`
	HealthScore int              `json:"healthScore"`
	RiskTier    string           `json:"riskTier"`
	Alerts      []alertJSON      `json:"alerts"`
	Placeholder bool             `json:"placeholder"`
}

func toDashboardJSON(d services.Dashboard) dashboardJSON {
	var out dashboardJSON
	out.Summary.TotalIncome = toMoneyJSON(d.Summary.TotalIncome)
	out.Summary.TotalExpenses = toMoneyJSON(d.Summary.TotalExpenses)
	out.Summary.Balance = toMoneyJSON(d.Summary.Balance)
	out.Summary.CurrentSavings = toMoneyJSON(d.Summary.CurrentSavings)
	out.Categories = make([]categoryJSON, 0, len(d.Categories))
	for _, c := range d.Categories {
		out.Categories = append(out.Categories, toCategoryJSON(c))
	}
	out.DailyTrend = make([]dailyPointJSON, 0, len(d.DailyTrend))
	for _, p := range d.DailyTrend {
		out.DailyTrend = append(out.DailyTrend, dailyPointJSON{Day: p.Day, Date: p.Date, Amount: toMoneyJSON(p.Amount)})
	}
	out.HealthScore = d.HealthScore
	out.RiskTier = string(d.RiskTier)
	out.Alerts = make([]alertJSON, 0, len(d.Alerts))
	for _, a := range d.Alerts {
		out.Alerts = append(out.Alerts, alertJSON{Type: string(a.Type), Severity: string(a.Severity), Message: a.Message})
	}
	out.Placeholder = d.Placeholder
	return out
}

type suggestionJSON struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PotentialSavings moneyJSON `json:"potentialSavings"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input := sanitizeInput(req.Input)
	if input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	tx, err := s.finance.AddTransactionFromInput(r.Context(), input)
	if err != nil {
		if errors.Is(err, core.ErrNoAmountFound) {
			// Rejected submission: the client keeps the input for correction.
			writeError(w, http.StatusUnprocessableEntity,
				"Não encontrei um valor na frase. Tente algo como: \"Gastei R$ 50 no mercado\" ou \"Recebi R$ 3000 de salário\".")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to add transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.finance.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.finance.Categories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.dashCache.Get(dashboardCacheKey); ok {
		writeJSON(w, http.StatusOK, toDashboardJSON(cached))
		return
	}

	dash, err := s.finance.Dashboard(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	s.dashCache.Set(dashboardCacheKey, dash)

	writeJSON(w, http.StatusOK, toDashboardJSON(dash))
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title            string `json:"title"`
		TargetAmountCents int64 `json:"targetAmountCents"`
		TargetDate       string `json:"targetDate"`
		Category         string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	goal, err := s.finance.AddGoal(r.Context(), core.Goal{
		Title:        sanitizeInput(req.Title),
		TargetAmount: core.Money{Cents: req.TargetAmountCents},
		TargetDate:   sanitizeInput(req.TargetDate),
		Category:     sanitizeInput(req.Category),
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidGoal) || errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to add goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save goal")
		return
	}

	s.dashCache.Delete(dashboardCacheKey)
	writeJSON(w, http.StatusCreated, toGoalJSON(goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.finance.Goals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSuggestedGoals(w http.ResponseWriter, _ *http.Request) {
	type suggestedGoalJSON struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Value       moneyJSON `json:"value"`
	}
	templates := s.finance.SuggestedGoals()
	out := make([]suggestedGoalJSON, 0, len(templates))
	for _, g := range templates {
		out = append(out, suggestedGoalJSON{ID: g.ID, Title: g.Title, Description: g.Description, Value: toMoneyJSON(g.Value)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")

	var req struct {
		AmountCents int64 `json:"amountCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	goal, err := s.finance.UpdateGoalProgress(r.Context(), goalID, core.Money{Cents: req.AmountCents})
	if err != nil {
		if errors.Is(err, core.ErrGoalNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update goal progress", "error", err, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	s.dashCache.Delete(dashboardCacheKey)
	writeJSON(w, http.StatusOK, toGoalJSON(goal))
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.finance.Suggestions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list suggestions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list suggestions")
		return
	}
	out := make([]suggestionJSON, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, suggestionJSON{
			ID:               sg.ID,
			Title:            sg.Title,
			Description:      sg.Description,
			PotentialSavings: toMoneyJSON(sg.PotentialSavings),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid suggestion id")
		return
	}

	goal, err := s.finance.ApplySuggestion(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownSuggestion):
			writeError(w, http.StatusNotFound, "suggestion not found")
		case errors.Is(err, core.ErrAlreadyApplied):
			writeError(w, http.StatusConflict, "suggestion already applied")
		default:
			slog.ErrorContext(r.Context(), "Failed to apply suggestion", "error", err, "suggestion_id", id)
			writeError(w, http.StatusInternalServerError, "failed to apply suggestion")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toGoalJSON(goal))
}

// snapshot assembles the advisory input from the store.
func (s *Server) snapshot(r *http.Request) (advisor.Snapshot, error) {
	ctx := r.Context()
	txs, err := s.finance.Transactions(ctx)
	if err != nil {
		return advisor.Snapshot{}, err
	}
	goals, err := s.finance.Goals(ctx)
	if err != nil {
		return advisor.Snapshot{}, err
	}
	cats, err := s.finance.Categories(ctx)
	if err != nil {
		return advisor.Snapshot{}, err
	}
	return advisor.Snapshot{
		Transactions: txs,
		Goals:        goals,
		Categories:   cats,
		Summary:      core.Summarize(txs),
	}, nil
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to assemble snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read financial data")
		return
	}
	writeJSON(w, http.StatusOK, s.advisory.Analyze(r.Context(), snap))
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	txs, err := s.finance.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read financial data")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"anomalies": s.advisory.DetectAnomalies(r.Context(), txs),
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			months = m
		}
	}

	txs, err := s.finance.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read financial data")
		return
	}
	writeJSON(w, http.StatusOK, s.advisory.PredictExpenses(r.Context(), txs, months))
}

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile     string `json:"profile"`
		AmountCents int64  `json:"amountCents"`
		Horizon     string `json:"horizon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	recs := s.advisory.RecommendInvestments(r.Context(),
		sanitizeInput(req.Profile), core.Money{Cents: req.AmountCents}, sanitizeInput(req.Horizon))
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to assemble snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read financial data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"report": s.advisory.GenerateReport(r.Context(), snap),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	snap, err := s.snapshot(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to assemble snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read financial data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"reply": s.advisory.Chat(r.Context(), sanitizeInput(req.Message), snap),
	})
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.ClearData(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to clear data", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear data")
		return
	}
	s.dashCache.Delete(dashboardCacheKey)
	w.WriteHeader(http.StatusNoContent)
}
