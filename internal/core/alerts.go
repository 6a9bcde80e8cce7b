package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MaxAlerts bounds the alert list surfaced to the user.
const MaxAlerts = 3

// concentrationThreshold flags a category holding more than this share of
// total expenses.
const concentrationThreshold = 0.35

// GenerateAlerts runs the fixed rule battery over the current data and
// returns at most MaxAlerts alerts sorted by severity descending. When no
// rule fires, a single low-severity "all is well" alert is substituted so
// the list is never empty.
//
// Rules, in order: category concentration, goal deadline at risk,
// week-over-week expense increase, near-duplicate transactions, and a month
// without income.
func GenerateAlerts(transactions []Transaction, goals []Goal, now time.Time) []Alert {
	var alerts []Alert

	if a, ok := categoryConcentrationAlert(transactions); ok {
		alerts = append(alerts, a)
	}
	if a, ok := goalDeadlineAlert(goals, now); ok {
		alerts = append(alerts, a)
	}
	if a, ok := weeklyTrendAlert(transactions, now); ok {
		alerts = append(alerts, a)
	}
	if a, ok := duplicateAlert(transactions); ok {
		alerts = append(alerts, a)
	}
	if a, ok := missingIncomeAlert(transactions, now); ok {
		alerts = append(alerts, a)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
	})
	if len(alerts) > MaxAlerts {
		alerts = alerts[:MaxAlerts]
	}
	if len(alerts) == 0 {
		alerts = append(alerts, Alert{
			Type:     AlertSuggestion,
			Severity: SeverityLow,
			Message:  "Tudo em ordem! Continue registrando suas transações para manter o controle.",
		})
	}
	return alerts
}

// categoryConcentrationAlert fires when any expense category exceeds 35% of
// total expenses.
func categoryConcentrationAlert(transactions []Transaction) (Alert, bool) {
	var total int64
	sums := make(map[string]int64)
	for _, t := range transactions {
		if t.Type != Expense {
			continue
		}
		total += t.Amount.Cents
		sums[t.Category] += t.Amount.Cents
	}
	if total == 0 {
		return Alert{}, false
	}

	// Deterministic scan order so ties always report the same category.
	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if sums[names[i]] != sums[names[j]] {
			return sums[names[i]] > sums[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		share := float64(sums[name]) / float64(total)
		if share > concentrationThreshold {
			return Alert{
				Type:     AlertExpense,
				Severity: SeverityHigh,
				Message: fmt.Sprintf("Seus gastos com %s representam %.0f%% do total de despesas.",
					name, share*100),
			}, true
		}
	}
	return Alert{}, false
}

// goalDeadlineAlert fires for the first goal within 30 days of its target
// date with less than 50% progress.
func goalDeadlineAlert(goals []Goal, now time.Time) (Alert, bool) {
	for _, g := range goals {
		target, err := time.Parse("02/01/2006", g.TargetDate)
		if err != nil {
			continue
		}
		daysLeft := target.Sub(now).Hours() / 24
		if daysLeft < 0 || daysLeft > 30 {
			continue
		}
		if g.TargetAmount.Cents == 0 {
			continue
		}
		progress := float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents)
		if progress < 0.5 {
			return Alert{
				Type:     AlertGoal,
				Severity: SeverityMedium,
				Message: fmt.Sprintf("A meta %q vence em %.0f dias com apenas %.0f%% de progresso.",
					g.Title, daysLeft, progress*100),
			}, true
		}
	}
	return Alert{}, false
}

// weeklyTrendAlert fires when the last 7 days of expenses exceed the prior
// 7-day window, reporting the percentage increase.
func weeklyTrendAlert(transactions []Transaction, now time.Time) (Alert, bool) {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var current, previous int64
	for _, t := range transactions {
		if t.Type != Expense {
			continue
		}
		switch {
		case t.Timestamp.After(weekAgo):
			current += t.Amount.Cents
		case t.Timestamp.After(twoWeeksAgo):
			previous += t.Amount.Cents
		}
	}
	if previous == 0 || current <= previous {
		return Alert{}, false
	}
	increase := float64(current-previous) / float64(previous) * 100
	return Alert{
		Type:     AlertTrend,
		Severity: SeverityMedium,
		Message: fmt.Sprintf("Seus gastos na última semana subiram %.0f%% em relação à semana anterior.",
			increase),
	}, true
}

// duplicateAlert fires when two transactions share the same amount and a
// case-insensitive equal description with timestamps less than 24h apart.
func duplicateAlert(transactions []Transaction) (Alert, bool) {
	for i := 0; i < len(transactions); i++ {
		for j := i + 1; j < len(transactions); j++ {
			a, b := transactions[i], transactions[j]
			if a.Amount.Cents != b.Amount.Cents {
				continue
			}
			if !strings.EqualFold(a.Description, b.Description) {
				continue
			}
			gap := a.Timestamp.Sub(b.Timestamp)
			if gap < 0 {
				gap = -gap
			}
			if gap < 24*time.Hour {
				return Alert{
					Type:     AlertExpense,
					Severity: SeverityHigh,
					Message: fmt.Sprintf("Possível transação duplicada: %q (%s) registrada duas vezes em menos de 24h.",
						a.Description, a.Amount.FormatBRL()),
				}, true
			}
		}
	}
	return Alert{}, false
}

// missingIncomeAlert fires when the current calendar month has no income
// transaction.
func missingIncomeAlert(transactions []Transaction, now time.Time) (Alert, bool) {
	if len(transactions) == 0 {
		return Alert{}, false
	}
	y, m, _ := now.Date()
	for _, t := range transactions {
		if t.Type != Income {
			continue
		}
		ty, tm, _ := t.Timestamp.Date()
		if ty == y && tm == m {
			return Alert{}, false
		}
	}
	return Alert{
		Type:     AlertSuggestion,
		Severity: SeverityLow,
		Message:  "Nenhuma receita registrada neste mês. Registre suas entradas para uma análise completa.",
	}, true
}
