package core

import (
	"sort"
	"time"
)

// SavingsBaseCents is the simulated savings baseline the dashboard starts
// from; positive balance is added on top, never going below zero.
const SavingsBaseCents = 8500_00

// Summary holds the derived totals recomputed from the full transaction list.
type Summary struct {
	TotalIncome    Money
	TotalExpenses  Money
	Balance        Money
	CurrentSavings Money
}

// DailyPoint is one day of the expense trend series.
type DailyPoint struct {
	Day    string // weekday label (pt-BR short form)
	Date   string // day of month, zero padded
	Amount Money
}

// ScoreInput carries everything the health score and risk tier depend on.
// The advisory fallback and the aggregation engine share this single scoring
// path so the two can never drift apart.
type ScoreInput struct {
	TotalIncome      Money
	TotalExpenses    Money
	CurrentSavings   Money
	GoalCount        int
	TransactionCount int
}

var weekdayShortPT = [...]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// Summarize folds the transaction list into income/expense totals, balance
// and the simulated current-savings figure.
func Summarize(transactions []Transaction) Summary {
	var income, expenses int64
	for _, t := range transactions {
		switch t.Type {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expenses += t.Amount.Cents
		}
	}
	savings := SavingsBaseCents + income - expenses
	if savings < 0 {
		savings = 0
	}
	return Summary{
		TotalIncome:    Money{Cents: income},
		TotalExpenses:  Money{Cents: expenses},
		Balance:        Money{Cents: income - expenses},
		CurrentSavings: Money{Cents: savings},
	}
}

// RollupCategories recomputes the expense rollup from scratch: expense
// transactions grouped by category, summed, sorted by amount descending.
// The store also maintains this rollup incrementally at insert time; this
// full fold exists for verification and for stores seeded out-of-band.
func RollupCategories(transactions []Transaction) []Category {
	sums := make(map[string]int64)
	for _, t := range transactions {
		if t.Type != Expense {
			continue
		}
		sums[t.Category] += t.Amount.Cents
	}
	out := make([]Category, 0, len(sums))
	for name, cents := range sums {
		out = append(out, Category{
			Name:   name,
			Amount: Money{Cents: cents},
			Color:  CategoryColor(name),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DailyTrend returns expense sums for the most recent 7 calendar days
// including today, ordered oldest to newest. Days without expenses report
// zero. Transaction dates are matched ignoring the time of day.
func DailyTrend(transactions []Transaction, now time.Time) []DailyPoint {
	points := make([]DailyPoint, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, i-6)
		y, m, d := day.Date()
		var sum int64
		for _, t := range transactions {
			if t.Type != Expense {
				continue
			}
			ty, tm, td := t.Timestamp.Date()
			if ty == y && tm == m && td == d {
				sum += t.Amount.Cents
			}
		}
		points[i] = DailyPoint{
			Day:    weekdayShortPT[day.Weekday()],
			Date:   day.Format("02"),
			Amount: Money{Cents: sum},
		}
	}
	return points
}

// HealthScore computes the 0-100 financial health score.
//
// Deductions, applied in order: no income at all (-50), otherwise
// progressively more as the expense/income ratio climbs past 1.0 (-40),
// 0.8 (-30) or 0.6 (-15); no goals (-10); savings below three months of
// expenses (-10); fewer than five transactions (-10). Result is clamped
// into [0, 100].
func HealthScore(in ScoreInput) int {
	score := 100

	if in.TotalIncome.Cents == 0 {
		score -= 50
	} else {
		ratio := float64(in.TotalExpenses.Cents) / float64(in.TotalIncome.Cents)
		switch {
		case ratio > 1:
			score -= 40
		case ratio > 0.8:
			score -= 30
		case ratio > 0.6:
			score -= 15
		}
	}

	if in.GoalCount == 0 {
		score -= 10
	}
	if in.CurrentSavings.Cents < in.TotalExpenses.Cents*3 {
		score -= 10
	}
	if in.TransactionCount < 5 {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Risk classifies the score/ratio pair into a coarse tier. Branches are
// evaluated in fixed priority order; the first match wins.
func Risk(in ScoreInput) RiskTier {
	ratio := 1.0
	if in.TotalIncome.Cents > 0 {
		ratio = float64(in.TotalExpenses.Cents) / float64(in.TotalIncome.Cents)
	}
	score := HealthScore(in)

	switch {
	case ratio > 1:
		return RiskHigh
	case score >= 70 && ratio <= 0.7:
		return RiskLow
	case score >= 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}
