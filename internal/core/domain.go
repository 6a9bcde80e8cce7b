package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

const (
	AlertExpense    AlertType = "expense"
	AlertGoal       AlertType = "goal"
	AlertTrend      AlertType = "trend"
	AlertSuggestion AlertType = "suggestion"
)

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// MaxTransactions caps the stored transaction history: only the most recent
// entries are kept, oldest dropped on overflow.
const MaxTransactions = 100

type (
	TransactionType string
	Severity        string
	AlertType       string
	RiskTier        string

	Money struct {
		Cents int64
	}

	// Transaction is a single recorded income or expense event. Instances are
	// immutable once created; the store only ever appends and truncates.
	Transaction struct {
		ID          string
		Description string
		Amount      Money
		Category    string
		Type        TransactionType
		Date        string // pt-BR display date (dd/mm/yyyy)
		Timestamp   time.Time
	}

	// Category is a running expense total per category name. Amounts are only
	// ever incremented; there is no edit or delete path.
	Category struct {
		Name   string
		Amount Money
		Color  string
	}

	Goal struct {
		ID               string
		Title            string
		TargetAmount     Money
		CurrentAmount    Money
		TargetDate       string
		Category         string
		IsFromSuggestion bool
		MonthlySavings   Money
	}

	// AppliedSuggestion marks a static saving suggestion the user converted
	// into a goal, so the same suggestion is never applied twice.
	AppliedSuggestion struct {
		ID               int
		Title            string
		PotentialSavings Money
		AppliedDate      string
	}

	// Alert is a severity-tagged, rule-generated notice about a detected
	// financial pattern.
	Alert struct {
		Type     AlertType
		Severity Severity
		Message  string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNoAmountFound    = errors.New("no monetary amount found in input")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrInvalidGoal      = errors.New("invalid goal")
	ErrAlreadyApplied   = errors.New("suggestion already applied")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (s Severity) IsValid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// Rank orders severities for sorting: high > medium > low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

func (a AlertType) IsValid() bool {
	switch a {
	case AlertExpense, AlertGoal, AlertTrend, AlertSuggestion:
		return true
	}
	return false
}

func (r RiskTier) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrInvalidGoal
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 || g.CurrentAmount.Cents > g.TargetAmount.Cents {
		return ErrInvalidGoal
	}
	return nil
}

// DisplayDate formats a time in the pt-BR display format used for the Date
// field of transactions and goals.
func DisplayDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// categoryColors maps known category names to their display color.
var categoryColors = map[string]string{
	"Alimentação":    "#A1EBD0",
	"Transporte":     "#548687",
	"Moradia":        "#77C9A4",
	"Entretenimento": "#B39DDB",
	"Saúde":          "#90CAF9",
	"Compras":        "#FFD54F",
	"Renda":          "#81C784",
	"Transferência":  "#81C784",
	"Outros":         "#FFAB91",
}

const defaultCategoryColor = "#FFAB91"

// CategoryColor returns the display color for a category name. Unknown names
// share the fallback color.
func CategoryColor(name string) string {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	return defaultCategoryColor
}
