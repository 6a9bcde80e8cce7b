// Package advisor is the AI advisory boundary: an optional remote
// text-generation client with a deterministic local substitute. Remote
// failures of any kind fall through to the local computation; callers never
// see them.
package advisor

import (
	"context"

	"financesense/internal/core"
)

// Snapshot is the serialized financial state handed to an advisory call.
type Snapshot struct {
	Transactions []core.Transaction `json:"transactions"`
	Goals        []core.Goal        `json:"goals"`
	Categories   []core.Category    `json:"categories"`
	Summary      core.Summary       `json:"summary"`
}

// Analysis is the structured advisory result.
type Analysis struct {
	Insights        []string      `json:"insights"`
	Recommendations []string      `json:"recommendations"`
	Predictions     []string      `json:"predictions"`
	RiskLevel       core.RiskTier `json:"riskLevel"`
	Score           int           `json:"score"`
}

// InvestmentRecommendation is one allocation slice of a suggested portfolio.
type InvestmentRecommendation struct {
	Type           string `json:"type"`
	Allocation     int    `json:"allocation"`
	Risk           string `json:"risk"`
	ExpectedReturn string `json:"expectedReturn"`
	Description    string `json:"description"`
}

// ExpensePrediction is a forecast for one future month.
type ExpensePrediction struct {
	Month           string   `json:"month"`
	PredictedAmount int64    `json:"predictedAmount"` // cents
	Confidence      int      `json:"confidence"`
	Factors         []string `json:"factors"`
}

// Client is the advisory capability. Implementations may call out to an
// external service or compute locally; either way the response must match
// the fixed schemas, with any mismatch reported as an error so the caller
// can substitute the local equivalent.
type Client interface {
	Analyze(ctx context.Context, snap Snapshot) (Analysis, error)
	DetectAnomalies(ctx context.Context, transactions []core.Transaction) ([]string, error)
	RecommendInvestments(ctx context.Context, profile string, amount core.Money, horizon string) ([]InvestmentRecommendation, error)
	PredictExpenses(ctx context.Context, transactions []core.Transaction, months int) ([]ExpensePrediction, error)
	GenerateReport(ctx context.Context, snap Snapshot) (string, error)
	Chat(ctx context.Context, message string, snap Snapshot) (string, error)
}
