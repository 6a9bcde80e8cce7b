package advisor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"financesense/internal/core"
)

// DefaultTimeout bounds each remote advisory attempt.
const DefaultTimeout = 10 * time.Second

// Service is the two-stage advisory pipeline: a bounded-wait remote attempt
// followed by the deterministic local substitute. Remote failure of any
// kind (unconfigured, error, timeout, schema mismatch) is logged and
// absorbed; every call returns a usable result.
type Service struct {
	remote  Client // nil when unconfigured
	local   *Local
	timeout time.Duration
}

func NewService(remote Client, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		remote:  remote,
		local:   NewLocal(),
		timeout: timeout,
	}
}

func (s *Service) Analyze(ctx context.Context, snap Snapshot) Analysis {
	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := s.remote.Analyze(rctx, snap)
		cancel()
		if err == nil {
			return out
		}
		slog.WarnContext(ctx, "Remote analysis failed, using local analysis", "error", err)
	}
	out, _ := s.local.Analyze(ctx, snap)
	return out
}

func (s *Service) DetectAnomalies(ctx context.Context, transactions []core.Transaction) []string {
	if len(transactions) == 0 {
		return []string{}
	}
	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := s.remote.DetectAnomalies(rctx, transactions)
		cancel()
		if err == nil {
			return out
		}
		slog.WarnContext(ctx, "Remote anomaly detection failed, using local detection", "error", err)
	}
	out, _ := s.local.DetectAnomalies(ctx, transactions)
	return out
}

func (s *Service) RecommendInvestments(ctx context.Context, profile string, amount core.Money, horizon string) []InvestmentRecommendation {
	if s.remote != nil && profile != "" && amount.Cents > 0 {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := s.remote.RecommendInvestments(rctx, profile, amount, horizon)
		cancel()
		if err == nil {
			return out
		}
		slog.WarnContext(ctx, "Remote investment recommendation failed, using local table", "error", err)
	}
	out, _ := s.local.RecommendInvestments(ctx, profile, amount, horizon)
	return out
}

func (s *Service) PredictExpenses(ctx context.Context, transactions []core.Transaction, months int) []ExpensePrediction {
	if months <= 0 || months > 12 {
		months = 6
	}
	if s.remote != nil && len(transactions) > 0 {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := s.remote.PredictExpenses(rctx, transactions, months)
		cancel()
		if err == nil {
			return out
		}
		slog.WarnContext(ctx, "Remote expense prediction failed, using local projection", "error", err)
	}
	out, _ := s.local.PredictExpenses(ctx, transactions, months)
	return out
}

func (s *Service) GenerateReport(ctx context.Context, snap Snapshot) string {
	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := s.remote.GenerateReport(rctx, snap)
		cancel()
		if err == nil {
			return out
		}
		slog.WarnContext(ctx, "Remote report generation failed, using local report", "error", err)
	}
	out, _ := s.local.GenerateReport(ctx, snap)
	return out
}

func (s *Service) Chat(ctx context.Context, message string, snap Snapshot) string {
	if strings.TrimSpace(message) == "" {
		return "Por favor, faça uma pergunta sobre suas finanças."
	}
	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := s.remote.Chat(rctx, message, snap)
		cancel()
		if err == nil {
			return out
		}
		slog.WarnContext(ctx, "Remote chat failed, using local response", "error", err)
	}
	out, _ := s.local.Chat(ctx, message, snap)
	return out
}
