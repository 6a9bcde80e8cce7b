package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"financesense/internal/advisor"
	"financesense/internal/config"
	"financesense/internal/core"
	"financesense/internal/events"
	applog "financesense/internal/log"
	"financesense/internal/services"
	"financesense/internal/store/sqlite"
)

// reportFileName is where the freshest advisory report lands, next to the
// SQLite database so both binaries agree on the data directory.
const reportFileName = "latest-report.md"

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "insights-worker"})
	applog.SetDefault(logger)

	logger.Info("Starting insights-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker always reads the SQLite store: it is the only backend the
	// server persists across processes.
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := events.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var remote advisor.Client
	if cfg.GeminiAPIKey != "" {
		gemini, gerr := advisor.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if gerr != nil {
			logger.Error("Failed to initialize Gemini client, using local advisor", "error", gerr)
		} else {
			defer gemini.Close()
			remote = gemini
		}
	} else {
		logger.Info("Gemini disabled - no GEMINI_API_KEY provided")
	}
	advisory := advisor.NewService(remote, cfg.AdvisorTimeout)

	finance := services.NewFinanceService(repo, nil, nil)
	reportPath := filepath.Join(filepath.Dir(cfg.SQLiteDBPath), reportFileName)
	w := &worker{
		finance:    finance,
		advisory:   advisory,
		logger:     logger,
		reportPath: reportPath,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	// Refresh once on startup so the report exists before the first event.
	if err := w.refresh(gctx, "startup"); err != nil {
		logger.Error("Startup refresh failed", "error", err)
	}

	g.Go(func() error {
		return amqpClient.ConsumeRefresh(gctx, func(msg *events.RefreshMessage) error {
			return w.refresh(gctx, msg.Kind)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := w.refresh(gctx, "tick"); err != nil {
					logger.Error("Periodic refresh failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

type worker struct {
	finance    *services.FinanceService
	advisory   *advisor.Service
	logger     *applog.Logger
	reportPath string
}

// refresh re-reads the store, recomputes the dashboard digest and rewrites
// the advisory report.
func (w *worker) refresh(ctx context.Context, reason string) error {
	dash, err := w.finance.Dashboard(ctx)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Dashboard refreshed",
		"reason", reason,
		"balance", dash.Summary.Balance.FormatBRL(),
		"expenses", dash.Summary.TotalExpenses.FormatBRL(),
		"health_score", dash.HealthScore,
		"risk", dash.RiskTier,
		"alerts", len(dash.Alerts),
		"placeholder", dash.Placeholder,
	)

	txs, err := w.finance.Transactions(ctx)
	if err != nil {
		return err
	}
	goals, err := w.finance.Goals(ctx)
	if err != nil {
		return err
	}
	cats, err := w.finance.Categories(ctx)
	if err != nil {
		return err
	}

	report := w.advisory.GenerateReport(ctx, advisor.Snapshot{
		Transactions: txs,
		Goals:        goals,
		Categories:   cats,
		Summary:      core.Summarize(txs),
	})
	if err := os.WriteFile(w.reportPath, []byte(report), 0o644); err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Advisory report refreshed", "path", w.reportPath)
	return nil
}
