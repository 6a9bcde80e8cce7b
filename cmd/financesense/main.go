package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"financesense/internal/advisor"
	"financesense/internal/config"
	"financesense/internal/events"
	apphttp "financesense/internal/http"
	applog "financesense/internal/log"
	"financesense/internal/services"
	"financesense/internal/store"
	"financesense/internal/store/memory"
	"financesense/internal/store/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose data backend (default: memory).
	var repo store.Repository
	switch cfg.DataBackend {
	case "sqlite":
		sqliteRepo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		repo = sqliteRepo
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		repo = memory.New()
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	// AMQP is optional: without a broker the server still runs, it just
	// stops notifying the insights worker.
	var amqpClient *events.AMQPClient
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = events.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client, continuing without broker", "error", err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	bus := events.NewBus()
	finance := services.NewFinanceService(repo, bus, amqpClient)
	defer finance.Close()

	// Gemini is optional too: without a key every advisory call serves the
	// local fallback.
	var remote advisor.Client
	if cfg.GeminiAPIKey != "" {
		gemini, err := advisor.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client, using local advisor", "error", err)
		} else {
			defer gemini.Close()
			remote = gemini
			logger.Info("Gemini advisory client initialized")
		}
	} else {
		logger.Info("Gemini disabled - no GEMINI_API_KEY provided")
	}
	advisory := advisor.NewService(remote, cfg.AdvisorTimeout)

	srv := apphttp.NewServer(":"+cfg.Port, finance, advisory, bus)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting financesense server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
