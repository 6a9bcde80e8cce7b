// Package http serves the JSON API: transaction capture, dashboard reads,
// goals, suggestions and the advisory endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"financesense/internal/advisor"
	"financesense/internal/cache"
	"financesense/internal/events"
	"financesense/internal/services"
)

const dashboardCacheKey = "dashboard"

type Server struct {
	http.Server
	finance     *services.FinanceService
	advisory    *advisor.Service
	rateLimiter *rateLimiter

	// Dashboard reads are cached between writes; bus events invalidate.
	dashCache *cache.LRUCache[services.Dashboard]

	stopCacheSweep context.CancelFunc
	shutdownOnce   sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and returns a ready-to-run server. The bus is
// subscribed for dashboard cache invalidation; pass the same bus the
// finance service publishes on.
func NewServer(addr string, finance *services.FinanceService, advisory *advisor.Service, bus *events.Bus) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		finance:     finance,
		advisory:    advisory,
		rateLimiter: newRateLimiter(),
		dashCache:   cache.NewLRUCache[services.Dashboard](1, 5*time.Minute),
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	s.stopCacheSweep = stopSweep
	go s.dashCache.Sweep(sweepCtx, 10*time.Minute)

	if bus != nil {
		bus.SubscribeTransactionAdded(func(context.Context, events.TransactionAdded) {
			s.dashCache.Delete(dashboardCacheKey)
		})
		bus.SubscribeSuggestionApplied(func(context.Context, events.SuggestionApplied) {
			s.dashCache.Delete(dashboardCacheKey)
		})
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /transactions", s.withSecurityHeaders(s.handleAddTransaction))
	mux.HandleFunc("GET /transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("GET /categories", s.withSecurityHeaders(s.handleListCategories))
	mux.HandleFunc("GET /dashboard", s.withSecurityHeaders(s.handleDashboard))

	mux.HandleFunc("POST /goals", s.withSecurityHeaders(s.handleAddGoal))
	mux.HandleFunc("GET /goals", s.withSecurityHeaders(s.handleListGoals))
	mux.HandleFunc("GET /goals/suggested", s.withSecurityHeaders(s.handleSuggestedGoals))
	mux.HandleFunc("POST /goals/{id}/progress", s.withSecurityHeaders(s.handleGoalProgress))

	mux.HandleFunc("GET /suggestions", s.withSecurityHeaders(s.handleListSuggestions))
	mux.HandleFunc("POST /suggestions/{id}/apply", s.withSecurityHeaders(s.handleApplySuggestion))

	mux.HandleFunc("GET /insights/analysis", s.withSecurityHeaders(s.handleAnalysis))
	mux.HandleFunc("GET /insights/anomalies", s.withSecurityHeaders(s.handleAnomalies))
	mux.HandleFunc("GET /insights/predictions", s.withSecurityHeaders(s.handlePredictions))
	mux.HandleFunc("POST /insights/investments", s.withSecurityHeaders(s.handleInvestments))
	mux.HandleFunc("POST /insights/report", s.withSecurityHeaders(s.handleReport))
	mux.HandleFunc("POST /insights/chat", s.withSecurityHeaders(s.handleChat))

	mux.HandleFunc("DELETE /data", s.withSecurityHeaders(s.handleClearData))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheSweep != nil {
			s.stopCacheSweep()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutating requests
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
