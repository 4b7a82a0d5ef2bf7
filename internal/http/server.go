// Package http exposes the ledger over a JSON API. Every data route is
// scoped to the user identified by the request's bearer key.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"atlasledger/internal/core"
	"atlasledger/internal/store"
)

// Ledger is the slice of the store the handlers need.
type Ledger interface {
	RegisterOrFetch(ctx context.Context, key, email string) *core.User
	ImportRows(ctx context.Context, key string, rows []core.ImportRow) (int, error)
	RebuildCategories(ctx context.Context, key string) (int, error)
	UpsertBudget(ctx context.Context, key, category string, monthlyLimit float64) (core.BudgetRule, error)
	SetOverride(ctx context.Context, key, merchant, category string) error
	ListTransactions(key string, filter store.TransactionFilter) []core.Transaction
	Summary(key string, period core.Period, start core.Date) core.SpendSummary
	Forecast(key string) core.Forecast
	ListAlerts(key string) []core.Alert
	AnomalyTransactionIDs(key string) map[string]struct{}
	SimilarMerchants(key, merchant string) []string
}

// Forecaster produces an advanced projection from an external service.
// May be nil, in which case forecasts come from the local baseline only.
type Forecaster interface {
	Forecast(ctx context.Context, userKey string, txs []core.Transaction, horizonDays int) (core.Forecast, error)
	Health(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger       Ledger
	forecaster   Forecaster
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Options tunes the server beyond its collaborators.
type Options struct {
	// UploadRequestsPerMinute caps import requests per client IP.
	UploadRequestsPerMinute int
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, forecaster Forecaster, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:      ledger,
		forecaster:  forecaster,
		rateLimiter: newRateLimiter(opts.UploadRequestsPerMinute),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/v1/users/register", s.withTracking(s.handleRegister))
	mux.HandleFunc("/v1/transactions", s.withTracking(s.handleListTransactions))
	mux.HandleFunc("/v1/transactions/import", s.withTracking(s.withUploadLimit(s.handleImport)))
	mux.HandleFunc("/v1/categories/rebuild", s.withTracking(s.handleRebuild))
	mux.HandleFunc("/v1/summary", s.withTracking(s.handleSummary))
	mux.HandleFunc("/v1/forecast", s.withTracking(s.handleForecast))
	mux.HandleFunc("/v1/alerts", s.withTracking(s.handleListAlerts))
	mux.HandleFunc("/v1/anomalies", s.withTracking(s.handleAnomalies))
	mux.HandleFunc("/v1/budgets", s.withTracking(s.handleUpsertBudget))
	mux.HandleFunc("/v1/overrides", s.withTracking(s.handleSetOverride))
	mux.HandleFunc("/v1/merchants/similar", s.withTracking(s.handleSimilarMerchants))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withTracking adds a request ID, response headers, and request logging.
func (s *Server) withTracking(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Request-ID", requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logLevel := slog.LevelInfo
		if rw.statusCode >= 500 {
			logLevel = slog.LevelError
		} else if rw.statusCode >= 400 {
			logLevel = slog.LevelWarn
		}
		slog.Log(ctx, logLevel, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// withUploadLimit rate limits statement uploads per client IP.
func (s *Server) withUploadLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next(w, r)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready as long as the process is up; the analytics
// service is optional and only noted in the response.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	analytics := "disabled"
	if s.forecaster != nil {
		analytics = "ok"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.forecaster.Health(ctx); err != nil {
			analytics = "unreachable"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ready",
		"analytics": analytics,
	})
}
