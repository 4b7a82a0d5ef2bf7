package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"atlasledger/internal/core"
	"atlasledger/internal/store"
)

// forecastExternalTimeout bounds the advanced forecast call so the
// endpoint degrades to the baseline instead of hanging.
const forecastExternalTimeout = 8 * time.Second

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	period := core.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = core.PeriodMonth
	}
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "period must be week or month")
		return
	}

	start := core.Today().AddDays(-period.Days())
	if v := r.URL.Query().Get("start"); v != "" {
		d, ok := core.ParseDate(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		start = d
	}

	summary := s.ledger.Summary(key, period, start)

	categories := make([]map[string]any, 0, len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		categories = append(categories, map[string]any{
			"name":  c.Name,
			"spend": c.Spend,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period":      string(period),
		"start":       summary.Start.Format("2006-01-02"),
		"end":         summary.End.Format("2006-01-02"),
		"total_spend": summary.TotalSpend,
		"categories":  categories,
	})
}

// handleForecast prefers the analytics service's projection and falls
// back to the local baseline when the service is absent or failing.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	forecast, source := s.forecastFor(r.Context(), key)
	writeJSON(w, http.StatusOK, map[string]any{
		"next_30_day_spend": forecast.Next30DaySpend,
		"confidence":        forecast.Confidence,
		"methodology":       forecast.Methodology,
		"source":            source,
	})
}

func (s *Server) forecastFor(ctx context.Context, key string) (core.Forecast, string) {
	if s.forecaster != nil {
		txs := s.ledger.ListTransactions(key, store.TransactionFilter{})
		if len(txs) > 0 {
			cctx, cancel := context.WithTimeout(ctx, forecastExternalTimeout)
			defer cancel()
			forecast, err := s.forecaster.Forecast(cctx, key, txs, 30)
			if err == nil {
				return forecast, "analytics"
			}
			slog.WarnContext(ctx, "Advanced forecast unavailable, using baseline", "error", err)
		}
	}
	return s.ledger.Forecast(key), "baseline"
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	alerts := s.ledger.ListAlerts(key)
	payload := make([]map[string]any, 0, len(alerts))
	for _, a := range alerts {
		payload = append(payload, map[string]any{
			"id":       a.ID,
			"kind":     string(a.Kind),
			"message":  a.Message,
			"fired_at": a.FiredAt.Format(time.RFC3339),
			"read":     a.Read,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"alerts": payload})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	ids := s.ledger.AnomalyTransactionIDs(key)
	payload := make([]string, 0, len(ids))
	for id := range ids {
		payload = append(payload, id)
	}

	writeJSON(w, http.StatusOK, map[string]any{"transaction_ids": payload})
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	var req struct {
		Category     string  `json:"category"`
		MonthlyLimit float64 `json:"monthly_limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Category = sanitizeInput(req.Category)
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "missing category")
		return
	}

	rule, err := s.ledger.UpsertBudget(r.Context(), key, req.Category, req.MonthlyLimit)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "Budget upsert failed", "error", err, "category", req.Category)
		writeError(w, http.StatusInternalServerError, "budget upsert failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":            rule.ID,
		"category":      rule.Category,
		"monthly_limit": rule.MonthlyLimit,
	})
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}
	key := requireUserKey(w, r)
	if key == "" {
		return
	}

	var req struct {
		Merchant string `json:"merchant"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Merchant = sanitizeInput(req.Merchant)
	req.Category = sanitizeInput(req.Category)
	if req.Merchant == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "missing merchant or category")
		return
	}

	if err := s.ledger.SetOverride(r.Context(), key, req.Merchant, req.Category); err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "Override update failed", "error", err, "merchant", req.Merchant)
		writeError(w, http.StatusInternalServerError, "override update failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"merchant": req.Merchant,
		"category": req.Category,
	})
}
