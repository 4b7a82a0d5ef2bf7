package store

import (
	"fmt"
	"math"
	"strings"

	"atlasledger/internal/core"
	"atlasledger/internal/engine"
)

const (
	// forecastMultiplier scales the mean absolute debit amount to a
	// 30-day spend baseline.
	forecastMultiplier = 15
	// forecastConfidence is the fixed confidence of the naive forecast.
	forecastConfidence = 0.4
	// ForecastMethodology labels the built-in baseline so callers can
	// tell it apart from an external analytics forecast.
	ForecastMethodology = "baseline: mean absolute debit x 15"
)

// TransactionFilter narrows ListTransactions. Zero dates leave that
// bound open; an empty category disables the category filter.
type TransactionFilter struct {
	From     core.Date
	To       core.Date
	Category string
}

// ListTransactions returns the user's transactions, newest first, with
// an inclusive date-range filter and a case-insensitive exact category
// filter. Unknown users get an empty list. When a date bound is set,
// undated transactions are excluded.
func (s *Store) ListTransactions(key string, filter TransactionFilter) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[key]
	if !ok {
		return nil
	}

	dated := !filter.From.IsZero() || !filter.To.IsZero()
	out := []core.Transaction{}
	for _, tx := range u.Transactions {
		if dated && !tx.Date.InRange(filter.From, filter.To) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(tx.Category, filter.Category) {
			continue
		}
		out = append(out, *tx)
	}
	return out
}

// Summary aggregates debit spend over the inclusive window
// [start, start+7d] for week or [start, start+30d] for month. Results
// are served from the LRU cache when one is configured; cache keys
// embed the user's mutation version, so mutations never serve stale
// summaries.
func (s *Store) Summary(key string, period core.Period, start core.Date) core.SpendSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := start.AddDays(period.Days())
	u, ok := s.users[key]
	if !ok {
		return core.SpendSummary{Start: start, End: end, ByCategory: []core.CategorySpend{}}
	}

	cacheKey := fmt.Sprintf("%s|%d|%s|%s", key, s.versions[key], period, start.Format("2006-01-02"))
	if s.summaries != nil {
		if cached, hit := s.summaries.Get(cacheKey); hit {
			return cached
		}
	}

	summary := core.SpendSummary{Start: start, End: end, ByCategory: []core.CategorySpend{}}
	index := map[string]int{}
	for _, tx := range u.Transactions {
		if tx.Amount >= 0 || !tx.Date.InRange(start, end) {
			continue
		}
		spend := math.Abs(tx.Amount)
		summary.TotalSpend += spend

		catKey := strings.ToLower(tx.Category)
		i, seen := index[catKey]
		if !seen {
			i = len(summary.ByCategory)
			index[catKey] = i
			summary.ByCategory = append(summary.ByCategory, core.CategorySpend{Name: tx.Category})
		}
		summary.ByCategory[i].Spend += spend
	}
	summary.TotalSpend = core.Round2(summary.TotalSpend)
	for i := range summary.ByCategory {
		summary.ByCategory[i].Spend = core.Round2(summary.ByCategory[i].Spend)
	}

	if s.summaries != nil {
		s.summaries.Set(cacheKey, summary)
	}
	return summary
}

// Forecast is the naive spend baseline: mean absolute debit amount
// times 15, with a fixed confidence. It stands in whenever the external
// analytics service is unavailable.
func (s *Store) Forecast(key string) core.Forecast {
	s.mu.RLock()
	defer s.mu.RUnlock()

	forecast := core.Forecast{Confidence: forecastConfidence, Methodology: ForecastMethodology}
	u, ok := s.users[key]
	if !ok {
		return forecast
	}

	var sum float64
	var debits int
	for _, tx := range u.Transactions {
		if tx.Amount >= 0 {
			continue
		}
		sum += math.Abs(tx.Amount)
		debits++
	}
	if debits > 0 {
		forecast.Next30DaySpend = core.Round2(sum / float64(debits) * forecastMultiplier)
	}
	return forecast
}

// ListAlerts returns the current alert list, budget alerts before
// anomaly alerts. Unknown users get an empty list.
func (s *Store) ListAlerts(key string) []core.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[key]
	if !ok {
		return []core.Alert{}
	}
	return append([]core.Alert(nil), u.Alerts...)
}

// AnomalyTransactionIDs returns the derived set of transaction ids
// currently flagged anomalous.
func (s *Store) AnomalyTransactionIDs(key string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := map[string]struct{}{}
	if u, ok := s.users[key]; ok {
		for id := range u.AnomalyIDs {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// SimilarMerchants suggests merchants of this user close to the given
// name; empty for unknown users.
func (s *Store) SimilarMerchants(key, merchant string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[key]
	if !ok {
		return nil
	}
	return engine.SimilarMerchants(u, merchant)
}
