package store

import (
	"context"
	"testing"
	"time"

	"atlasledger/internal/cache"
	"atlasledger/internal/core"
)

func TestListTransactionsFilters(t *testing.T) {
	s := newTestStore(Options{})
	ctx := context.Background()
	s.RegisterOrFetch(ctx, "key-1", "")

	all := s.ListTransactions("key-1", TransactionFilter{})
	if len(all) == 0 {
		t.Fatal("expected seeded transactions")
	}
	// Newest first.
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date.Time) {
			t.Fatal("transactions not ordered newest first")
		}
	}

	byCategory := s.ListTransactions("key-1", TransactionFilter{Category: "groceries"})
	if len(byCategory) != 2 {
		t.Fatalf("groceries = %d, want 2", len(byCategory))
	}
	for _, tx := range byCategory {
		if tx.Category != "Groceries" {
			t.Fatalf("category filter leaked %q", tx.Category)
		}
	}

	from := core.Today().AddDays(-7)
	recent := s.ListTransactions("key-1", TransactionFilter{From: from})
	if len(recent) != 6 {
		t.Fatalf("last-week transactions = %d, want 6", len(recent))
	}
}

func TestListTransactionsUnknownUser(t *testing.T) {
	s := newTestStore(Options{})
	if got := s.ListTransactions("nobody", TransactionFilter{}); got != nil {
		t.Fatalf("ListTransactions = %v, want nil", got)
	}
}

func TestSummary(t *testing.T) {
	s := newTestStore(Options{})
	ctx := context.Background()
	s.RegisterOrFetch(ctx, "key-1", "")

	start := core.Today().AddDays(-7)
	summary := s.Summary("key-1", core.PeriodWeek, start)

	if !summary.Start.Equal(start.Time) {
		t.Fatalf("start = %v, want %v", summary.Start, start)
	}
	if !summary.End.Equal(start.AddDays(7).Time) {
		t.Fatalf("end = %v, want start+7d", summary.End)
	}

	// Last seven days of seed data: 6.40 + 84.12 + 23.80 + 54.30 +
	// 15.99 + 1500.00 of debits; the payroll credit is excluded.
	if summary.TotalSpend != 1684.61 {
		t.Fatalf("total spend = %v, want 1684.61", summary.TotalSpend)
	}

	var total float64
	for _, c := range summary.ByCategory {
		total += c.Spend
		if c.Name == "Income" {
			t.Fatal("credits must never appear in the summary")
		}
	}
	if core.Round2(total) != summary.TotalSpend {
		t.Fatalf("category spends sum to %v, want %v", core.Round2(total), summary.TotalSpend)
	}
}

func TestSummaryUnknownUser(t *testing.T) {
	s := newTestStore(Options{})
	start := core.NewDate(2026, 8, 1)
	summary := s.Summary("nobody", core.PeriodMonth, start)
	if summary.TotalSpend != 0 || len(summary.ByCategory) != 0 {
		t.Fatalf("unexpected summary for unknown user: %+v", summary)
	}
	if !summary.End.Equal(start.AddDays(30).Time) {
		t.Fatalf("end = %v, want start+30d", summary.End)
	}
}

func TestSummaryCacheStaysFreshAcrossMutations(t *testing.T) {
	c := cache.NewLRUCache[core.SpendSummary](16, time.Hour)
	s := newTestStore(Options{SummaryCache: c})
	ctx := context.Background()
	s.RegisterOrFetch(ctx, "key-1", "")

	start := core.Today().AddDays(-7)
	before := s.Summary("key-1", core.PeriodWeek, start)

	rows := []core.ImportRow{{Merchant: "NEW CAFE", Amount: "-10.00", Date: core.Today().AddDays(-1).Format("2006-01-02")}}
	if _, err := s.ImportRows(ctx, "key-1", rows); err != nil {
		t.Fatalf("ImportRows: %v", err)
	}

	after := s.Summary("key-1", core.PeriodWeek, start)
	if after.TotalSpend != core.Round2(before.TotalSpend+10) {
		t.Fatalf("total after import = %v, want %v", after.TotalSpend, core.Round2(before.TotalSpend+10))
	}
}

func TestForecast(t *testing.T) {
	s := newTestStore(Options{})
	ctx := context.Background()

	empty := s.Forecast("nobody")
	if empty.Next30DaySpend != 0 || empty.Confidence != 0.4 || empty.Methodology == "" {
		t.Fatalf("unexpected empty forecast %+v", empty)
	}

	s.RegisterOrFetch(ctx, "key-1", "")
	forecast := s.Forecast("key-1")
	if forecast.Next30DaySpend <= 0 {
		t.Fatalf("forecast = %v, want positive", forecast.Next30DaySpend)
	}
	if forecast.Confidence != 0.4 || forecast.Methodology != ForecastMethodology {
		t.Fatalf("unexpected forecast metadata %+v", forecast)
	}
}

func TestListAlertsCopies(t *testing.T) {
	s := newTestStore(Options{})
	ctx := context.Background()
	s.RegisterOrFetch(ctx, "key-1", "")
	if _, err := s.UpsertBudget(ctx, "key-1", "Groceries", 10); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}

	alerts := s.ListAlerts("key-1")
	if len(alerts) == 0 {
		t.Fatal("expected an overspend alert")
	}
	alerts[0].Message = "tampered"
	if s.ListAlerts("key-1")[0].Message == "tampered" {
		t.Fatal("ListAlerts must return a copy")
	}
}

func TestAnomalyTransactionIDsUnknownUser(t *testing.T) {
	s := newTestStore(Options{})
	if got := s.AnomalyTransactionIDs("nobody"); len(got) != 0 {
		t.Fatalf("AnomalyTransactionIDs = %v, want empty", got)
	}
}

func TestSimilarMerchantsQuery(t *testing.T) {
	s := newTestStore(Options{})
	ctx := context.Background()
	s.RegisterOrFetch(ctx, "key-1", "")

	got := s.SimilarMerchants("key-1", "Starbuck")
	if len(got) == 0 || got[0] != "Starbucks" {
		t.Fatalf("SimilarMerchants = %v, want Starbucks first", got)
	}
	if s.SimilarMerchants("nobody", "Starbucks") != nil {
		t.Fatal("unknown user must get no suggestions")
	}
}
