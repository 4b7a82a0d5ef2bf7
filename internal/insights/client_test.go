package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atlasledger/internal/core"
)

func TestForecast(t *testing.T) {
	var gotAuth string
	var gotBody forecastRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast/advanced" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(forecastResponse{
			ProjectedSpend: 312.5,
			Confidence:     0.82,
			Methodology:    "seasonal decomposition",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	txs := []core.Transaction{{
		ID:       "t1",
		Date:     core.NewDate(2026, 8, 1),
		Amount:   -12.5,
		Merchant: "Uber",
		Category: "Transportation",
	}}
	forecast, err := c.Forecast(context.Background(), "user-key-1", txs, 30)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	if gotAuth != "Bearer user-key-1" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody.HorizonDays != 30 || len(gotBody.Transactions) != 1 {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
	if gotBody.Transactions[0].Date != "2026-08-01" {
		t.Fatalf("date wire form = %q", gotBody.Transactions[0].Date)
	}
	if forecast.Next30DaySpend != 312.5 || forecast.Confidence != 0.82 {
		t.Fatalf("unexpected forecast %+v", forecast)
	}
}

func TestForecastServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not ready", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.Forecast(context.Background(), "user-key-1", nil, 30); err == nil {
		t.Fatal("expected an error on 503")
	}
}

func TestPushAlerts(t *testing.T) {
	var gotBody alertEventRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/insights/update" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	alerts := []core.Alert{{ID: "a1", Kind: core.AlertOverspend, Message: "over", FiredAt: ts}}
	if err := c.PushAlerts(context.Background(), "user-key-1", alerts, ts); err != nil {
		t.Fatalf("PushAlerts: %v", err)
	}

	if gotBody.UserKey != "user-key-1" || len(gotBody.Alerts) != 1 {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
	if gotBody.Alerts[0].Kind != "overspend" {
		t.Fatalf("kind = %q", gotBody.Alerts[0].Kind)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}

	bad := NewClient(srv.URL+"/missing", 5*time.Second)
	if err := bad.Health(context.Background()); err == nil {
		t.Fatal("expected an error for a non-200 health response")
	}
}
