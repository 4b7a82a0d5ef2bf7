// Package insights talks to the external analytics service. The service
// is optional: callers fall back to local baselines when it is down.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"atlasledger/internal/core"
)

// Client is an HTTP client for the analytics service. Requests carry the
// owning user's key as a bearer token so the service can scope its work.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// transactionPayload is the wire shape the analytics service expects for
// a transaction sample.
type transactionPayload struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Merchant string  `json:"merchant"`
	Category string  `json:"category"`
}

type forecastRequest struct {
	Transactions []transactionPayload `json:"transactions"`
	HorizonDays  int                  `json:"horizon_days"`
}

type forecastResponse struct {
	ProjectedSpend float64 `json:"projected_spend"`
	Confidence     float64 `json:"confidence"`
	Methodology    string  `json:"methodology"`
}

type alertEventRequest struct {
	UserKey   string         `json:"user_key"`
	Alerts    []alertPayload `json:"alerts"`
	Timestamp time.Time      `json:"timestamp"`
}

type alertPayload struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	FiredAt time.Time `json:"fired_at"`
}

// Forecast asks the analytics service for an advanced spend projection.
func (c *Client) Forecast(ctx context.Context, userKey string, txs []core.Transaction, horizonDays int) (core.Forecast, error) {
	payload := forecastRequest{
		Transactions: make([]transactionPayload, 0, len(txs)),
		HorizonDays:  horizonDays,
	}
	for _, tx := range txs {
		payload.Transactions = append(payload.Transactions, transactionPayload{
			ID:       tx.ID,
			Date:     tx.Date.Format("2006-01-02"),
			Amount:   tx.Amount,
			Merchant: tx.Merchant,
			Category: tx.Category,
		})
	}

	var resp forecastResponse
	if err := c.post(ctx, "/forecast/advanced", userKey, payload, &resp); err != nil {
		return core.Forecast{}, err
	}

	return core.Forecast{
		Next30DaySpend: resp.ProjectedSpend,
		Confidence:     resp.Confidence,
		Methodology:    resp.Methodology,
	}, nil
}

// PushAlerts forwards a regenerated alert list to the analytics service
// so it can fold alert history into its models.
func (c *Client) PushAlerts(ctx context.Context, userKey string, alerts []core.Alert, ts time.Time) error {
	payload := alertEventRequest{
		UserKey:   userKey,
		Alerts:    make([]alertPayload, 0, len(alerts)),
		Timestamp: ts,
	}
	for _, a := range alerts {
		payload.Alerts = append(payload.Alerts, alertPayload{
			ID:      a.ID,
			Kind:    string(a.Kind),
			Message: a.Message,
			FiredAt: a.FiredAt,
		})
	}
	return c.post(ctx, "/insights/update", userKey, payload, nil)
}

// Health checks the analytics service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, userKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+userKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call analytics service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("analytics service returned status %d: %s", resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
