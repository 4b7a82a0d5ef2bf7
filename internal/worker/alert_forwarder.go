package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"atlasledger/internal/amqp"
	"atlasledger/internal/core"
)

// AlertPusher forwards a user's regenerated alerts downstream.
type AlertPusher interface {
	PushAlerts(ctx context.Context, userKey string, alerts []core.Alert, ts time.Time) error
}

// AlertForwarder consumes alert recomputation events and pushes them to
// the analytics service.
type AlertForwarder struct {
	pusher  AlertPusher
	timeout time.Duration
}

func NewAlertForwarder(pusher AlertPusher, timeout time.Duration) *AlertForwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AlertForwarder{
		pusher:  pusher,
		timeout: timeout,
	}
}

// HandleAlertsRecomputed processes a single alert event from AMQP.
func (w *AlertForwarder) HandleAlertsRecomputed(ctx context.Context, msg *amqp.AlertsRecomputedMessage) error {
	slog.InfoContext(ctx, "Processing alert event",
		"user_key", msg.UserKey,
		"alert_count", len(msg.Alerts))

	alerts := make([]core.Alert, 0, len(msg.Alerts))
	for _, a := range msg.Alerts {
		alerts = append(alerts, core.Alert{
			ID:      a.ID,
			Kind:    core.AlertKind(a.Kind),
			Message: a.Message,
			FiredAt: a.FiredAt,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.pusher.PushAlerts(ctx, msg.UserKey, alerts, msg.Timestamp); err != nil {
		return fmt.Errorf("push alerts for user: %w", err)
	}

	slog.InfoContext(ctx, "Forwarded alerts to analytics service",
		"user_key", msg.UserKey,
		"alert_count", len(alerts))

	return nil
}
