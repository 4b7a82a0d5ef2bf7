package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"atlasledger/internal/amqp"
	"atlasledger/internal/core"
)

type recordingPusher struct {
	userKey string
	alerts  []core.Alert
	err     error
}

func (p *recordingPusher) PushAlerts(ctx context.Context, userKey string, alerts []core.Alert, ts time.Time) error {
	p.userKey = userKey
	p.alerts = alerts
	return p.err
}

func TestHandleAlertsRecomputed(t *testing.T) {
	pusher := &recordingPusher{}
	w := NewAlertForwarder(pusher, time.Second)

	fired := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	msg := &amqp.AlertsRecomputedMessage{
		UserKey: "user-key-1",
		Alerts: []amqp.AlertPayload{
			{ID: "a1", Kind: "overspend", Message: "over", FiredAt: fired},
		},
		Timestamp: fired,
	}

	if err := w.HandleAlertsRecomputed(context.Background(), msg); err != nil {
		t.Fatalf("HandleAlertsRecomputed: %v", err)
	}
	if pusher.userKey != "user-key-1" {
		t.Fatalf("user key = %q", pusher.userKey)
	}
	if len(pusher.alerts) != 1 || pusher.alerts[0].Kind != core.AlertOverspend {
		t.Fatalf("alerts = %+v", pusher.alerts)
	}
}

func TestHandleAlertsRecomputedPropagatesError(t *testing.T) {
	pusher := &recordingPusher{err: errors.New("service down")}
	w := NewAlertForwarder(pusher, time.Second)

	msg := &amqp.AlertsRecomputedMessage{UserKey: "user-key-1"}
	if err := w.HandleAlertsRecomputed(context.Background(), msg); err == nil {
		t.Fatal("expected the push error to propagate")
	}
}
