package amqp

import (
	"testing"
	"time"

	"atlasledger/internal/core"
)

func TestAlertsRecomputedMessageRoundTrip(t *testing.T) {
	fired := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	msg := NewAlertsRecomputedMessage("user-key-1", []core.Alert{
		{ID: "a1", Kind: core.AlertOverspend, Message: "over budget", FiredAt: fired},
		{ID: "a2", Kind: core.AlertAnomaly, Message: "unusual spend", FiredAt: fired},
	})

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	parsed, err := AlertsRecomputedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if parsed.UserKey != "user-key-1" {
		t.Fatalf("user key = %q", parsed.UserKey)
	}
	if len(parsed.Alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(parsed.Alerts))
	}
	if parsed.Alerts[0].Kind != string(core.AlertOverspend) || parsed.Alerts[1].Kind != string(core.AlertAnomaly) {
		t.Fatalf("kinds = %q, %q", parsed.Alerts[0].Kind, parsed.Alerts[1].Kind)
	}
	if !parsed.Alerts[0].FiredAt.Equal(fired) {
		t.Fatalf("fired at = %v", parsed.Alerts[0].FiredAt)
	}
}

func TestAlertsRecomputedMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := AlertsRecomputedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestNewAlertsRecomputedMessageEmptyList(t *testing.T) {
	msg := NewAlertsRecomputedMessage("user-key-1", nil)
	if msg.Alerts == nil || len(msg.Alerts) != 0 {
		t.Fatalf("alerts = %v, want an empty non-nil slice", msg.Alerts)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp must be stamped")
	}
}
