package amqp

import (
	"encoding/json"
	"time"

	"atlasledger/internal/core"
)

// AlertPayload is the wire form of one alert inside an event message.
type AlertPayload struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	FiredAt time.Time `json:"fired_at"`
}

// AlertsRecomputedMessage announces that a user's alert list was fully
// regenerated. It carries the complete alert payload so consumers need
// no access to the in-process store.
type AlertsRecomputedMessage struct {
	UserKey   string         `json:"user_key"`
	Alerts    []AlertPayload `json:"alerts"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewAlertsRecomputedMessage builds a message from the store's alerts.
func NewAlertsRecomputedMessage(userKey string, alerts []core.Alert) *AlertsRecomputedMessage {
	payload := make([]AlertPayload, len(alerts))
	for i, a := range alerts {
		payload[i] = AlertPayload{
			ID:      a.ID,
			Kind:    string(a.Kind),
			Message: a.Message,
			FiredAt: a.FiredAt,
		}
	}
	return &AlertsRecomputedMessage{
		UserKey:   userKey,
		Alerts:    payload,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AlertsRecomputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertsRecomputedMessageFromJSON parses a message from JSON bytes.
func AlertsRecomputedMessageFromJSON(data []byte) (*AlertsRecomputedMessage, error) {
	var msg AlertsRecomputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
