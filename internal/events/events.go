// Package events publishes session telemetry to JetStream. Consumers
// downstream build playing-strength stats and drill progress reports;
// the session itself never depends on them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/wristchess/internal/models"
)

// EventType tags a telemetry event.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventMoveMade       EventType = "move_made"
	EventGameEnded      EventType = "game_ended"
	EventGameSaved      EventType = "game_saved"
	EventDrillAnswered  EventType = "drill_answered"
)

// Event is one telemetry record.
type Event struct {
	ID        uuid.UUID   `json:"event_id"`
	Type      EventType   `json:"event_type"`
	DeviceID  string      `json:"device_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// MoveMadePayload records one half-move.
type MoveMadePayload struct {
	SAN      string `json:"san"`
	UCI      string `json:"uci"`
	Color    string `json:"color"`
	ByEngine bool   `json:"by_engine"`
	MoveNum  int    `json:"move_num"`
}

// GameEndedPayload records the final result.
type GameEndedPayload struct {
	Result   string      `json:"result"`
	Moves    int         `json:"moves"`
	Mode     models.Mode `json:"mode"`
	Position string      `json:"position"`
}

// DrillAnsweredPayload records one drill submission.
type DrillAnsweredPayload struct {
	Drill   models.DrillType  `json:"drill"`
	Score   models.DrillScore `json:"score"`
	Correct bool              `json:"correct"`
}

// Publisher emits telemetry events. Implementations must tolerate broker
// outages; telemetry never blocks play.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NewEvent stamps a fresh event envelope.
func NewEvent(eventType EventType, deviceID string, payload interface{}) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// NopPublisher drops everything; used when no broker is configured.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
