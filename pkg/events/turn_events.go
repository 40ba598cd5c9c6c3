package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeTurnRecorded   = "TURN_RECORDED"
	TypeSessionCleared = "SESSION_CLEARED"
)

// TurnRecorded describes a finished turn. The utterance itself is not included.
type TurnRecorded struct {
	SessionID string
	Intent    string
	Stage     string
	Refined   bool
	At        time.Time
}

func NewTurnRecorded(t TurnRecorded) BaseEvent {
	return BaseEvent{
		Type: TypeTurnRecorded,
		Data: map[string]interface{}{
			"event_id":   uuid.NewString(),
			"session_id": t.SessionID,
			"intent":     t.Intent,
			"stage":      t.Stage,
			"refined":    t.Refined,
			"timestamp":  t.At.Format(time.RFC3339Nano),
		},
		OccurredAt: t.At,
	}
}

func NewSessionCleared(sessionID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeSessionCleared,
		Data: map[string]interface{}{
			"event_id":   uuid.NewString(),
			"session_id": sessionID,
			"timestamp":  at.Format(time.RFC3339Nano),
		},
		OccurredAt: at,
	}
}

// Subject is the NATS subject an event of the given type is published on.
func Subject(eventType string) string {
	return "events." + eventType
}
