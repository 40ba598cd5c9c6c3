package session

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one recorded utterance. Turns are never modified after they are appended.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Intent    string    `json:"intent,omitempty"` // empty when the classifier had no answer
}

// Analytics is derived from turn recording only; routing never reads it.
type Analytics struct {
	TotalMessages int            `json:"total_messages"`
	CommandsUsed  map[string]int `json:"commands_used"`
	SessionStart  time.Time      `json:"session_start"`
	LastActive    time.Time      `json:"last_active"`
}

// Session is a point-in-time copy of a conversation handed out by the Store.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	History   []Turn    `json:"history"`
	Analytics Analytics `json:"analytics"`
}

// LastUserText returns the most recent user utterance, scanning backwards.
func (s Session) LastUserText() (string, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Text, true
		}
	}
	return "", false
}

type record struct {
	createdAt time.Time
	history   []Turn
	analytics Analytics
}

func (r *record) snapshot(id string) Session {
	history := make([]Turn, len(r.history))
	copy(history, r.history)

	commands := make(map[string]int, len(r.analytics.CommandsUsed))
	for k, v := range r.analytics.CommandsUsed {
		commands[k] = v
	}
	analytics := r.analytics
	analytics.CommandsUsed = commands

	return Session{
		ID:        id,
		CreatedAt: r.createdAt,
		History:   history,
		Analytics: analytics,
	}
}
