package dto

import "time"

type ProcessRequest struct {
	Command   string `json:"command" validate:"required,max=2000"`
	SessionId string `json:"session_id" validate:"max=128"`
}

type ProcessResponse struct {
	Response  string  `json:"response"`
	Intent    *string `json:"intent"` // null when the classifier had no answer
	Stage     string  `json:"stage"`
	SessionId string  `json:"session_id"`
}

type TurnDTO struct {
	Id        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AnalyticsDTO struct {
	TotalMessages int            `json:"total_messages"`
	CommandsUsed  map[string]int `json:"commands_used"`
	SessionStart  time.Time      `json:"session_start"`
	LastActive    time.Time      `json:"last_active"`
}

type SessionResponse struct {
	Id        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	History   []TurnDTO    `json:"history"`
	Analytics AnalyticsDTO `json:"analytics"`
}

type ClearSessionResponse struct {
	SessionId string `json:"session_id"`
	Existed   bool   `json:"existed"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	MlEnabled bool   `json:"ml_enabled"`
}

// WsInbound is what a websocket client sends for one turn.
type WsInbound struct {
	Command string `json:"command" validate:"required,max=2000"`
}

// WsOutbound is pushed to websocket clients: turn replies and session notices.
type WsOutbound struct {
	Type string `json:"type"` // "reply", "error" or an event type
	Data any    `json:"data"`
}
