package mapper

import (
	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/service"
	"voice-assistant-be/pkg/session"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) TurnResultToResponse(r *service.TurnResult) *dto.ProcessResponse {
	if r == nil {
		return nil
	}

	var label *string
	if r.Intent != "" {
		l := r.Intent
		label = &l
	}

	return &dto.ProcessResponse{
		Response:  r.Reply,
		Intent:    label,
		Stage:     r.Stage,
		SessionId: r.SessionID,
	}
}

func (m *ChatMapper) SessionToResponse(s session.Session) *dto.SessionResponse {
	history := make([]dto.TurnDTO, 0, len(s.History))
	for _, t := range s.History {
		history = append(history, dto.TurnDTO{
			Id:        t.ID,
			Role:      string(t.Role),
			Text:      t.Text,
			Intent:    t.Intent,
			Timestamp: t.Timestamp,
		})
	}

	return &dto.SessionResponse{
		Id:        s.ID,
		CreatedAt: s.CreatedAt,
		History:   history,
		Analytics: dto.AnalyticsDTO{
			TotalMessages: s.Analytics.TotalMessages,
			CommandsUsed:  s.Analytics.CommandsUsed,
			SessionStart:  s.Analytics.SessionStart,
			LastActive:    s.Analytics.LastActive,
		},
	}
}
