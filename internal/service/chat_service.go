package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/ai/refiner"
	"voice-assistant-be/pkg/ai/router"
	"voice-assistant-be/pkg/events"
	"voice-assistant-be/pkg/intent"
	"voice-assistant-be/pkg/session"
)

// DefaultSessionID is used when the caller does not name a session.
const DefaultSessionID = "default"

var ErrEmptyUtterance = errors.New("utterance is empty")

// TurnResult is what a caller gets back for one utterance.
type TurnResult struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"response"`
	Intent    string `json:"intent"`
	Stage     string `json:"stage"`
	Refined   bool   `json:"refined"`
}

// SessionNotifier is told about session-level changes, e.g. to push them to
// connected websocket clients.
type SessionNotifier interface {
	NotifySession(sessionID string, event events.Event)
}

type IChatService interface {
	HandleTurn(ctx context.Context, sessionID, utterance string) (*TurnResult, error)
	ClearSession(ctx context.Context, sessionID string) bool
	Session(sessionID string) (session.Session, bool)
	ClassifierEnabled() bool
}

type chatService struct {
	store      *session.Store
	classifier *intent.SafeClassifier
	router     *router.Router
	publisher  IPublisherService
	notifier   SessionNotifier
	logger     logger.ILogger
	now        func() time.Time
}

// NewChatService wires the turn pipeline. publisher and notifier may be nil.
func NewChatService(
	store *session.Store,
	classifier *intent.SafeClassifier,
	r *router.Router,
	publisher IPublisherService,
	notifier SessionNotifier,
	log logger.ILogger,
) IChatService {
	return &chatService{
		store:      store,
		classifier: classifier,
		router:     r,
		publisher:  publisher,
		notifier:   notifier,
		logger:     log,
		now:        time.Now,
	}
}

func (s *chatService) ClassifierEnabled() bool {
	return s.classifier.Enabled()
}

// HandleTurn answers one utterance. Apart from the empty string it never
// fails: blank input and every collaborator failure end up as reply text.
func (s *chatService) HandleTurn(ctx context.Context, sessionID, utterance string) (*TurnResult, error) {
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	label := s.classifier.Predict(ctx, utterance)
	res := s.route(ctx, sessionID, utterance, label)

	s.store.AppendTurn(sessionID, session.RoleUser, utterance, label)
	s.store.AppendTurn(sessionID, session.RoleAssistant, res.Reply, label)

	s.logger.Info("CHAT", "Turn handled", map[string]interface{}{
		"session_id": sessionID,
		"intent":     label,
		"stage":      res.Stage,
		"refined":    res.Refined,
	})

	s.publish(ctx, events.NewTurnRecorded(events.TurnRecorded{
		SessionID: sessionID,
		Intent:    label,
		Stage:     res.Stage,
		Refined:   res.Refined,
		At:        s.now(),
	}))

	return res, nil
}

func (s *chatService) route(ctx context.Context, sessionID, utterance, label string) (res *TurnResult) {
	res = &TurnResult{SessionID: sessionID, Intent: label}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("CHAT", "Routing panicked, answering with clarification", map[string]interface{}{
				"session_id": sessionID,
				"error":      fmt.Sprint(r),
			})
			res.Reply = router.ClarificationMessage
			res.Stage = router.StageFallback
		}
	}()

	current := s.store.GetOrCreate(sessionID)
	refined := refiner.Refine(utterance, label, current)
	if refined.Merged {
		s.logger.Debug("REFINER", "Merged follow-up with previous utterance", map[string]interface{}{
			"session_id": sessionID,
			"refined":    refined.Text,
		})
	}

	out := s.router.Route(ctx, router.Input{Original: utterance, Intent: label, Refined: refined})
	res.Reply = out.Reply
	res.Stage = out.Stage
	res.Refined = refined.Merged
	return res
}

// ClearSession drops the session and its analytics. It reports whether anything was removed.
func (s *chatService) ClearSession(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	removed := s.store.Clear(sessionID)

	event := events.NewSessionCleared(sessionID, s.now())
	if s.notifier != nil {
		s.notifier.NotifySession(sessionID, event)
	}
	s.publish(ctx, event)

	s.logger.Info("CHAT", "Session cleared", map[string]interface{}{"session_id": sessionID, "existed": removed})
	return removed
}

func (s *chatService) Session(sessionID string) (session.Session, bool) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	return s.store.Get(sessionID)
}

// publish is fire-and-forget; event delivery never affects the reply.
func (s *chatService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
