package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps every conversation in process memory behind a single mutex.
// Sessions are created lazily and live until Clear is called; eviction is left
// to the caller.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*record
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*record),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns a snapshot of the session, creating it on first use.
// An existing session has its last-active time refreshed.
func (s *Store) GetOrCreate(sessionID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.getOrCreateLocked(sessionID)
	return rec.snapshot(sessionID)
}

// AppendTurn records a turn, creating the session if needed, and updates the analytics counters.
func (s *Store) AppendTurn(sessionID string, role Role, text, intent string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.getOrCreateLocked(sessionID)
	now := s.now()
	turn := Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: now,
		Intent:    intent,
	}
	rec.history = append(rec.history, turn)

	rec.analytics.TotalMessages++
	rec.analytics.LastActive = now
	if intent != "" {
		rec.analytics.CommandsUsed[intent]++
	}
	return turn
}

// Get returns a snapshot without creating or touching the session.
func (s *Store) Get(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return rec.snapshot(sessionID), true
}

// Clear drops the session and its analytics. Clearing an unknown session is a no-op.
func (s *Store) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(sessionID string) *record {
	now := s.now()
	rec, ok := s.sessions[sessionID]
	if ok {
		rec.analytics.LastActive = now
		return rec
	}
	rec = &record{
		createdAt: now,
		analytics: Analytics{
			CommandsUsed: make(map[string]int),
			SessionStart: now,
			LastActive:   now,
		},
	}
	s.sessions[sessionID] = rec
	return rec
}
