// Package chat provides chat sessions for the campus assistant and their
// HTTP and WebSocket transports.
package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/intent"
)

// Key identifies a chat session: one per device and browser tab.
type Key struct {
	UserID    string
	SessionID string
}

func (k Key) String() string {
	return k.UserID + ":" + k.SessionID
}

func newTurn(speaker domain.Speaker, payload domain.ResponsePayload, at time.Time) domain.Turn {
	return domain.Turn{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Payload:   payload,
		Timestamp: at,
	}
}

// SessionManager manages active chat sessions for users.
type SessionManager struct {
	mu     sync.RWMutex
	active map[string]map[string]*Session
	now    func() time.Time
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[string]map[string]*Session),
		now:    time.Now,
	}
}

// Get returns the session for key, or nil.
func (m *SessionManager) Get(key Key) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sessions, ok := m.active[key.UserID]; ok {
		return sessions[key.SessionID]
	}
	return nil
}

// GetOrCreate returns the session for key, opening a new one with the
// welcome turn if none exists.
func (m *SessionManager) GetOrCreate(key Key) *Session {
	if s := m.Get(key); s != nil {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[key.UserID]; !exists {
		m.active[key.UserID] = make(map[string]*Session)
	}
	if s, exists := m.active[key.UserID][key.SessionID]; exists {
		return s
	}

	welcome := newTurn(domain.SpeakerBot, domain.PlainPayload(intent.WelcomeText), m.now())
	s := newSession(key, welcome)
	m.active[key.UserID][key.SessionID] = s
	slog.Info("Chat session opened", "user_id", key.UserID, "session_id", key.SessionID)
	return s
}

// Discard closes and removes the session for key.
func (m *SessionManager) Discard(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions, ok := m.active[key.UserID]
	if !ok {
		return false
	}
	s, exists := sessions[key.SessionID]
	if !exists {
		return false
	}

	s.Close()
	delete(sessions, key.SessionID)
	if len(sessions) == 0 {
		delete(m.active, key.UserID)
	}
	slog.Info("Chat session discarded", "user_id", key.UserID, "session_id", key.SessionID)
	return true
}

// SweepIdle discards sessions whose last visible turn is older than ttl.
// Sessions with a pending reply are kept.
func (m *SessionManager) SweepIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	swept := 0
	for userID, sessions := range m.active {
		for sid, s := range sessions {
			if s.HasPending() || !s.LastActive().Before(cutoff) {
				continue
			}
			s.Close()
			delete(sessions, sid)
			swept++
		}
		if len(sessions) == 0 {
			delete(m.active, userID)
		}
	}
	return swept
}

// Count returns the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, sessions := range m.active {
		n += len(sessions)
	}
	return n
}
