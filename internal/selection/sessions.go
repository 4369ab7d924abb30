package selection

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session binds one widget instance to its controller.
type Session struct {
	ID        string
	PartySize int
	Ctl       *Controller
	UpdatedAt time.Time
	mu        sync.Mutex
}

// Touch refreshes the session's activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// SessionStore manages selection sessions keyed by opaque ID.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a session store.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// Create registers a new session with a fresh ID.
func (ss *SessionStore) Create(partySize int, checker RangeChecker, onChange OnChange) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		PartySize: partySize,
		Ctl:       NewController(checker, onChange),
		UpdatedAt: time.Now(),
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[session.ID] = session
	return session
}

// Get returns the session, or nil when unknown or expired.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	session, ok := ss.sessions[id]
	if !ok || session.IsExpired(ss.timeout) {
		return nil
	}
	return session
}

// Delete removes a session.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
}

// Cleanup removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup on a fixed interval until stop is closed.
func (ss *SessionStore) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ss.Cleanup()
			}
		}
	}()
}
