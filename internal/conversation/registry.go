package conversation

import (
	"sync"
	"time"
)

// SessionState bundles everything the registry owns for one session. Access
// happens only inside Registry.Do/Peek, which hold the entry lock.
type SessionState struct {
	SessionID  string
	CustomerID string
	Memory     *ContextualMemory
	Flow       *ConversationFlow

	// cachedContext is valid while the history length matches cachedHistoryLen.
	cachedContext    *EnhancedContext
	cachedHistoryLen int

	lastActive time.Time
}

// Touch marks the session as recently used.
func (s *SessionState) Touch(now time.Time) {
	s.lastActive = now
}

type sessionEntry struct {
	mu    sync.Mutex
	state *SessionState
}

// Registry owns all live session state, keyed by session ID, with per-entry
// locking so one session's turn never blocks another session's.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
}

func (r *Registry) entry(sessionID, customerID string) *sessionEntry {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sessionID]; ok {
		return e
	}
	e = &sessionEntry{state: &SessionState{
		SessionID:  sessionID,
		CustomerID: customerID,
		Memory:     NewContextualMemory(sessionID, customerID),
		lastActive: r.now(),
	}}
	r.sessions[sessionID] = e
	return e
}

// Do runs fn with exclusive access to the session's state, creating the
// session if it does not exist yet.
func (r *Registry) Do(sessionID, customerID string, fn func(*SessionState) error) error {
	e := r.entry(sessionID, customerID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Touch(r.now())
	return fn(e.state)
}

// Peek runs fn with exclusive access to an existing session's state without
// creating one. Returns false if the session is unknown.
func (r *Registry) Peek(sessionID string, fn func(*SessionState)) bool {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
	return true
}

// Remove evicts a session. Used on explicit conversation end.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}

// SweepIdle evicts sessions idle longer than maxIdle and returns how many
// were removed. Called from a background timer, not the turn path.
func (r *Registry) SweepIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.sessions {
		e.mu.Lock()
		idle := e.state.lastActive.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
