package sessionstore

import (
	"sync"

	"github.com/clausops/escaperoom/internal/session"
)

// Registry holds the live sessions by id. Sessions are strictly
// per-team; nothing here is shared game state.
type Registry struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session.Session),
	}
}

// Get retrieves a session by id.
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.sessions[id]
	return s, exists
}

// Set stores a session.
func (r *Registry) Set(id string, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
}

// Delete removes a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// All returns a snapshot of the live sessions.
func (r *Registry) All() []*session.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// StopAll tears down every session's countdown ticker. Used on server
// shutdown.
func (r *Registry) StopAll() {
	for _, s := range r.All() {
		s.StopTicker()
	}
}
