package core

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds live sessions keyed by id.
type Registry struct {
	svc *Service

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry whose sessions share svc.
func NewRegistry(svc *Service) *Registry {
	return &Registry{svc: svc, sessions: make(map[string]*Session)}
}

// Get returns the session for id.
// Returns false if not found.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, touching it. An empty or unknown
// id gets a fresh session under a new random id; created reports that case
// so the caller can load the table and issue a cookie.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool, err error) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			s.Touch()
			return s, false, nil
		}
	}

	s, err = r.svc.NewSession(uuid.NewString())
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s, true, nil
}

// Remove drops the session for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns live session ids, sorted for consistent ordering.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep removes sessions idle for longer than ttl and returns how many
// were removed.
func (r *Registry) Sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
