package runtime

import (
	"sync"

	"convosplit/domain"
	"convosplit/errors"
)

// Registry is the process-wide map from temporary channel identity to
// its live session. It is the sole addressing path for activity events:
// every inbound message or exit signal is resolved through a Lookup.
// It is explicitly owned by whoever builds the coordinator; there is no
// hidden package-level instance.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ChannelID]*domain.Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ChannelID]*domain.Session),
	}
}

// Register adds a session under its temporary channel id.
// At most one session may exist per channel at any time, so a second
// registration for the same id is refused instead of overwritten.
func (r *Registry) Register(session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.TempChannelID]; ok {
		return errors.ErrSessionExists
	}
	r.sessions[session.TempChannelID] = session
	return nil
}

// Lookup resolves a temporary channel to its session. It is called on
// every inbound event, so it only takes the read lock and never blocks
// independently progressing sessions.
func (r *Registry) Lookup(id domain.ChannelID) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	return session, ok
}

// Remove deletes the entry for a temporary channel. Removing an id that
// was already removed is a no-op, which keeps teardown idempotent.
func (r *Registry) Remove(id domain.ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// Active returns a snapshot of all registered sessions, used for
// graceful shutdown and heartbeat reporting.
func (r *Registry) Active() []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len reports how many sessions are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
