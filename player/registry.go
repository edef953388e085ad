package player

import "sync"

// Registry maps a guild to its at-most-one live session. GetOrCreate is an
// atomic check-and-insert so near-simultaneous playback-start commands can
// never race two sessions into existence for one guild.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the live session for a guild, or ErrNoActiveSession. Commands
// that require an existing session fail fast through this path.
func (r *Registry) Get(guildID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[guildID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// GetOrCreate returns the live session for a guild, creating one through the
// supplied constructor while holding the registry lock.
func (r *Registry) GetOrCreate(guildID string, create func() (*Session, error)) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[guildID]; ok {
		return s, nil
	}
	s, err := create()
	if err != nil {
		return nil, err
	}
	r.sessions[guildID] = s
	return s, nil
}

// Remove destroys and forgets the guild's session, if any.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	delete(r.sessions, guildID)
	r.mu.Unlock()

	if ok {
		s.Destroy()
	}
}

// StopAll destroys every live session. Used during graceful shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Destroy()
	}
}
