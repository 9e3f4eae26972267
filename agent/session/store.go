package session

import "sync"

// Store abstracts the per-session context map so the in-memory default can
// be swapped for a shared or persistent store without touching Manager call
// sites.
type Store interface {
	// Load returns the context for a session, or false if none exists.
	Load(sessionID string) (*ConversationContext, bool)
	// Save persists (or re-persists) a context.
	Save(sctx *ConversationContext)
	// Delete removes a session entirely.
	Delete(sessionID string)
	// SessionIDs lists the ids of all known sessions.
	SessionIDs() []string
}

// MemoryStore is the default Store: a locked in-memory map. Safe for
// concurrent access across sessions; per-session write ordering is the
// caller's responsibility.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*ConversationContext
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*ConversationContext)}
}

func (s *MemoryStore) Load(sessionID string) (*ConversationContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sctx, ok := s.sessions[sessionID]
	return sctx, ok
}

func (s *MemoryStore) Save(sctx *ConversationContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sctx.SessionID] = sctx
}

func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *MemoryStore) SessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
