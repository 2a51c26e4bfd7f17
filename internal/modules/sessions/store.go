package sessions

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is an in-memory session repository. Callers receive copies.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session and assigns it an id
func (st *Store) Create(s *Session) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s = s.Clone()
	s.ID = uuid.New().String()
	st.sessions[s.ID] = s
	return s.Clone()
}

// Get returns a copy of a session
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Touch marks a session as seen
func (st *Store) Touch(id string, now time.Time) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.LastSeen = now
	return nil
}

// Update applies fn to a working copy and stores it when fn succeeds.
// Updates of all sessions are serialized.
func (st *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	current, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	st.sessions[id] = working
	return working.Clone(), nil
}

// Delete removes a session
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// RemoveIdle deletes every session idle for longer than ttl and returns them
func (st *Store) RemoveIdle(now time.Time, ttl time.Duration) []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	var removed []*Session
	for id, s := range st.sessions {
		if s.IdleFor(now) > ttl {
			removed = append(removed, s)
			delete(st.sessions, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return removed
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// IDs returns the ids of all live sessions, sorted
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
