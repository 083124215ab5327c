package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Mayan-101/torc/internal/model/sim"
)

// entry pairs a session with its own lock so mutations on different
// sessions never contend.
type entry struct {
	mu      sync.Mutex
	session *sim.Session
}

// MemoryStore keeps sessions in a process-local map. It is the default
// backend: the trainer's state does not outlive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry)}
}

// Create inserts a new session. The id must not already exist.
func (s *MemoryStore) Create(_ context.Context, session *sim.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}

	clone := session.Clone()
	s.entries[session.ID] = &entry{session: &clone}
	return nil
}

// Get retrieves a deep copy of a session by id.
func (s *MemoryStore) Get(_ context.Context, id string) (sim.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return sim.Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Update runs the mutator under the session's lock and returns the updated
// snapshot.
func (s *MemoryStore) Update(_ context.Context, id string, mutate func(*sim.Session)) (sim.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return sim.Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(e.session)
	return e.session.Clone(), nil
}

// Close releases nothing; it exists to satisfy Store.
func (s *MemoryStore) Close() error { return nil }
