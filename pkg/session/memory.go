package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/sectorlock/pkg/observability"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	start := time.Now()
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok && sess.IsExpired() {
		s.mu.Lock()
		// Re-check: a concurrent Set may have refreshed it.
		if cur, still := s.sessions[id]; still && cur.IsExpired() {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
		ok = false
	}
	observability.Store().OnStoreGet(ctx, "memory", ok, time.Since(start), nil)

	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	start := time.Now()
	s.mu.Lock()
	var have uint64
	if cur, ok := s.sessions[sess.ID]; ok && !cur.IsExpired() {
		have = cur.Version
	}
	var err error
	if have != sess.Version {
		err = conflict(sess.ID, have, sess.Version)
	} else {
		sess.Version++
		s.sessions[sess.ID] = *sess
	}
	s.mu.Unlock()
	observability.Store().OnStoreSet(ctx, "memory", 0, time.Since(start), err)
	return err
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
