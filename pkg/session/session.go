// Package session stores the state of live widget sessions.
//
// The HTTP API keeps one selection controller per widget session. This
// package holds the serializable side of that: a [selection.Snapshot] plus
// creation and expiry times, behind a [Store] interface with two backends:
//   - [MemoryStore]: a map guarded by a RWMutex, for a single instance
//   - [RedisStore]: Redis-backed, for several instances sharing sessions
//
// Sessions expire after a TTL and are never restored into a new session.
//
// Every successful Set bumps the session's Version. Set is a
// compare-and-set: it fails with a VERSION_CONFLICT error when the stored
// version differs from the one the caller read, so an instance holding a
// stale copy cannot overwrite newer state.
//
// # Usage
//
//	store := session.NewMemoryStore()
//
//	sess := session.New(c.Snapshot(), session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/selection"
)

// DefaultTTL is how long an idle session lives.
const DefaultTTL = 30 * time.Minute

// Session is the stored state of one widget.
type Session struct {
	ID        string             `json:"id"`
	Version   uint64             `json:"version"`
	Snapshot  selection.Snapshot `json:"snapshot"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch replaces the snapshot and pushes the expiry ttl into the future.
func (s *Session) Touch(snap selection.Snapshot, ttl time.Duration) {
	s.Snapshot = snap
	s.ExpiresAt = time.Now().Add(ttl)
}

// conflict reports a Set whose version no longer matches the store.
func conflict(id string, have, want uint64) error {
	return errors.New(errors.ErrCodeConflict,
		"session %s was changed concurrently (stored version %d, expected %d)", id, have, want)
}

// NewID returns a random session ID.
func NewID() string {
	return uuid.NewString()
}

// New creates a session holding snap with a fresh ID.
func New(snap selection.Snapshot, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        NewID(),
		Snapshot:  snap,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session until its ExpiresAt, provided the stored
	// version (0 when absent or expired) equals s.Version. On success
	// s.Version is incremented to the stored version.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op when the backend
	// expires keys itself).
	Cleanup(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
