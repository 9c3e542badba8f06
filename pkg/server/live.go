package server

import (
	"context"
	"sync"

	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/journal"
	"github.com/matzehuels/sectorlock/pkg/repeat"
	"github.com/matzehuels/sectorlock/pkg/selection"
	"github.com/matzehuels/sectorlock/pkg/session"
)

// liveSession is a session with its controller attached.
type liveSession struct {
	ctrl *selection.Controller
	rec  *journal.Recorder
	hold *repeat.Task

	// writeMu orders store writes and refreshes, so versions are written
	// in sequence and a refresh never lands between a snapshot and its write.
	writeMu sync.Mutex

	mu      sync.Mutex
	sess    session.Session // last version written or read by this instance
	last    selection.Outcome
	invalid bool
}

func (ls *liveSession) id() string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.sess.ID
}

func (ls *liveSession) expired() bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.sess.IsExpired()
}

// note remembers the outcome of the latest operation.
func (ls *liveSession) note(out selection.Outcome) {
	ls.mu.Lock()
	ls.last = out
	ls.invalid = out.Rejected
	ls.mu.Unlock()
}

func (ls *liveSession) lastOutcome() (selection.Outcome, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.last, ls.invalid
}

// refresh adopts stored when another instance wrote a newer version.
func (ls *liveSession) refresh(stored *session.Session) bool {
	ls.writeMu.Lock()
	defer ls.writeMu.Unlock()
	return ls.adopt(stored, false)
}

// adopt restores the controller from stored. Unless force is set, stored
// must be newer than the version held. The caller holds ls.writeMu.
func (ls *liveSession) adopt(stored *session.Session, force bool) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if !force && stored.Version <= ls.sess.Version {
		return false
	}
	ls.ctrl.Restore(stored.Snapshot)
	ls.rec.SetLevel(ls.ctrl.UnlockLevel())
	ls.sess = *stored
	return true
}

// attach builds the controller for sess and registers it. Options from the
// server come first so the snapshot wins.
func (s *Server) attach(sess *session.Session, extra ...selection.Option) *liveSession {
	rec := journal.Observer(s.base, s.sink, sess.ID, s.logger)

	opts := append([]selection.Option{}, s.ctrlOpts...)
	opts = append(opts, extra...)
	opts = append(opts, selection.WithObserver(rec), selection.WithContext(s.base))

	var ctrl *selection.Controller
	if sess.Snapshot.Base > 0 {
		ctrl = selection.FromSnapshot(sess.Snapshot, opts...)
	} else {
		ctrl = selection.New(opts...)
	}
	rec.SetLevel(ctrl.UnlockLevel())

	ls := &liveSession{ctrl: ctrl, rec: rec, hold: repeat.New(s.holdInterval), sess: *sess}
	s.mu.Lock()
	cur, ok := s.live[sess.ID]
	if !ok {
		s.live[sess.ID] = ls
	}
	s.mu.Unlock()
	if ok {
		cur.refresh(sess)
		return cur
	}
	return ls
}

// lookup returns the live session for id, resuming it from the store when
// another instance created it and catching up when another instance wrote
// a newer version.
func (s *Server) lookup(ctx context.Context, id string) (*liveSession, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		s.drop(id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found or expired", id)
	}

	s.mu.Lock()
	ls, ok := s.live[id]
	s.mu.Unlock()
	if !ok {
		return s.attach(sess), nil
	}
	if ls.refresh(sess) {
		s.logger.Debug("session refreshed from store", "id", id, "version", sess.Version)
	}
	return ls, nil
}

// persist writes the controller state to the store and extends the TTL.
// When another instance wrote first, the controller is reset to the stored
// state and the VERSION_CONFLICT error is returned, so the client can retry
// against current state.
func (s *Server) persist(ctx context.Context, ls *liveSession) error {
	ls.writeMu.Lock()
	defer ls.writeMu.Unlock()

	ls.mu.Lock()
	next := ls.sess
	ls.mu.Unlock()
	next.Touch(ls.ctrl.Snapshot(), s.ttl)

	err := s.store.Set(ctx, &next)
	if errors.Is(err, errors.ErrCodeConflict) {
		s.logger.Debug("session write conflict", "id", next.ID, "err", err)
		stored, gerr := s.store.Get(ctx, next.ID)
		switch {
		case gerr != nil:
			return gerr
		case stored == nil:
			s.drop(next.ID)
		default:
			ls.adopt(stored, true)
		}
		return err
	}
	if err != nil {
		return err
	}

	ls.mu.Lock()
	ls.sess = next
	ls.mu.Unlock()
	return nil
}

// drop stops and forgets a live session.
func (s *Server) drop(id string) {
	s.mu.Lock()
	ls, ok := s.live[id]
	delete(s.live, id)
	s.mu.Unlock()
	if ok {
		ls.hold.Stop()
	}
}
