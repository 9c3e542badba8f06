package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sectorlock/pkg/cache"
	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/httputil"
	"github.com/matzehuels/sectorlock/pkg/render"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/selection"
	"github.com/matzehuels/sectorlock/pkg/session"
	"github.com/matzehuels/sectorlock/pkg/snap"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type createSessionRequest struct {
	Level  *int     `json:"level,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

type sizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type directionRequest struct {
	Direction string `json:"direction"`
}

type levelRequest struct {
	Level *int `json:"level"`
}

type stepRequest struct {
	Step *int `json:"step"`
}

// stateResponse is the public state of a session.
type stateResponse struct {
	ID           string             `json:"id"`
	Level        sector.Level       `json:"level"`
	Step         int                `json:"step"`
	Rect         geometry.Rect      `json:"rect"`
	LastGood     geometry.Rect      `json:"last_good"`
	HasSelection bool               `json:"has_selection"`
	Boundary     *geometry.Boundary `json:"boundary,omitempty"`
	LockLabel    string             `json:"lock_label,omitempty"`
	Holding      bool               `json:"holding"`
}

// opResponse is the reply to every mutating operation.
type opResponse struct {
	State    stateResponse `json:"state"`
	Adjusted bool          `json:"adjusted"`
	Rejected bool          `json:"rejected"`
	Reason   snap.Reason   `json:"reason,omitempty"`
	Notice   string        `json:"notice,omitempty"`
}

func stateOf(ls *liveSession) stateResponse {
	st := ls.ctrl.Snapshot()
	f := render.FrameFromSnapshot(st)
	return stateResponse{
		ID:           ls.id(),
		Level:        st.Level,
		Step:         st.Step,
		Rect:         st.Rect,
		LastGood:     st.LastGood,
		HasSelection: st.HasSelection,
		Boundary:     f.Boundary,
		LockLabel:    f.LockLabel(),
		Holding:      ls.hold.Active(),
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var opts []selection.Option
	if req.Level != nil {
		opts = append(opts, selection.WithLevel(sector.ClampLevel(*req.Level)))
	}
	if req.Width != nil || req.Height != nil {
		wd, ht := selection.DefaultSize, selection.DefaultSize
		if req.Width != nil {
			wd = *req.Width
		}
		if req.Height != nil {
			ht = *req.Height
		}
		if err := errors.ValidateDimensions(wd, ht); err != nil {
			s.fail(w, r, err)
			return
		}
		opts = append(opts, selection.WithInitialSize(wd, ht))
	}

	sess := session.New(selection.Snapshot{}, s.ttl)
	ls := s.attach(sess, opts...)
	if err := s.persist(r.Context(), ls); err != nil {
		s.drop(sess.ID)
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID, "level", int(ls.ctrl.UnlockLevel()))
	httputil.WriteJSON(w, http.StatusCreated, stateOf(ls))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stateOf(ls))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSessionID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.drop(id)
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSelection(w http.ResponseWriter, r *http.Request) {
	s.sized(w, r, (*selection.Controller).Create)
}

func (s *Server) handleResizeSelection(w http.ResponseWriter, r *http.Request) {
	s.sized(w, r, (*selection.Controller).Resize)
}

func (s *Server) sized(w http.ResponseWriter, r *http.Request, op func(*selection.Controller, float64, float64) selection.Outcome) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req sizeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := errors.ValidateDimensions(req.Width, req.Height); err != nil {
		s.fail(w, r, err)
		return
	}
	s.commit(w, r, ls, op(ls.ctrl, req.Width, req.Height))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	dir, err := decodeDirection(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.commit(w, r, ls, ls.ctrl.Move(dir))
}

func (s *Server) handleHold(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	dir, err := decodeDirection(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Start runs the first step before returning, so its outcome is ready.
	ls.hold.Start(s.base, func() { ls.note(ls.ctrl.Move(dir)) })
	out, _ := ls.lastOutcome()
	s.reply(w, ls, out)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	ls.hold.Stop()
	if err := s.persist(r.Context(), ls); err != nil {
		s.fail(w, r, err)
		return
	}
	out, _ := ls.lastOutcome()
	s.reply(w, ls, out)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req levelRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Level == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidLevel, "level is required"))
		return
	}

	if next := sector.ClampLevel(*req.Level); next != ls.ctrl.UnlockLevel() {
		ls.rec.LevelChanged(next)
	}
	s.commit(w, r, ls, ls.ctrl.SetUnlockLevel(*req.Level))
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}
	var req stepRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Step == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "step is required"))
		return
	}
	ls.ctrl.SetStep(*req.Step)
	if err := s.persist(r.Context(), ls); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stateOf(ls))
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.session(w, r)
	if !ok {
		return
	}

	size := render.DefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 8192 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "size must be an integer between 1 and 8192, got %q", v))
			return
		}
		size = n
	}

	_, invalid := ls.lastOutcome()
	svg, err := s.renderFrame(r.Context(), render.FrameOf(ls.ctrl), size, invalid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// renderFrame renders f through the frame cache.
func (s *Server) renderFrame(ctx context.Context, f render.Frame, size int, invalid bool) ([]byte, error) {
	state, err := cache.HashJSON(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash frame")
	}
	key := s.keyer.FrameKey(state, cache.FrameKeyOpts{Format: "svg", Size: size, Invalid: invalid})

	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	opts := []render.SVGOption{render.WithSize(size)}
	if invalid {
		opts = append(opts, render.WithInvalid())
	}
	svg := render.RenderSVG(f, opts...)
	if err := s.cache.Set(ctx, key, svg, frameCacheTTL); err != nil {
		s.logger.Warn("frame cache write failed", "err", err)
	}
	return svg, nil
}

// =============================================================================
// Helpers
// =============================================================================

// session resolves the {id} URL parameter, writing the error response
// itself when the session cannot be used.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	ls, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return ls, true
}

// commit persists the state after an operation and replies with out.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, ls *liveSession, out selection.Outcome) {
	ls.note(out)
	if err := s.persist(r.Context(), ls); err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, ls, out)
}

func (s *Server) reply(w http.ResponseWriter, ls *liveSession, out selection.Outcome) {
	httputil.WriteJSON(w, http.StatusOK, opResponse{
		State:    stateOf(ls),
		Adjusted: out.Adjusted,
		Rejected: out.Rejected,
		Reason:   out.Reason,
		Notice:   out.Notice,
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := httputil.StatusFor(err); status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	httputil.WriteError(w, err)
}

func decodeDirection(r *http.Request) (selection.Direction, error) {
	var req directionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return selection.DirNone, err
	}
	return selection.ParseDirection(req.Direction)
}
