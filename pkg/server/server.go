// Package server exposes selection controllers over a JSON HTTP API.
//
// Each widget session owns one [selection.Controller] and one
// [repeat.Task] for press-and-hold. Controllers live in process memory;
// their snapshots are written to a [session.Store] after every mutation,
// so a session created on one instance can be resumed on another that
// shares the store. Notifications go to a [journal.Sink].
//
// # Routes
//
//	POST   /api/v1/sessions                  create a session
//	GET    /api/v1/sessions/{id}             session state
//	DELETE /api/v1/sessions/{id}             end a session
//	POST   /api/v1/sessions/{id}/selection   create a selection {width, height}
//	PUT    /api/v1/sessions/{id}/selection   resize the selection {width, height}
//	POST   /api/v1/sessions/{id}/move        nudge once {direction}
//	POST   /api/v1/sessions/{id}/hold        start repeating a nudge {direction}
//	POST   /api/v1/sessions/{id}/release     stop repeating
//	PUT    /api/v1/sessions/{id}/level       set the unlock level {level}
//	PUT    /api/v1/sessions/{id}/step        set the nudge step {step}
//	GET    /api/v1/sessions/{id}/frame.svg   render the frame
//	GET    /healthz
//
// Rejected placements are answered with 200 and "rejected": true; only
// malformed input and unknown sessions produce error responses.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sectorlock/pkg/cache"
	"github.com/matzehuels/sectorlock/pkg/httputil"
	"github.com/matzehuels/sectorlock/pkg/journal"
	"github.com/matzehuels/sectorlock/pkg/repeat"
	"github.com/matzehuels/sectorlock/pkg/selection"
	"github.com/matzehuels/sectorlock/pkg/session"
)

// Defaults for a new Server.
const (
	DefaultAddr          = "127.0.0.1:8080"
	DefaultCleanupPeriod = time.Minute
	frameCacheTTL        = time.Hour
)

// Option configures a Server.
type Option func(*Server)

func WithStore(st session.Store) Option    { return func(s *Server) { s.store = st } }
func WithJournal(sink journal.Sink) Option { return func(s *Server) { s.sink = sink } }
func WithCache(c cache.Cache) Option       { return func(s *Server) { s.cache = c } }
func WithKeyer(k cache.Keyer) Option       { return func(s *Server) { s.keyer = k } }
func WithLogger(l *log.Logger) Option      { return func(s *Server) { s.logger = l } }

// WithSessionTTL sets how long an idle session lives.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithHoldInterval sets the press-and-hold repeat interval.
func WithHoldInterval(d time.Duration) Option {
	return func(s *Server) { s.holdInterval = d }
}

// WithRateLimit caps API requests at rps per second with bursts of burst.
// Health checks are never limited.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) { s.rateLimit, s.rateBurst = rps, burst }
}

// WithControllerOptions adds options applied to every new controller.
func WithControllerOptions(opts ...selection.Option) Option {
	return func(s *Server) { s.ctrlOpts = append(s.ctrlOpts, opts...) }
}

// Server is the HTTP API.
type Server struct {
	store        session.Store
	sink         journal.Sink
	cache        cache.Cache
	keyer        cache.Keyer
	logger       *log.Logger
	ttl          time.Duration
	holdInterval time.Duration
	ctrlOpts     []selection.Option
	rateLimit    float64
	rateBurst    int

	// base outlives single requests; hold loops and journal writes use it.
	base   context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	live map[string]*liveSession

	router chi.Router
}

// New creates a server. Without options it keeps sessions in memory,
// discards journal events and renders every frame afresh.
func New(opts ...Option) *Server {
	s := &Server{
		ttl:          session.DefaultTTL,
		holdInterval: repeat.DefaultInterval,
		live:         make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
	}
	if s.sink == nil {
		s.sink = journal.NopSink{}
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.cache = cache.Instrument(s.cache, "frame")
	s.base, s.cancel = context.WithCancel(context.Background())
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httputil.Logger(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(httputil.RateLimit(s.rateLimit, s.rateBurst))
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/selection", s.handleCreateSelection)
			r.Put("/selection", s.handleResizeSelection)
			r.Post("/move", s.handleMove)
			r.Post("/hold", s.handleHold)
			r.Post("/release", s.handleRelease)
			r.Put("/level", s.handleLevel)
			r.Put("/step", s.handleStep)
			r.Get("/frame.svg", s.handleFrame)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled or the listener
// fails, then shuts down gracefully and closes the server. Expired sessions
// are swept every DefaultCleanupPeriod.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.sweep(gctx, DefaultCleanupPeriod)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(err, s.Close(closeCtx))
}

// Close stops every hold loop and releases the store and journal.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	for id, ls := range s.live {
		ls.hold.Stop()
		delete(s.live, id)
	}
	s.mu.Unlock()
	s.cancel()

	return errors.Join(s.store.Close(), s.sink.Close(ctx), s.cache.Close())
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.pruneExpired(); n > 0 {
				s.logger.Debug("expired sessions dropped", "count", n)
			}
			if err := s.store.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

// pruneExpired drops live sessions whose TTL has passed.
func (s *Server) pruneExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, ls := range s.live {
		if ls.expired() {
			ls.hold.Stop()
			delete(s.live, id)
			n++
		}
	}
	return n
}
