package journal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/selection"
	"github.com/matzehuels/sectorlock/pkg/snap"
)

// Recorder turns controller notifications into journal events. Sink
// failures are logged and never reach the controller.
type Recorder struct {
	ctx       context.Context
	sink      Sink
	sessionID string
	logger    *log.Logger
	level     atomic.Int32
	now       func() time.Time
}

// Observer returns a Recorder writing events for sessionID to sink. The
// recorder starts at level 1; call SetLevel when the controller starts
// elsewhere.
func Observer(ctx context.Context, sink Sink, sessionID string, logger *log.Logger) *Recorder {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Recorder{ctx: ctx, sink: sink, sessionID: sessionID, logger: logger, now: time.Now}
	r.level.Store(int32(sector.Level1))
	return r
}

// SetLevel updates the level stamped on later events without recording.
func (r *Recorder) SetLevel(l sector.Level) { r.level.Store(int32(l)) }

// LevelChanged records a level change event.
func (r *Recorder) LevelChanged(l sector.Level) {
	r.SetLevel(l)
	r.record(Event{Kind: KindLevel})
}

func (r *Recorder) OnAdjusted(rect geometry.Rect) {
	r.record(Event{Kind: KindAdjusted, Rect: &rect})
}

func (r *Recorder) OnRejected(reason snap.Reason) {
	r.record(Event{Kind: KindRejected, Reason: string(reason)})
}

func (r *Recorder) record(ev Event) {
	ev.SessionID = r.sessionID
	ev.Level = sector.Level(r.level.Load())
	ev.At = r.now()
	if err := r.sink.Record(r.ctx, ev); err != nil {
		r.logger.Warn("journal write failed", "session", r.sessionID, "kind", ev.Kind, "err", err)
	}
}

var _ selection.Observer = (*Recorder)(nil)
