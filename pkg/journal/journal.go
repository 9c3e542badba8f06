// Package journal records placement notifications of widget sessions.
//
// Every adjustment, rejection and level change of a session becomes an
// [Event] written to a [Sink]:
//   - [LogSink]: structured log lines via charmbracelet/log
//   - [MongoSink]: one document per event in a MongoDB collection
//   - [NopSink]: discards everything
//
// [Observer] adapts a sink into a selection observer so a controller feeds
// the journal directly:
//
//	rec := journal.Observer(ctx, sink, sess.ID, logger)
//	c := selection.New(selection.WithObserver(rec))
package journal

import (
	"context"
	"time"

	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
)

// Kind classifies a journal event.
type Kind string

const (
	KindAdjusted Kind = "adjusted"
	KindRejected Kind = "rejected"
	KindLevel    Kind = "level"
)

// Event is one journal entry.
type Event struct {
	SessionID string         `json:"session_id" bson:"session_id"`
	Kind      Kind           `json:"kind" bson:"kind"`
	Reason    string         `json:"reason,omitempty" bson:"reason,omitempty"`
	Rect      *geometry.Rect `json:"rect,omitempty" bson:"rect,omitempty"`
	Level     sector.Level   `json:"level" bson:"level"`
	At        time.Time      `json:"at" bson:"at"`
}

// Sink persists events.
type Sink interface {
	Record(ctx context.Context, ev Event) error
	Close(ctx context.Context) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) error { return nil }
func (NopSink) Close(context.Context) error         { return nil }
