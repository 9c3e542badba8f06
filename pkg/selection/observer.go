package selection

import (
	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/snap"
)

// Observer receives placement notifications after a change is committed.
type Observer interface {
	// OnAdjusted is called when a candidate was snapped onto the ring.
	OnAdjusted(r geometry.Rect)

	// OnRejected is called when a candidate was refused and the selection
	// rolled back.
	OnRejected(reason snap.Reason)
}

// ObserverFunc adapts a function to Observer. The function receives an
// Outcome carrying only the notification fields.
type ObserverFunc func(Outcome)

func (f ObserverFunc) OnAdjusted(r geometry.Rect) {
	f(Outcome{Rect: r, Adjusted: true, Notice: snap.NoticeAdjusted})
}

func (f ObserverFunc) OnRejected(reason snap.Reason) {
	f(Outcome{Rejected: true, Reason: reason, Notice: reason.Message()})
}

// MultiObserver fans notifications out to every observer in order.
type MultiObserver []Observer

func (m MultiObserver) OnAdjusted(r geometry.Rect) {
	for _, o := range m {
		o.OnAdjusted(r)
	}
}

func (m MultiObserver) OnRejected(reason snap.Reason) {
	for _, o := range m {
		o.OnRejected(reason)
	}
}

type noopObserver struct{}

func (noopObserver) OnAdjusted(geometry.Rect) {}
func (noopObserver) OnRejected(snap.Reason)   {}
