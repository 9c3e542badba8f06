// Package selection owns the placement state of one widget: the current
// selection rectangle, its last accepted position, the unlock level and the
// nudge step.
//
// # Controller
//
// A [Controller] is the single owner of that state. Every mutation builds a
// candidate rectangle, passes it through [snap.Resolve] against the active
// lock boundary and commits the result:
//
//	c := selection.New(selection.WithLevel(sector.Level1))
//	out := c.Move(selection.DirE)
//	if out.Rejected {
//	    fmt.Println(out.Notice)
//	}
//
// The selection either lands on a valid position (possibly snapped onto the
// outer ring) or is rolled back to the last accepted rectangle. There is no
// persistent invalid state.
//
// # Units
//
// Sizes passed to [Controller.Create] and [Controller.Resize] are design
// units: the frame is Base units per side (1000 by default). Rectangles and
// nudges use the normalized 0–100 scale of package geometry.
//
// # Concurrency
//
// All methods are safe for concurrent use. Calls are serialized on an
// internal mutex, so a rejected step is always rolled back before the next
// step reads the last accepted rectangle. Observers run while that mutex is
// held and must not call back into the controller.
package selection
