// Package snap validates a candidate selection against the active lock
// boundary and, when it overlaps the lock, searches for the nearest
// position on the unlocked ring.
//
// # Algorithm
//
// [Resolve] walks these steps:
//
//  1. No boundary: the candidate is accepted as is.
//  2. No overlap with the boundary: accepted as is.
//  3. Both sides longer than the ring thickness: the rectangle cannot fit
//     anywhere on the ring, so it is rejected with [ReasonOversized].
//  4. Otherwise up to four banded positions are generated, in this order:
//     top, bottom (if the height fits the ring) and left, right (if the
//     width fits). Each keeps the candidate's other coordinate, clamped to
//     the frame.
//  5. Positions that still overlap the boundary, or that would leave the
//     frame, are discarded. The one closest to the candidate's original
//     top-left corner wins; exact ties go to the earlier position in
//     generation order.
//  6. No surviving position: rejected with [ReasonNoValidBand].
//
// A rejected [Result] carries the last good rectangle so that callers can
// roll back without keeping their own copy.
package snap
