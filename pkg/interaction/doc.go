// Package interaction implements the pointer-driven editing state machine:
// dragging, resizing, rotating, box-selecting, and the two-step connection
// gesture.
//
// # Transient vs committed state
//
// During a gesture the Controller keeps an ephemeral per-node overlay that
// rendering consults first; the authoritative node data stays untouched
// until the gesture ends. On pointer-up the Controller emits exactly one
// committed mutation per changed attribute through the Mutator, or nothing
// when the gesture was a no-op. Cancelling a gesture just discards the
// overlay.
//
// # Mode exclusivity
//
// Exactly one of {idle, drag, resize, rotate, box-select} is active at a
// time, and connection mode excludes all of them. Selection holds either a
// node set or a single edge, never both. These exclusions are enforced by a
// single tagged mode value rather than independent flags.
//
// The Controller is single-threaded by design: all methods are expected to
// run on the UI event loop. Commit calls go out synchronously; their
// effects come back later through SyncNodes.
package interaction
