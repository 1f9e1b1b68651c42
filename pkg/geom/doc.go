// Package geom implements the analytic geometry behind edge rendering: shape
// boundary resolution for all six node shapes under arbitrary rotation,
// connection-side tangents, arrowhead primitives, and cubic curve routing.
//
// # Coordinate conventions
//
// Diagram space has x growing right and y growing down. All per-shape
// intersection math runs in a node's local frame: centered on the node,
// un-rotated. Callers' directions are rotated into local space by the
// negative node rotation, resolved against the shape outline, and the result
// is rotated back. Angles are radians except node rotation, which the data
// model stores in degrees.
//
// Everything in this package is pure: no state, no side effects, no errors.
// Degenerate inputs (zero-length directions, coincident nodes) resolve to
// the node center or a collapsed curve rather than failing.
package geom
