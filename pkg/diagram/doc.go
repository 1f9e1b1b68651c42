// Package diagram defines the canonical data model for Draftboard diagrams
// and the Manager that owns the single open diagram.
//
// # Model
//
// A Diagram holds Nodes and Edges plus Metadata (grid settings, timestamps).
// Nodes are shaped, positioned, sized, and rotatable; Edges connect nodes by
// id and may be pinned to specific connection sides. The JSON format is the
// persistence and wire format: import → mutate → export round-trips cleanly.
//
// Edges use `source` and `target` as canonical field names. For backward
// compatibility, `from`/`to` are accepted on input and converted.
//
// # Manager
//
// Manager provides O(1) node/edge lookups via index maps, CRUD operations
// with cascade edge deletion, snapshot-based undo/redo, named restore points,
// and change callbacks used by the sync broadcaster. All geometric invariants
// (minimum node size, rotation normalization) are enforced at this layer, so
// no mutation path can persist an invalid node.
package diagram
