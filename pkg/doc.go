// Package pkg provides the core libraries for Draftboard diagram editing.
//
// # Overview
//
// Draftboard edits node-and-edge diagrams: shaped, rotatable nodes connected
// by curved arrows, with undo history, live websocket sync, and static
// export. The pkg directory is organized into three main areas:
//
//  1. Domain - the diagram model, geometry, layout, and interaction logic
//  2. Services - export rendering, caching, and persistence backends
//  3. Ambient - configuration, errors, logging hooks, and build metadata
//
// # Architecture
//
// The typical data flow through Draftboard:
//
//	Pointer / HTTP / CLI input
//	         ↓
//	    [interaction] (gesture state machine)
//	         ↓
//	    [diagram] (model + manager with undo history)
//	         ↓
//	    [geom] + [layout] (boundary, routing, arrangement)
//	         ↓
//	    [export] (SVG / PNG / DOT / JSON output)
//
// # Main Packages
//
// ## Domain
//
// [diagram] - The document model: nodes (six shapes, rotation, styling),
// edges (sides, arrowheads, line styles), and the Manager that applies
// mutations with undo/redo history, snapshots, search, and change
// notification.
//
// [geom] - Pure geometry: shape boundary resolution under rotation, edge
// anchor selection, cubic curve routing, and arrowhead primitives.
//
// [layout] - Automatic arrangement: grid, tree, force, and pack layouts,
// plus alignment, distribution, and grid snapping.
//
// [interaction] - The pointer-driven editing state machine that turns hit
// results and pointer positions into drags, resizes, rotations, box
// selections, and connections.
//
// ## Services
//
// [export] - Static export renderers (SVG natively, PNG via rasterization,
// DOT via Graphviz) behind a content-addressed render cache.
//
// [cache] - Byte-oriented cache with file and null backends, keyed by
// content hash so unchanged diagrams never render twice.
//
// [store] - Named-diagram persistence with file, memory, Redis, and MongoDB
// backends.
//
// ## Ambient
//
// [config] - TOML configuration layered over built-in defaults.
//
// [errors] - Coded errors with user-facing messages and HTTP status mapping.
//
// [observability] - Optional hooks for render, cache, and sync metrics.
//
// [httputil] - Retry with exponential backoff for HTTP clients.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/geom/...     # Specific package
//
// [diagram]: https://pkg.go.dev/draftboard/pkg/diagram
// [geom]: https://pkg.go.dev/draftboard/pkg/geom
// [layout]: https://pkg.go.dev/draftboard/pkg/layout
// [interaction]: https://pkg.go.dev/draftboard/pkg/interaction
// [export]: https://pkg.go.dev/draftboard/pkg/export
// [cache]: https://pkg.go.dev/draftboard/pkg/cache
// [store]: https://pkg.go.dev/draftboard/pkg/store
// [config]: https://pkg.go.dev/draftboard/pkg/config
// [errors]: https://pkg.go.dev/draftboard/pkg/errors
// [observability]: https://pkg.go.dev/draftboard/pkg/observability
// [httputil]: https://pkg.go.dev/draftboard/pkg/httputil
// [buildinfo]: https://pkg.go.dev/draftboard/pkg/buildinfo
package pkg
