// Package store provides named diagram persistence with pluggable backends:
//   - memory: in-memory storage for development/testing
//   - file: a directory of JSON files, the default for local editing
//   - redis: Redis-backed storage for shared deployments
//   - mongo: MongoDB-backed storage for larger installations
//
// # Usage
//
// Create a store:
//
//	// Local editing
//	st, err := store.NewFileStore("")  // uses ~/.config/draftboard/diagrams/
//
//	// Shared deployment
//	st, err := store.NewRedisStore(ctx, store.RedisConfig{Addr: "localhost:6379"})
//
// Save and load by name:
//
//	if err := st.Save(ctx, "architecture", d); err != nil { ... }
//	d, err := st.Load(ctx, "architecture")
//	if errors.Is(err, store.ErrNotFound) { ... }
package store

import (
	"context"
	"errors"
	"time"

	"draftboard/pkg/diagram"
)

// ErrNotFound is returned when no diagram exists under the given name.
var ErrNotFound = errors.New("diagram not found")

// Info describes one stored diagram.
type Info struct {
	Name       string    `json:"name"`
	Nodes      int       `json:"nodes"`
	Edges      int       `json:"edges"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Store is the interface all diagram storage backends implement. Names are
// logical identifiers, not paths; backends map them to files, keys, or
// documents themselves.
type Store interface {
	// Load retrieves a diagram by name. Returns ErrNotFound when absent.
	Load(ctx context.Context, name string) (*diagram.Diagram, error)

	// Save stores a diagram under a name, overwriting any previous version.
	Save(ctx context.Context, name string, d *diagram.Diagram) error

	// Delete removes a stored diagram. Returns ErrNotFound when absent.
	Delete(ctx context.Context, name string) error

	// List enumerates stored diagrams, sorted by name.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
