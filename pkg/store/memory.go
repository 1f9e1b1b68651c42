package store

import (
	"context"
	"sort"
	"sync"

	"draftboard/pkg/diagram"
)

// MemoryStore keeps diagrams in memory. Intended for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: map[string][]byte{}}
}

func (s *MemoryStore) Load(ctx context.Context, name string) (*diagram.Diagram, error) {
	s.mu.RLock()
	data, ok := s.diagrams[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return diagram.Unmarshal(data)
}

func (s *MemoryStore) Save(ctx context.Context, name string, d *diagram.Diagram) error {
	data, err := diagram.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.diagrams[name] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diagrams[name]; !ok {
		return ErrNotFound
	}
	delete(s.diagrams, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Info, 0, len(s.diagrams))
	for name, data := range s.diagrams {
		d, err := diagram.Unmarshal(data)
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:       name,
			Nodes:      len(d.Nodes),
			Edges:      len(d.Edges),
			ModifiedAt: d.Metadata.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }
