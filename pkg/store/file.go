package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
)

// FileStore persists diagrams as JSON files in a single directory, one file
// per diagram name.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-backed store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/draftboard/diagrams/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "draftboard", "diagrams")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create diagram dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Dir returns the directory diagrams are stored in.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) path(name string) (string, error) {
	if err := errors.ValidateDiagramFilename(name + ".json"); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, name+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, name string) (*diagram.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	d, err := diagram.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load diagram %s: %w", name, err)
	}
	return d, nil
}

func (s *FileStore) Save(ctx context.Context, name string, d *diagram.Diagram) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := diagram.WriteFile(d, path); err != nil {
		return fmt.Errorf("save diagram %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete diagram %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		d, err := diagram.ReadFile(filepath.Join(s.baseDir, e.Name()))
		if err != nil {
			continue // skip unreadable files rather than failing the listing
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

func (s *FileStore) Close(ctx context.Context) error { return nil }
