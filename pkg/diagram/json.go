package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Diagram Serialization API
// =============================================================================

// Marshal converts a diagram to indented JSON bytes.
func Marshal(d *Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes JSON bytes to a Diagram, accepting legacy edge
// field names. All nodes are clamped to the geometric invariants on load.
func Unmarshal(data []byte) (*Diagram, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a diagram to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(d *Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(d, f)
}

// Write writes a diagram as JSON to an io.Writer.
func Write(d *Diagram, w io.Writer) error {
	return writeTo(d, w)
}

// ReadFile reads a JSON file and returns the decoded diagram.
func ReadFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON diagram from an io.Reader.
func Read(r io.Reader) (*Diagram, error) {
	return readFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(d *Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if d.ID == "" {
		d.ID = NewDiagramID()
	}
	if d.Nodes == nil {
		d.Nodes = []*Node{}
	}
	if d.Edges == nil {
		d.Edges = []*Edge{}
	}
	for _, n := range d.Nodes {
		n.Clamp()
	}
	return &d, nil
}
