package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/orgchart/pkg/chart"
)

// ErrTrailingData is returned when a snapshot document is followed by
// anything other than whitespace.
var ErrTrailingData = errors.New("trailing data after snapshot")

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// Marshal converts a snapshot to JSON bytes.
func Marshal(s chart.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a snapshot.
// Returns an error for malformed JSON or invalid nodes.
func Unmarshal(data []byte) (chart.Snapshot, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(s chart.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(s, f)
}

// Write writes a snapshot as JSON to an io.Writer.
func Write(s chart.Snapshot, w io.Writer) error {
	return writeTo(s, w)
}

// ReadFile reads a JSON file and returns the decoded snapshot.
func ReadFile(path string) (chart.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return chart.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON snapshot from an io.Reader.
func Read(r io.Reader) (chart.Snapshot, error) {
	return readFrom(r)
}

// UnmarshalGraph deserializes JSON bytes to a Graph without validating it.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(s chart.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromSnapshot(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (chart.Snapshot, error) {
	var data Graph
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return chart.Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return chart.Snapshot{}, fmt.Errorf("decode: %w", ErrTrailingData)
	}
	return ToSnapshot(data)
}
