package vectorstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Snapshot file names inside the store directory.
const (
	embeddingsFile = "embeddings.json"
	documentsFile  = "documents.json"
	metadataFile   = "metadata.json"
)

// StorageError reports a snapshot read or write failure.
type StorageError struct {
	Op    string
	Path  string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("vector store %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

type snapshot struct {
	embeddings [][]float32
	documents  []string
	metadata   []map[string]string
}

// loadSnapshot returns nil, nil when no snapshot files exist.
func loadSnapshot(dir string) (*snapshot, error) {
	paths := snapshotPaths(dir)

	present := 0
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(paths) {
		return nil, &StorageError{Op: "load", Path: dir, Cause: errors.New("incomplete snapshot")}
	}

	var snap snapshot
	if err := readJSON(paths[0], &snap.embeddings); err != nil {
		return nil, err
	}
	if err := readJSON(paths[1], &snap.documents); err != nil {
		return nil, err
	}
	if err := readJSON(paths[2], &snap.metadata); err != nil {
		return nil, err
	}

	if len(snap.embeddings) != len(snap.documents) || len(snap.documents) != len(snap.metadata) {
		return nil, &StorageError{
			Op:    "load",
			Path:  dir,
			Cause: fmt.Errorf("length mismatch: %d embeddings, %d documents, %d metadata", len(snap.embeddings), len(snap.documents), len(snap.metadata)),
		}
	}
	return &snap, nil
}

// writeSnapshot overwrites all three files with the full current state.
func writeSnapshot(dir string, embeddings [][]float32, documents []string, metadata []map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "create", Path: dir, Cause: err}
	}

	paths := snapshotPaths(dir)
	values := []any{embeddings, documents, metadata}
	for i, p := range paths {
		if err := writeJSON(p, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func removeSnapshot(dir string) error {
	for _, p := range snapshotPaths(dir) {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &StorageError{Op: "remove", Path: p, Cause: err}
		}
	}
	return nil
}

func snapshotPaths(dir string) []string {
	return []string{
		filepath.Join(dir, embeddingsFile),
		filepath.Join(dir, documentsFile),
		filepath.Join(dir, metadataFile),
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &StorageError{Op: "read", Path: path, Cause: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &StorageError{Op: "decode", Path: path, Cause: err}
	}
	return nil
}

// writeJSON writes through a temp file and renames it into place.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: "encode", Path: path, Cause: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: path, Cause: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &StorageError{Op: "write", Path: path, Cause: err}
	}
	return nil
}
