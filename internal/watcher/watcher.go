// Package watcher feeds documents dropped into a directory into the vector store.
package watcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Indexer receives document batches. *vectorstore.Store satisfies it.
type Indexer interface {
	Add(ctx context.Context, documents []string, metadata []map[string]string) error
}

// DefaultExtensions are the file types ingested when none are given.
var DefaultExtensions = []string{".txt", ".md"}

// Watcher ingests files from one directory on create and write.
// The store is append-only, so a file is re-ingested only when its content hash changes.
type Watcher struct {
	dir        string
	extensions []string
	index      Indexer
	fsw        *fsnotify.Watcher
	logger     *log.Logger

	mu     sync.Mutex
	hashes map[string][32]byte
}

// New creates a watcher for dir. It does not start watching until Run.
func New(dir string, index Indexer, extensions []string, logger *log.Logger) (*Watcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if logger == nil {
		logger = log.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		dir:        dir,
		extensions: extensions,
		index:      index,
		fsw:        fsw,
		logger:     logger,
		hashes:     make(map[string][32]byte),
	}, nil
}

// IngestExisting indexes every matching file already present in the directory.
func (w *Watcher) IngestExisting(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", w.dir, err)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || !w.matches(e.Name()) {
			continue
		}
		ok, err := w.ingest(ctx, filepath.Join(w.dir, e.Name()))
		if err != nil {
			w.logger.Printf("[WATCHER] Failed to ingest %s: %v", e.Name(), err)
			continue
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// Run watches the directory until ctx is cancelled. Ingest failures are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Printf("[WATCHER] Watching %s for %s files", w.dir, strings.Join(w.extensions, ", "))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.matches(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if _, err := w.ingest(ctx, event.Name); err != nil {
				w.logger.Printf("[WATCHER] Failed to ingest %s: %v", event.Name, err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("[WATCHER] Watch error: %v", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// ingest reports whether the file was added.
func (w *Watcher) ingest(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return false, nil
	}

	sum := sha256.Sum256(data)
	w.mu.Lock()
	if prev, ok := w.hashes[path]; ok && prev == sum {
		w.mu.Unlock()
		return false, nil
	}
	w.hashes[path] = sum
	w.mu.Unlock()

	meta := []map[string]string{{"source": filepath.Base(path), "path": path}}
	if err := w.index.Add(ctx, []string{text}, meta); err != nil {
		w.mu.Lock()
		delete(w.hashes, path)
		w.mu.Unlock()
		return false, err
	}
	w.logger.Printf("[WATCHER] Ingested %s (%d bytes)", filepath.Base(path), len(data))
	return true, nil
}

func (w *Watcher) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
