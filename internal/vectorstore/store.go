// Package vectorstore provides a small in-memory semantic index with flat-file snapshots.
package vectorstore

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/skill-recommender/internal/embedding"
)

// Result is one search hit.
type Result struct {
	Document string            `json:"content"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// Stats describes the store contents.
type Stats struct {
	TotalDocuments     int `json:"total_documents"`
	EmbeddingDimension int `json:"embedding_dimension"`
}

// Store keeps embeddings, documents and metadata in three parallel slices.
// Index position is the join key; the slices only grow, except on Clear.
type Store struct {
	mu         sync.RWMutex
	embedder   embedding.Provider
	dir        string
	embeddings [][]float32
	documents  []string
	metadata   []map[string]string
	logger     *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recovery and persistence messages.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates a store persisted under dir and loads any existing snapshot.
// An empty dir keeps the store in memory only. A missing, partial or corrupt
// snapshot is logged and the store starts empty.
func Open(dir string, embedder embedding.Provider, opts ...Option) *Store {
	s := &Store{
		embedder: embedder,
		dir:      dir,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir == "" {
		return s
	}

	snap, err := loadSnapshot(dir)
	if err != nil {
		s.logger.Printf("[VECTORSTORE] Failed to load snapshot from %s, starting empty: %v", dir, err)
		return s
	}
	if snap != nil {
		s.embeddings = snap.embeddings
		s.documents = snap.documents
		s.metadata = snap.metadata
		s.logger.Printf("[VECTORSTORE] Loaded %d documents from %s", len(s.documents), dir)
	}
	return s
}

// Add embeds documents and appends them. When len(metadata) != len(documents)
// metadata is generated as {"source": "doc_<i>"}. The in-memory state is
// updated before the snapshot is written, so a *StorageError still leaves the
// documents searchable.
func (s *Store) Add(ctx context.Context, documents []string, metadata []map[string]string) error {
	if len(documents) == 0 {
		return nil
	}
	if len(metadata) != len(documents) {
		metadata = make([]map[string]string, len(documents))
		for i := range documents {
			metadata[i] = map[string]string{"source": fmt.Sprintf("doc_%d", i)}
		}
	}

	vectors, err := s.embedder.EmbedBatch(ctx, documents)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(documents) {
		return &embedding.Error{Message: fmt.Sprintf("got %d embeddings for %d documents", len(vectors), len(documents))}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range documents {
		s.embeddings = append(s.embeddings, vectors[i])
		s.documents = append(s.documents, doc)
		s.metadata = append(s.metadata, copyMetadata(metadata[i]))
	}

	if s.dir == "" {
		return nil
	}
	if err := writeSnapshot(s.dir, s.embeddings, s.documents, s.metadata); err != nil {
		s.logger.Printf("[VECTORSTORE] Snapshot write failed: %v", err)
		return err
	}
	return nil
}

// Search returns at most k documents with cosine similarity above zero,
// ordered by descending similarity. Equal scores keep insertion order.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	s.mu.RLock()
	empty := len(s.documents) == 0
	s.mu.RUnlock()
	if empty {
		return nil, nil
	}

	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		index int
		score float64
	}

	hits := make([]scored, 0, len(s.embeddings))
	for i, emb := range s.embeddings {
		hits = append(hits, scored{index: i, score: cosineSimilarity(qv, emb)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	results := make([]Result, 0, k)
	for _, h := range hits {
		if h.score <= 0 {
			break
		}
		results = append(results, Result{
			Document: s.documents[h.index],
			Score:    h.score,
			Metadata: copyMetadata(s.metadata[h.index]),
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// SearchSkills searches with a "skills: a, b" query.
func (s *Store) SearchSkills(ctx context.Context, skills []string, k int) ([]Result, error) {
	return s.Search(ctx, "skills: "+strings.Join(skills, ", "), k)
}

// SearchRoleSkills searches with a "<role> role with skills: a, b" query.
func (s *Store) SearchRoleSkills(ctx context.Context, role string, skills []string, k int) ([]Result, error) {
	return s.Search(ctx, fmt.Sprintf("%s role with skills: %s", role, strings.Join(skills, ", ")), k)
}

// Clear empties the store and deletes the snapshot files. Clearing an empty store succeeds.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.embeddings = nil
	s.documents = nil
	s.metadata = nil

	if s.dir == "" {
		return nil
	}
	return removeSnapshot(s.dir)
}

// Stats reports document count and embedding dimension.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{TotalDocuments: len(s.documents)}
	if len(s.embeddings) > 0 {
		st.EmbeddingDimension = len(s.embeddings[0])
	}
	return st
}

// cosineSimilarity returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
