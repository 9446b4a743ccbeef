package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/nefac-ai/nefacrag/config"
	"github.com/nefac-ai/nefacrag/llm/embedding"
	"github.com/nefac-ai/nefacrag/types"
	"go.uber.org/zap"
)

// Predicate is a pure metadata filter. A nil Predicate means no filtering.
type Predicate func(types.Metadata) bool

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk types.Chunk
	Score float64
}

// VectorStore is the similarity-search capability the pipeline consumes.
// Results are ordered by descending similarity.
type VectorStore interface {
	// Add embeds and indexes the given chunks.
	Add(ctx context.Context, chunks []types.Chunk) error

	// Search returns the k most similar chunks, restricted to those whose
	// metadata passes filter when filter is non-nil.
	Search(ctx context.Context, query string, k int, filter Predicate) ([]ScoredChunk, error)

	// Len returns the number of indexed chunks.
	Len() int
}

// InMemoryVectorStoreConfig tunes result selection.
type InMemoryVectorStoreConfig struct {
	// MMRLambda enables maximal marginal relevance re-ranking: each result
	// is picked to maximize lambda*similarity(query) minus
	// (1-lambda)*similarity(closest already-picked result). Values in
	// (0, 1) enable the re-rank; 0 and 1 keep plain descending-similarity
	// ranking (1 is pure similarity anyway).
	MMRLambda float64

	// FetchK is the candidate pool size for the MMR re-rank.
	// Defaults to 4*k per search.
	FetchK int
}

// VectorStoreConfigFromRetrieval derives store settings from the shared
// retrieval parameters.
func VectorStoreConfigFromRetrieval(cfg config.RetrievalConfig) InMemoryVectorStoreConfig {
	return InMemoryVectorStoreConfig{MMRLambda: cfg.LambdaMult}
}

type indexedChunk struct {
	chunk  types.Chunk
	vector []float64
}

// InMemoryVectorStore keeps chunks and their embeddings in process memory
// and ranks by cosine similarity, optionally re-ranked with MMR. Ingestion
// is an offline step; query serving is read-mostly, so a RWMutex is
// sufficient.
type InMemoryVectorStore struct {
	mu       sync.RWMutex
	entries  []indexedChunk
	cfg      InMemoryVectorStoreConfig
	embedder embedding.Provider
	logger   *zap.Logger
}

func NewInMemoryVectorStore(config InMemoryVectorStoreConfig, embedder embedding.Provider, logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{
		cfg:      config,
		embedder: embedder,
		logger:   logger.With(zap.String("component", "vector_store")),
	}
}

func (s *InMemoryVectorStore) Add(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		c.Metadata.Normalize()
		s.entries = append(s.entries, indexedChunk{chunk: c, vector: vectors[i]})
	}
	s.logger.Info("indexed chunks", zap.Int("added", len(chunks)), zap.Int("total", len(s.entries)))
	return nil
}

func (s *InMemoryVectorStore) Search(ctx context.Context, query string, k int, filter Predicate) ([]ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type candidate struct {
		sc     ScoredChunk
		vector []float64
	}
	cands := make([]candidate, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter != nil && !filter(entry.chunk.Metadata) {
			continue
		}
		cands = append(cands, candidate{
			sc:     ScoredChunk{Chunk: entry.chunk, Score: cosineSimilarity(queryVec, entry.vector)},
			vector: entry.vector,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].sc.Score > cands[j].sc.Score
	})

	lambda := s.cfg.MMRLambda
	if lambda <= 0 || lambda >= 1 {
		if len(cands) > k {
			cands = cands[:k]
		}
		out := make([]ScoredChunk, len(cands))
		for i, c := range cands {
			out[i] = c.sc
		}
		return out, nil
	}

	fetchK := s.cfg.FetchK
	if fetchK <= 0 {
		fetchK = 4 * k
	}
	if fetchK < k {
		fetchK = k
	}
	if len(cands) > fetchK {
		cands = cands[:fetchK]
	}

	// Greedy MMR: each pick maximizes lambda*relevance minus
	// (1-lambda)*similarity to the closest already-picked chunk. Scores
	// keep the raw query similarity so threshold filtering stays on the
	// same scale.
	selected := make([]ScoredChunk, 0, k)
	picked := make([][]float64, 0, k)
	for len(selected) < k && len(cands) > 0 {
		best, bestScore := 0, math.Inf(-1)
		for i, c := range cands {
			redundancy := 0.0
			for _, v := range picked {
				if sim := cosineSimilarity(c.vector, v); sim > redundancy {
					redundancy = sim
				}
			}
			if score := lambda*c.sc.Score - (1-lambda)*redundancy; score > bestScore {
				best, bestScore = i, score
			}
		}
		selected = append(selected, cands[best].sc)
		picked = append(picked, cands[best].vector)
		cands = append(cands[:best], cands[best+1:]...)
	}
	return selected, nil
}

func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
