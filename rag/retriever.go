package rag

import (
	"context"

	"github.com/nefac-ai/nefacrag/config"
	"github.com/nefac-ai/nefacrag/types"
)

// Retriever is the single-call retrieval abstraction handed to query
// transformers: any configured metadata filter is already bound.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]types.Chunk, error)
}

// VectorRetriever retrieves from a VectorStore under the fixed search
// parameters, dropping results below the similarity threshold.
type VectorRetriever struct {
	store  VectorStore
	cfg    config.RetrievalConfig
	filter Predicate
}

func NewVectorRetriever(store VectorStore, cfg config.RetrievalConfig) *VectorRetriever {
	return &VectorRetriever{store: store, cfg: cfg}
}

// WithFilter returns a copy of the retriever with the predicate bound.
// A nil predicate clears any existing filter.
func (r *VectorRetriever) WithFilter(filter Predicate) *VectorRetriever {
	clone := *r
	clone.filter = filter
	return &clone
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]types.Chunk, error) {
	scored, err := r.store.Search(ctx, query, r.cfg.TopK, r.filter)
	if err != nil {
		return nil, err
	}

	chunks := make([]types.Chunk, 0, len(scored))
	for _, sc := range scored {
		if sc.Score < r.cfg.ScoreThreshold {
			continue
		}
		chunks = append(chunks, sc.Chunk)
	}
	return chunks, nil
}
