package rag

// Shared test fixtures for the rag package.

import (
	"context"
	"sync"

	"github.com/nefac-ai/nefacrag/types"
)

// stubRetriever records queries and serves canned chunks, keyed by query
// when a specific entry exists, else the default set.
type stubRetriever struct {
	mu       sync.Mutex
	queries  []string
	byQuery  map[string][]types.Chunk
	defaults []types.Chunk
	err      error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]types.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if chunks, ok := s.byQuery[query]; ok {
		return chunks, nil
	}
	return s.defaults, nil
}

func (s *stubRetriever) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

// stubVectorStore serves fixed chunks for every search, scored 1.0 so
// they always clear the similarity threshold.
type stubVectorStore struct {
	mu      sync.Mutex
	chunks  []types.Chunk
	queries []string
	err     error
}

func (s *stubVectorStore) Add(ctx context.Context, chunks []types.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *stubVectorStore) Search(ctx context.Context, query string, k int, filter Predicate) ([]ScoredChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	var out []ScoredChunk
	for _, c := range s.chunks {
		if filter != nil && !filter(c.Metadata) {
			continue
		}
		out = append(out, ScoredChunk{Chunk: c, Score: 1.0})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (s *stubVectorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

func (s *stubVectorStore) searchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func makeChunk(title, content string, page int, sourceType types.SourceType) types.Chunk {
	c := types.Chunk{
		Content: content,
		Metadata: types.Metadata{
			Title:  title,
			Source: "https://nefac.org/" + title,
			Type:   sourceType,
			Page:   page,
		},
	}
	c.Metadata.Normalize()
	return c
}
