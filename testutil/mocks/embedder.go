package mocks

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/nefac-ai/nefacrag/llm/embedding"
)

// MockEmbedder produces deterministic unit vectors derived from the input
// text: identical texts embed identically, different texts almost never
// collide. EmbedFunc can override the derivation per test.
type MockEmbedder struct {
	Dim       int
	EmbedFunc func(text string) []float64
	Err       error
}

func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 8
	}
	return &MockEmbedder{Dim: dim}
}

func (m *MockEmbedder) vector(text string) []float64 {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(text)
	}
	sum := sha256.Sum256([]byte(text))
	vec := make([]float64, m.Dim)
	for i := range vec {
		bits := binary.BigEndian.Uint32(sum[(i*4)%28:])
		vec[i] = float64(bits%1000)/500.0 - 1.0
	}
	return vec
}

func (m *MockEmbedder) Embed(ctx context.Context, req *embedding.Request) (*embedding.Response, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	resp := &embedding.Response{Provider: m.Name(), Model: req.Model}
	for i, input := range req.Input {
		resp.Embeddings = append(resp.Embeddings, embedding.Data{Index: i, Embedding: m.vector(input)})
	}
	return resp, nil
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.vector(query), nil
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float64, len(documents))
	for i, doc := range documents {
		out[i] = m.vector(doc)
	}
	return out, nil
}

func (m *MockEmbedder) Name() string { return "mock-embedder" }

func (m *MockEmbedder) Dimensions() int { return m.Dim }
