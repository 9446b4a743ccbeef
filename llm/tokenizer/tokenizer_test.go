package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEstimatorCountTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 100), 25},
	}
	for _, tt := range tests {
		got, err := Estimator{}.CountTokens(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "text %q", tt.text)
	}
}

func TestEstimatorMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		suffix := rapid.String().Draw(t, "suffix")

		short, err := Estimator{}.CountTokens(text)
		require.NoError(t, err)
		long, err := Estimator{}.CountTokens(text + suffix)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, long, short)
	})
}

func TestNewTiktokenEncodingSelection(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o", "o200k_base"},
		{"gpt-4o-mini", "o200k_base"},
		{"gpt-4o-2024-08-06", "o200k_base"},
		{"gpt-3.5-turbo", "cl100k_base"},
		{"gpt-3.5-turbo-0125", "cl100k_base"},
		{"text-embedding-3-small", "cl100k_base"},
		{"some-unknown-model", "cl100k_base"},
	}
	for _, tt := range tests {
		tok := NewTiktoken(tt.model)
		assert.Equal(t, "tiktoken["+tt.want+"]", tok.Name(), "model %s", tt.model)
	}
}
