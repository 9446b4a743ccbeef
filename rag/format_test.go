package rag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nefac-ai/nefacrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFormatChunksLabels(t *testing.T) {
	chunk := makeChunk("FOI Guide", "How to file a records request", 3, types.SourcePDF)
	chunk.Metadata.Audience = []string{"citizen", "journalist"}

	got := FormatChunks([]types.Chunk{chunk})

	assert.Contains(t, got, "content:How to file a records request")
	assert.Contains(t, got, "title:FOI Guide")
	assert.Contains(t, got, "page:3")
	assert.Contains(t, got, "audience:citizen, journalist")
}

func TestFormatChunksEmpty(t *testing.T) {
	assert.Equal(t, "", FormatChunks(nil))
}

func TestFormatResultsDedupes(t *testing.T) {
	a := makeChunk("FOI Guide", "duplicate content", 3, types.SourcePDF)
	b := makeChunk("FOI Guide", "duplicate content", 3, types.SourcePDF)
	c := makeChunk("FOI Guide", "duplicate content", 8, types.SourcePDF)

	results := FormatResults([]types.Chunk{a, b, c})

	// a and b collapse; c survives on a different page.
	require.Len(t, results, 2)
	assert.Equal(t, "FOI Guide", results[0].Title)
}

func TestFormatResultsShape(t *testing.T) {
	video := makeChunk("Court Access Panel", "transcript text", 95, types.SourceYouTube)
	video.Metadata.Summary = "Panel on courtroom access."
	pdf := makeChunk("Records Handbook", "handbook text", 4, types.SourcePDF)

	results := FormatResults([]types.Chunk{video, pdf})
	require.Len(t, results, 2)

	require.NotNil(t, results[0].TimestampSeconds)
	assert.Equal(t, 95, *results[0].TimestampSeconds)
	require.NotNil(t, results[0].Summary)
	assert.Equal(t, "Panel on courtroom access.", *results[0].Summary)
	assert.Equal(t, "youtube", results[0].Type)

	// PDFs carry no timestamp; no precomputed summary means null.
	assert.Nil(t, results[1].TimestampSeconds)
	assert.Nil(t, results[1].Summary)
	assert.Equal(t, "https://nefac.org/Records Handbook", results[1].Link)
}

func TestFormatResultsNoDuplicateIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		chunks := make([]types.Chunk, n)
		for i := range chunks {
			title := fmt.Sprintf("t%d", rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("title%d", i)))
			page := rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("page%d", i))
			content := strings.Repeat("c", rapid.IntRange(1, 150).Draw(t, fmt.Sprintf("len%d", i)))
			chunks[i] = makeChunk(title, content, page, types.SourcePDF)
		}

		results := FormatResults(chunks)

		// Exactly one result per distinct (title, page, content-prefix-hash)
		// identity among the inputs.
		keys := make(map[string]bool)
		for _, c := range chunks {
			keys[c.DedupKey()] = true
		}
		if len(results) != len(keys) {
			t.Fatalf("got %d results for %d distinct identities", len(results), len(keys))
		}
	})
}
