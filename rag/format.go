package rag

import (
	"fmt"
	"strings"

	"github.com/nefac-ai/nefacrag/types"
)

// FormatChunks renders retrieved chunks into the labeled context block fed
// to the answer model. Blocks are separated by a blank line.
func FormatChunks(chunks []types.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(chunks))
	for _, c := range chunks {
		m := c.Metadata
		blocks = append(blocks, fmt.Sprintf(
			"content:%s\nsource:%s\npage:%d\ntitle:%s\nnefac_category:%s\nresource_type:%s\naudience:%s\n",
			c.Content, m.Source, m.Page, m.Title,
			strings.Join(m.NefacCategory, ", "),
			strings.Join(m.ResourceType, ", "),
			strings.Join(m.Audience, ", "),
		))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatResults maps chunks to the external result shape, deduplicating by
// (title, page-or-timestamp, content-prefix-hash) and preserving first-seen
// order. Later duplicates are dropped silently.
func FormatResults(chunks []types.Chunk) []types.SearchResult {
	seen := make(map[string]struct{}, len(chunks))
	results := make([]types.SearchResult, 0, len(chunks))

	for _, c := range chunks {
		key := c.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		result := types.SearchResult{
			Title: c.Metadata.Title,
			Link:  c.Metadata.Source,
			Type:  string(c.Metadata.Type),
		}
		if c.Metadata.Type == types.SourceYouTube {
			ts := c.Metadata.Page
			result.TimestampSeconds = &ts
		}
		if c.Metadata.Summary != "" {
			summary := c.Metadata.Summary
			result.Summary = &summary
		}
		results = append(results, result)
	}
	return results
}
