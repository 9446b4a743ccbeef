package rag

import (
	"sort"

	"github.com/nefac-ai/nefacrag/types"
)

// ReciprocalRankFusion merges multiple ranked chunk lists into one list
// ordered by fused score. A chunk appearing at rank r in a list contributes
// 1/(r+k); contributions accumulate across lists, with chunk identity taken
// as exact structural equality of the serialized chunk. Ties keep discovery
// order. When every input list is empty, a single placeholder chunk is
// returned so the downstream prompt still has content to describe.
func ReciprocalRankFusion(lists [][]types.Chunk, k int) []types.Chunk {
	empty := true
	for _, list := range lists {
		if len(list) > 0 {
			empty = false
			break
		}
	}
	if empty {
		return []types.Chunk{{Content: noDocumentsPlaceholder}}
	}

	type fused struct {
		chunk types.Chunk
		score float64
		seen  int
	}
	byIdentity := make(map[string]*fused)
	order := make([]*fused, 0)

	for _, list := range lists {
		for rank, chunk := range list {
			id := chunk.Fingerprint()
			entry, ok := byIdentity[id]
			if !ok {
				entry = &fused{chunk: chunk, seen: len(order)}
				byIdentity[id] = entry
				order = append(order, entry)
			}
			entry.score += 1.0 / float64(rank+k)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].score > order[j].score
	})

	out := make([]types.Chunk, len(order))
	for i, entry := range order {
		out[i] = entry.chunk
	}
	return out
}

// UnionChunks merges the results of independent retrieval calls, keeping
// the first occurrence of each structurally identical chunk. Ordering
// follows list traversal order and is not otherwise meaningful.
func UnionChunks(lists [][]types.Chunk) []types.Chunk {
	seen := make(map[string]struct{})
	var out []types.Chunk
	for _, list := range lists {
		for _, chunk := range list {
			id := chunk.Fingerprint()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, chunk)
		}
	}
	return out
}
