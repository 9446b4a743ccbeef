package rag

import (
	"testing"

	"github.com/nefac-ai/nefacrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestBuildFilterNoConstraints(t *testing.T) {
	assert.Nil(t, BuildFilter(FilterOptions{}))
	assert.True(t, FilterOptions{}.Empty())
}

func TestBuildFilterAudience(t *testing.T) {
	pred := BuildFilter(FilterOptions{Audience: strptr("citizen")})
	require.NotNil(t, pred)

	lawyerOnly := types.Metadata{Audience: []string{"lawyer"}}
	both := types.Metadata{Audience: []string{"citizen", "lawyer"}}

	assert.False(t, pred(lawyerOnly))
	assert.True(t, pred(both))
}

func TestBuildFilterAllConstraintsANDed(t *testing.T) {
	pred := BuildFilter(FilterOptions{
		Audience:     strptr("journalist"),
		Category:     strptr("foi"),
		ResourceType: strptr("guide"),
	})

	matching := types.Metadata{
		Audience:      []string{"journalist", "citizen"},
		NefacCategory: []string{"foi"},
		ResourceType:  []string{"guide", "video"},
	}
	assert.True(t, pred(matching))

	missingCategory := matching
	missingCategory.NefacCategory = []string{"first-amendment"}
	assert.False(t, pred(missingCategory))
}

func TestBuildFilterEmptySets(t *testing.T) {
	pred := BuildFilter(FilterOptions{Audience: strptr("citizen")})

	// Normalized chunks always carry the sets, possibly empty.
	m := types.Metadata{}
	m.Normalize()
	assert.False(t, pred(m))
}
