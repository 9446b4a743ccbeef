package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nefac-ai/nefacrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndHistory(t *testing.T) {
	store := NewMemoryStore(MemoryStoreConfig{}, nil)
	ctx := context.Background()

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, store.Append(ctx, "s1", types.Turn{Question: "q1", Answer: "a1"}))
	require.NoError(t, store.Append(ctx, "s1", types.Turn{Question: "q2", Answer: "a2"}))

	history, err = store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "q1", history[0].Question)
	assert.Equal(t, "a2", history[1].Answer)

	// Sessions are isolated by ID.
	other, err := store.History(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryStoreTTLEviction(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(MemoryStoreConfig{
		TTL: time.Hour,
		Now: func() time.Time { return now },
	}, nil)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "old", types.Turn{Question: "q", Answer: "a"}))

	now = now.Add(2 * time.Hour)
	history, err := store.History(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStoreTouchRefreshesTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(MemoryStoreConfig{
		TTL: time.Hour,
		Now: func() time.Time { return now },
	}, nil)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s", types.Turn{Question: "q1", Answer: "a1"}))

	now = now.Add(45 * time.Minute)
	require.NoError(t, store.Append(ctx, "s", types.Turn{Question: "q2", Answer: "a2"}))

	// 45 more minutes: past the original deadline but inside the refreshed one.
	now = now.Add(45 * time.Minute)
	history, err := store.History(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMemoryStoreMaxSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(MemoryStoreConfig{
		MaxSessions: 2,
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("s%d", i)
		require.NoError(t, store.Append(ctx, id, types.Turn{Question: "q", Answer: "a"}))
	}

	// The least recently touched session was evicted.
	history, err := store.History(ctx, "s0")
	require.NoError(t, err)
	assert.Empty(t, history)

	history, err = store.History(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(MemoryStoreConfig{}, nil)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s", types.Turn{Question: "q", Answer: "a"}))
	require.NoError(t, store.Delete(ctx, "s"))

	history, err := store.History(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStoreRequiresSessionID(t *testing.T) {
	store := NewMemoryStore(MemoryStoreConfig{}, nil)
	ctx := context.Background()

	_, err := store.History(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.Append(ctx, "", types.Turn{}))
	assert.Error(t, store.Delete(ctx, ""))
}
