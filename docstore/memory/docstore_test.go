package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/docstore"
)

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	store := NewDocStore()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, docstore.Entry{Id: "a", Source: "ch1", Path: "/ch1.md", IngestedAt: base}))
	require.NoError(t, store.Record(ctx, docstore.Entry{Id: "b", Source: "ch2", Path: "/ch2.md", IngestedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Record(ctx, docstore.Entry{Id: "c", Source: "ch3"}))

	entries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].Id)
	assert.False(t, entries[0].IngestedAt.IsZero())
	assert.Equal(t, "b", entries[1].Id)
	assert.Equal(t, "a", entries[2].Id)

	entries, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecord_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDocStore().Record(ctx, docstore.Entry{Id: "a"})
	assert.ErrorIs(t, err, context.Canceled)
}
