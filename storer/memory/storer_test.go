package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/storer"
)

func TestSearch_EmptyCollection(t *testing.T) {
	s := NewStorer(storer.WithDimension(2))
	require.NoError(t, s.EnsureCollection(context.Background()))

	got, err := s.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_OrderedAndLimited(t *testing.T) {
	s := NewStorer(storer.WithDimension(2))
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "east", []float32{1, 0}, map[string]string{"text": "east"}))
	require.NoError(t, s.Upsert(ctx, "north", []float32{0, 1}, map[string]string{"text": "north"}))
	require.NoError(t, s.Upsert(ctx, "northeast", []float32{1, 1}, map[string]string{"text": "northeast"}))
	require.NoError(t, s.Upsert(ctx, "west", []float32{-1, 0}, map[string]string{"text": "west"}))

	got, err := s.Search(ctx, []float32{1, 0.1}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "east", got[0].Id)
	assert.Equal(t, "northeast", got[1].Id)
	assert.Equal(t, "north", got[2].Id)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	assert.Equal(t, "east", got[0].Payload["text"])
}

func TestUpsert_ReplacesExistingPoint(t *testing.T) {
	s := NewStorer(storer.WithDimension(2))
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"text": "v1"}))
	require.NoError(t, s.Upsert(ctx, "a", []float32{0, 1}, map[string]string{"text": "v2"}))

	got, err := s.Search(ctx, []float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].Payload["text"])
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
}

func TestUpsert_RejectsWrongDimension(t *testing.T) {
	s := NewStorer(storer.WithDimension(3))
	ctx := context.Background()

	err := s.Upsert(ctx, "short", []float32{1, 0}, nil)
	assert.ErrorIs(t, err, storer.ErrDimensionMismatch)

	err = s.Upsert(ctx, "long", []float32{1, 0, 0, 0}, nil)
	assert.ErrorIs(t, err, storer.ErrDimensionMismatch)

	got, err := s.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsert_ConcurrentWriters(t *testing.T) {
	s := NewStorer(storer.WithDimension(2))
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			assert.NoError(t, s.Upsert(ctx, fmt.Sprintf("p-%d", i), []float32{1, float32(i)}, nil))
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	got, err := s.Search(ctx, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
