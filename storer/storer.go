package storer

import (
	"context"
	"errors"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrCollectionMismatch means an existing collection was created with a
// different vector size or distance than the index is configured for.
var ErrCollectionMismatch = errors.New("collection config mismatch")

// Storer is a vector index over (id, vector, payload) points, searched by
// cosine similarity.
type Storer interface {
	// EnsureCollection creates the collection when it is absent. An existing
	// collection is not an error.
	EnsureCollection(ctx context.Context) error
	// Upsert inserts or replaces a point. Vectors of the wrong length are
	// rejected.
	Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error
	// Search returns at most limit records, best first. An empty collection
	// yields an empty slice.
	Search(ctx context.Context, vector []float32, limit int) ([]Record, error)
	Close() error
}
