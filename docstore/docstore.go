package docstore

import (
	"context"
	"time"
)

// DocStore keeps provenance for ingested documents. It is written after the
// vector index and is not transactionally linked to it.
type DocStore interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

type Entry struct {
	Id         string
	Source     string
	Path       string
	IngestedAt time.Time
}
