package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w-h-a/rag/docstore"
)

type memoryDocStore struct {
	options docstore.Options
	entries map[string]docstore.Entry
	mtx     sync.RWMutex
}

func (d *memoryDocStore) Record(ctx context.Context, entry docstore.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	if entry.IngestedAt.IsZero() {
		entry.IngestedAt = time.Now().UTC()
	}

	d.entries[entry.Id] = entry

	return nil
}

func (d *memoryDocStore) List(ctx context.Context, limit int) ([]docstore.Entry, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()

	entries := make([]docstore.Entry, 0, len(d.entries))
	for _, e := range d.entries {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].IngestedAt.Equal(entries[j].IngestedAt) {
			return entries[i].IngestedAt.After(entries[j].IngestedAt)
		}
		return entries[i].Id < entries[j].Id
	})

	if limit < 1 {
		return []docstore.Entry{}, nil
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (d *memoryDocStore) Close() error {
	return nil
}

func NewDocStore(opts ...docstore.Option) docstore.DocStore {
	options := docstore.NewOptions(opts...)

	return &memoryDocStore{
		options: options,
		entries: map[string]docstore.Entry{},
	}
}
