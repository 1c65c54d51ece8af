package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/w-h-a/rag/storer"
)

type point struct {
	vector  []float32
	payload map[string]string
}

type memoryStorer struct {
	options storer.Options
	points  map[string]point
	mtx     sync.RWMutex
}

func (s *memoryStorer) EnsureCollection(ctx context.Context) error {
	return nil
}

func (s *memoryStorer) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.points[id] = point{
		vector:  slices.Clone(vector),
		payload: storer.ClonePayload(payload),
	}

	return nil
}

func (s *memoryStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return []storer.Record{}, nil
	}

	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]storer.Record, 0, len(s.points))

	for id, p := range s.points {
		candidates = append(candidates, storer.Record{
			Id:      id,
			Score:   float32(storer.CosineSimilarity(vector, p.vector)),
			Payload: storer.ClonePayload(p.payload),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score == candidates[j].Score {
			return candidates[i].Id < candidates[j].Id
		}
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (s *memoryStorer) Close() error {
	return nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if options.Dimension <= 0 {
		panic("missing vector size for memory storer")
	}

	return &memoryStorer{
		options: options,
		points:  map[string]point{},
		mtx:     sync.RWMutex{},
	}
}
