package retrieve

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/w-h-a/rag/embedder"
	"github.com/w-h-a/rag/internal/errs"
	"github.com/w-h-a/rag/internal/service"
	"github.com/w-h-a/rag/storer"
	getsafe "github.com/w-h-a/rag/util/get_safe"
)

type Service struct {
	embedder embedder.Embedder
	storer   storer.Storer
	timeout  time.Duration
}

// Retrieve returns at most k passages for query, best first. k of zero means
// DefaultLimit. An empty index yields an empty slice.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]Passage, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return nil, errs.Validation("query is required")
	}

	if k < 0 {
		return nil, errs.Validation("k must be at least 1, got %d", k)
	}

	if k == 0 {
		k = DefaultLimit
	}

	vector, err := s.embed(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, "embed query", err)
	}

	records, err := s.search(ctx, vector, k)
	if err != nil {
		return nil, errs.Wrap(errs.ErrIndex, "search index", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})

	if len(records) > k {
		records = records[:k]
	}

	passages := make([]Passage, 0, len(records))

	for _, rec := range records {
		passages = append(passages, Passage{
			Id:     rec.Id,
			Text:   excerpt(rec.Payload[storer.PayloadText]),
			Source: getsafe.Value(rec.Payload, storer.PayloadSource, UnknownSource),
			Score:  rec.Score,
		})
	}

	return passages, nil
}

func (s *Service) embed(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := service.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.embedder.Embed(ctx, query, embedder.IntentQuery)
}

func (s *Service) search(ctx context.Context, vector []float32, k int) ([]storer.Record, error) {
	ctx, cancel := service.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.storer.Search(ctx, vector, k)
}

func New(
	e embedder.Embedder,
	s storer.Storer,
	timeout time.Duration,
) *Service {
	return &Service{
		embedder: e,
		storer:   s,
		timeout:  timeout,
	}
}
