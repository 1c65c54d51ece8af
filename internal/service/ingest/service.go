package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/rag/docstore"
	"github.com/w-h-a/rag/embedder"
	"github.com/w-h-a/rag/internal/errs"
	"github.com/w-h-a/rag/internal/service"
	"github.com/w-h-a/rag/storer"
)

type Service struct {
	embedder   embedder.Embedder
	storer     storer.Storer
	docs       docstore.DocStore
	collection string
	timeout    time.Duration
}

// Ingest embeds text, writes it to the vector index and records its
// provenance. When only the provenance write fails the id is returned along
// with an error wrapping errs.ErrStore; the document is already searchable.
func (s *Service) Ingest(ctx context.Context, text string, metadata map[string]string) (string, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return "", errs.Validation("text is required")
	}

	vector, err := s.embed(ctx, text)
	if err != nil {
		return "", errs.Wrap(errs.ErrEmbedding, "embed document", err)
	}

	id := uuid.NewString()

	payload := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	payload[storer.PayloadText] = text

	if err := s.upsert(ctx, id, vector, payload); err != nil {
		return "", errs.Wrap(errs.ErrIndex, "upsert document", err)
	}

	entry := docstore.Entry{
		Id:     id,
		Source: metadata[storer.PayloadSource],
		Path:   metadata[storer.PayloadPath],
	}

	if err := s.record(ctx, entry); err != nil {
		slog.ErrorContext(
			ctx,
			"orphaned vector entry",
			"id", id,
			"collection", s.collection,
			"source", entry.Source,
			"path", entry.Path,
			"error", err,
		)
		return id, errs.Wrap(errs.ErrStore, "record provenance", err)
	}

	slog.InfoContext(ctx, "ingested document", "id", id, "source", entry.Source)

	return id, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := service.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.embedder.Embed(ctx, text, embedder.IntentDocument)
}

func (s *Service) upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	ctx, cancel := service.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.storer.Upsert(ctx, id, vector, payload)
}

func (s *Service) record(ctx context.Context, entry docstore.Entry) error {
	ctx, cancel := service.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.docs.Record(ctx, entry)
}

func New(
	e embedder.Embedder,
	s storer.Storer,
	docs docstore.DocStore,
	collection string,
	timeout time.Duration,
) *Service {
	return &Service{
		embedder:   e,
		storer:     s,
		docs:       docs,
		collection: collection,
		timeout:    timeout,
	}
}
