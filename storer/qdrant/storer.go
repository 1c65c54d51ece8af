package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/w-h-a/rag/storer"
	getsafe "github.com/w-h-a/rag/util/get_safe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type qdrantStorer struct {
	options storer.Options
	client  *http.Client
}

func (s *qdrantStorer) EnsureCollection(ctx context.Context) error {
	info, exists, err := s.collectionInfo(ctx)
	if err != nil {
		return err
	}

	if !exists {
		return s.createCollection(ctx)
	}

	vectors := info.Config.Params.Vectors

	if vectors.Size != s.options.Dimension || !strings.EqualFold(vectors.Distance, s.options.Distance) {
		return fmt.Errorf(
			"%w: %s has size %d and distance %q, want %d and %q",
			storer.ErrCollectionMismatch,
			s.options.Collection,
			vectors.Size,
			vectors.Distance,
			s.options.Dimension,
			s.options.Distance,
		)
	}

	return nil
}

func (s *qdrantStorer) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return err
	}

	req := map[string]any{
		"points": []qdrantPoint{
			{
				Id:      id,
				Vector:  vector,
				Payload: storer.ClonePayload(payload),
			},
		},
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(s.options.Collection))

	_, err := call[json.RawMessage](ctx, s, http.MethodPut, path, req)

	return err
}

func (s *qdrantStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return []storer.Record{}, nil
	}

	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return nil, err
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(s.options.Collection))

	points, err := call[[]qdrantPointResult](ctx, s, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	results := make([]storer.Record, 0, len(points))

	for _, point := range points {
		results = append(results, storer.Record{
			Id:      point.id(),
			Score:   float32(point.Score),
			Payload: getsafe.Strings(point.Payload),
		})
	}

	return results, nil
}

func (s *qdrantStorer) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *qdrantStorer) collectionInfo(ctx context.Context) (qdrantCollectionInfo, bool, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Collection))

	info, err := call[qdrantCollectionInfo](ctx, s, http.MethodGet, path, nil)

	var qerr *qdrantError
	if errors.As(err, &qerr) && qerr.status == http.StatusNotFound {
		return qdrantCollectionInfo{}, false, nil
	}

	if err != nil {
		return qdrantCollectionInfo{}, false, err
	}

	return info, true, nil
}

func (s *qdrantStorer) createCollection(ctx context.Context) error {
	req := map[string]any{
		"vectors": qdrantVectorParams{
			Size:     s.options.Dimension,
			Distance: s.options.Distance,
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Collection))

	_, err := call[json.RawMessage](ctx, s, http.MethodPut, path, req)

	// another process may have created it between the check and the create
	var qerr *qdrantError
	if errors.As(err, &qerr) && (qerr.status == http.StatusConflict || strings.Contains(qerr.message, "already exists")) {
		return nil
	}

	return err
}

// call sends req as JSON and decodes the result field of the reply.
func call[T any](ctx context.Context, s *qdrantStorer, method string, path string, req any) (T, error) {
	var zero T

	u := strings.TrimRight(s.options.Location, "/") + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return zero, err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return zero, err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return zero, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return zero, err
	}

	var rsp qdrantResponse[T]

	if len(body) > 0 {
		if err := json.Unmarshal(body, &rsp); err != nil && response.StatusCode < 400 {
			return zero, err
		}
	}

	if response.StatusCode >= 400 {
		msg := rsp.errorMessage()
		if len(msg) == 0 {
			msg = string(body)
		}
		return zero, &qdrantError{status: response.StatusCode, message: msg}
	}

	if msg := rsp.errorMessage(); len(msg) > 0 {
		return zero, &qdrantError{status: response.StatusCode, message: msg}
	}

	return rsp.Result, nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Collection) == 0 ||
		options.Dimension == 0 {
		panic("missing location, collection, or vector size for qdrant storer")
	}

	client := options.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	s := &qdrantStorer{
		options: options,
		client:  client,
	}

	return s
}
