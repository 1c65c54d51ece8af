package weaviate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	"github.com/w-h-a/rag/storer"
	"github.com/w-h-a/rag/util/lazy"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const payloadProperty = "payload"

// weaviateStorer maps a collection onto a class with no vectorizer. The open
// payload is kept as one JSON text property so arbitrary metadata keys never
// need schema changes.
type weaviateStorer struct {
	options storer.Options
	class   string
	client  *lazy.Value[*weaviate.Client]
}

func (s *weaviateStorer) EnsureCollection(ctx context.Context) error {
	client, err := s.client.Get()
	if err != nil {
		return err
	}

	exists, err := client.Schema().ClassExistenceChecker().WithClassName(s.class).Do(ctx)
	if err != nil {
		return fmt.Errorf("check weaviate class: %w", err)
	}

	if exists {
		return nil
	}

	class := &models.Class{
		Class:           s.class,
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]any{
			"distance": "cosine",
		},
		Properties: []*models.Property{
			{Name: payloadProperty, DataType: []string{"text"}},
		},
	}

	if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return fmt.Errorf("create weaviate class: %w", err)
	}

	return nil
}

func (s *weaviateStorer) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return err
	}

	client, err := s.client.Get()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(storer.ClonePayload(payload))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	properties := map[string]any{
		payloadProperty: string(raw),
	}

	exists, err := client.Data().Checker().WithClassName(s.class).WithID(id).Do(ctx)
	if err != nil {
		return err
	}

	if exists {
		return client.Data().Updater().
			WithClassName(s.class).
			WithID(id).
			WithProperties(properties).
			WithVector(vector).
			Do(ctx)
	}

	_, err = client.Data().Creator().
		WithClassName(s.class).
		WithID(id).
		WithProperties(properties).
		WithVector(vector).
		Do(ctx)

	return err
}

func (s *weaviateStorer) Search(ctx context.Context, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return []storer.Record{}, nil
	}

	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return nil, err
	}

	client, err := s.client.Get()
	if err != nil {
		return nil, err
	}

	fields := []graphql.Field{
		{Name: payloadProperty},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "distance"},
		}},
	}

	nearVector := client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	rsp, err := client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	if len(rsp.Errors) > 0 {
		msgs := make([]string, 0, len(rsp.Errors))
		for _, e := range rsp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, errors.New(strings.Join(msgs, "; "))
	}

	return parseHits(rsp.Data, s.class), nil
}

func (s *weaviateStorer) Close() error {
	return s.client.Close(nil)
}

func parseHits(data map[string]models.JSONObject, class string) []storer.Record {
	records := []storer.Record{}

	get, _ := data["Get"].(map[string]any)
	items, _ := get[class].([]any)

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		rec := storer.Record{Payload: map[string]string{}}

		if raw, ok := obj[payloadProperty].(string); ok {
			if err := json.Unmarshal([]byte(raw), &rec.Payload); err != nil {
				rec.Payload = map[string]string{}
			}
		}

		if additional, ok := obj["_additional"].(map[string]any); ok {
			rec.Id, _ = additional["id"].(string)
			if distance, ok := additional["distance"].(float64); ok {
				rec.Score = float32(1 - distance)
			}
		}

		records = append(records, rec)
	}

	return records
}

// className turns a collection name such as physical_ai_docs into the
// capitalised identifier weaviate requires (Physical_ai_docs).
func className(collection string) string {
	var b strings.Builder
	for i, r := range collection {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Collection) == 0 ||
		options.Dimension == 0 {
		panic("missing location, collection, or vector size for weaviate storer")
	}

	u, err := url.Parse(options.Location)
	if err != nil || len(u.Host) == 0 {
		detail := "invalid location for weaviate storer"
		slog.ErrorContext(options.Context, detail, "location", options.Location)
		panic(detail)
	}

	s := &weaviateStorer{
		options: options,
		class:   className(options.Collection),
	}

	s.client = lazy.New(func() (*weaviate.Client, error) {
		cfg := weaviate.Config{
			Host:   u.Host,
			Scheme: u.Scheme,
		}
		if len(options.ApiKey) > 0 {
			cfg.AuthConfig = auth.ApiKey{Value: options.ApiKey}
		}
		if options.HTTPClient != nil {
			cfg.ConnectionClient = options.HTTPClient
		}
		return weaviate.NewClient(cfg)
	})

	return s
}
