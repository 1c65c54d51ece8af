package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/rag/embedder"
	"github.com/w-h-a/rag/util/lazy"
	genaiopt "google.golang.org/api/option"
)

const defaultModel = "models/text-embedding-004"

var taskTypes = map[embedder.Intent]genai.TaskType{
	embedder.IntentDocument: genai.TaskTypeRetrievalDocument,
	embedder.IntentQuery:    genai.TaskTypeRetrievalQuery,
}

type googleEmbedder struct {
	options embedder.Options
	client  *lazy.Value[*genai.Client]
}

func (e *googleEmbedder) Embed(ctx context.Context, text string, intent embedder.Intent) ([]float32, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, embedder.ErrEmptyInput
	}

	client, err := e.client.Get()
	if err != nil {
		return nil, err
	}

	model := client.EmbeddingModel(e.options.Model)
	model.TaskType = taskTypes[intent]

	rsp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}

	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, errors.New("no response from Google")
	}

	if len(rsp.Embedding.Values) != e.options.Dimension {
		return nil, fmt.Errorf("google returned %d dimensions, expected %d", len(rsp.Embedding.Values), e.options.Dimension)
	}

	return rsp.Embedding.Values, nil
}

func (e *googleEmbedder) Dimension() int {
	return e.options.Dimension
}

func (e *googleEmbedder) Close() error {
	return e.client.Close(func(c *genai.Client) error {
		return c.Close()
	})
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &googleEmbedder{
		options: options,
	}

	clientOpts := []genaiopt.ClientOption{
		genaiopt.WithAPIKey(options.ApiKey),
	}

	if len(options.Location) > 0 {
		clientOpts = append(clientOpts, genaiopt.WithEndpoint(options.Location))
	}

	e.client = lazy.New(func() (*genai.Client, error) {
		return genai.NewClient(options.Context, clientOpts...)
	})

	return e
}
