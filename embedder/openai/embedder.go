package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/rag/embedder"
)

const defaultModel = "text-embedding-3-small"

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

// Embed ignores intent; OpenAI embeddings carry no task hint.
func (e *openAIEmbedder) Embed(ctx context.Context, text string, _ embedder.Intent) ([]float32, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, embedder.ErrEmptyInput
	}

	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.options.Model),
		Dimensions: e.options.Dimension,
	})
	if err != nil {
		return nil, err
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	if len(rsp.Data[0].Embedding) != e.options.Dimension {
		return nil, fmt.Errorf("openai returned %d dimensions, expected %d", len(rsp.Data[0].Embedding), e.options.Dimension)
	}

	return rsp.Data[0].Embedding, nil
}

func (e *openAIEmbedder) Dimension() int {
	return e.options.Dimension
}

func (e *openAIEmbedder) Close() error {
	return nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &openAIEmbedder{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)
	if options.HTTPClient != nil {
		cfg.HTTPClient = options.HTTPClient
	}

	if len(options.Location) > 0 {
		cfg.BaseURL = options.Location
	}

	e.client = openai.NewClientWithConfig(cfg)

	return e
}
