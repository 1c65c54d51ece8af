package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/embedder"
)

type embedCall struct {
	Path     string
	TaskType float64
	Model    string
}

func newTestServer(t *testing.T, values []float32, calls *[]embedCall) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		taskType, _ := body["taskType"].(float64)
		model, _ := body["model"].(string)
		*calls = append(*calls, embedCall{Path: r.URL.Path, TaskType: taskType, Model: model})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": values},
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestEmbed_TaskTypePerIntent(t *testing.T) {
	var calls []embedCall
	srv := newTestServer(t, []float32{0.1, 0.2, 0.3}, &calls)

	e := NewEmbedder(
		embedder.WithApiKey("test-key"),
		embedder.WithDimension(3),
		embedder.WithLocation(srv.URL),
	)
	t.Cleanup(func() { e.Close() })

	vec, err := e.Embed(context.Background(), "A gripper applies force to an object.", embedder.IntentDocument)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	_, err = e.Embed(context.Background(), "How do grippers apply force?", embedder.IntentQuery)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, "/v1beta/models/text-embedding-004:embedContent", calls[0].Path)
	assert.Equal(t, defaultModel, calls[0].Model)
	assert.Equal(t, float64(genai.TaskTypeRetrievalDocument), calls[0].TaskType)
	assert.Equal(t, float64(genai.TaskTypeRetrievalQuery), calls[1].TaskType)
}

func TestEmbed_WrongDimensionRejected(t *testing.T) {
	var calls []embedCall
	srv := newTestServer(t, []float32{0.1, 0.2}, &calls)

	e := NewEmbedder(
		embedder.WithApiKey("test-key"),
		embedder.WithDimension(3),
		embedder.WithLocation(srv.URL),
	)
	t.Cleanup(func() { e.Close() })

	_, err := e.Embed(context.Background(), "text", embedder.IntentDocument)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 2 dimensions, expected 3")
}

func TestEmbed_EmptyInput(t *testing.T) {
	e := NewEmbedder(embedder.WithApiKey("test-key"))

	_, err := e.Embed(context.Background(), "  \n", embedder.IntentQuery)
	assert.ErrorIs(t, err, embedder.ErrEmptyInput)
	assert.Equal(t, 768, e.Dimension())
}
