package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/generator"
)

func TestGenerate_ReplaysHistoryThenPrompt(t *testing.T) {
	var got openai.ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "A robot vacuum mapping a room."}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator(
		generator.WithApiKey("test-key"),
		generator.WithLocation(srv.URL+"/v1"),
	)

	rsp, err := g.Generate(context.Background(), "Give an example", []generator.Message{
		{Role: generator.RoleUser, Content: "What is SLAM?"},
		{Role: generator.RoleAssistant, Content: "SLAM is..."},
	})
	require.NoError(t, err)
	assert.Equal(t, "A robot vacuum mapping a room.", rsp)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[2].Role)
	assert.Equal(t, "Give an example", got.Messages[2].Content)
	assert.Equal(t, defaultModel, got.Model)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g := NewGenerator(generator.WithLocation(srv.URL + "/v1"))

	_, err := g.Generate(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, generator.ErrNoResponse)
}

func TestToMessages_UnknownRole(t *testing.T) {
	_, err := toMessages([]generator.Message{{Role: "tool", Content: "x"}})
	assert.ErrorIs(t, err, generator.ErrUnknownRole)
}
