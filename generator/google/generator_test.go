package google

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/generator"
)

func TestToContents_TranslatesRoles(t *testing.T) {
	contents, err := toContents([]generator.Message{
		{Role: generator.RoleUser, Content: "What is SLAM?"},
		{Role: generator.RoleAssistant, Content: "SLAM is simultaneous localization and mapping."},
	})
	require.NoError(t, err)
	require.Len(t, contents, 2)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("What is SLAM?")}, contents[0].Parts)
	assert.Equal(t, "model", contents[1].Role)
}

func TestToContents_Empty(t *testing.T) {
	contents, err := toContents(nil)
	require.NoError(t, err)
	assert.Empty(t, contents)
}

func TestToContents_UnknownRole(t *testing.T) {
	_, err := toContents([]generator.Message{{Role: "system", Content: "be terse"}})
	assert.ErrorIs(t, err, generator.ErrUnknownRole)
}

func TestResponseText(t *testing.T) {
	rsp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Loop "), genai.Text("closure.")}}},
		},
	}

	text, err := responseText(rsp)
	require.NoError(t, err)
	assert.Equal(t, "Loop closure.", text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, generator.ErrNoResponse)
}

func TestNewGenerator_DefaultModel(t *testing.T) {
	g := NewGenerator(generator.WithApiKey("test"))
	assert.Equal(t, defaultModel, g.Model())
	assert.NoError(t, g.Close())
}
