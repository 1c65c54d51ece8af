package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/util/lazy"
	genaiopt "google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash"

// Gemini calls its own prior responses "model".
var roles = map[generator.Role]string{
	generator.RoleUser:      "user",
	generator.RoleAssistant: "model",
}

type googleGenerator struct {
	options generator.Options
	client  *lazy.Value[*genai.Client]
}

func (g *googleGenerator) Generate(ctx context.Context, prompt string, history []generator.Message) (string, error) {
	contents, err := toContents(history)
	if err != nil {
		return "", err
	}

	client, err := g.client.Get()
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(g.options.Model)
	model.SetMaxOutputTokens(int32(g.options.MaxTokens))

	req := genai.Text(generator.ApplyPrefix(g.options, prompt))

	var rsp *genai.GenerateContentResponse

	if len(contents) == 0 {
		rsp, err = model.GenerateContent(ctx, req)
	} else {
		cs := model.StartChat()
		cs.History = contents
		rsp, err = cs.SendMessage(ctx, req)
	}
	if err != nil {
		return "", err
	}

	return responseText(rsp)
}

func (g *googleGenerator) Model() string {
	return g.options.Model
}

func (g *googleGenerator) Close() error {
	return g.client.Close(func(c *genai.Client) error {
		return c.Close()
	})
}

func toContents(history []generator.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))

	for _, msg := range history {
		role, ok := roles[msg.Role]
		if !ok {
			return nil, fmt.Errorf("%w: %q", generator.ErrUnknownRole, msg.Role)
		}

		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	return contents, nil
}

func responseText(rsp *genai.GenerateContentResponse) (string, error) {
	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return "", generator.ErrNoResponse
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	if b.Len() == 0 {
		return "", generator.ErrNoResponse
	}

	return b.String(), nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &googleGenerator{
		options: options,
	}

	g.client = lazy.New(func() (*genai.Client, error) {
		return genai.NewClient(
			options.Context,
			genaiopt.WithAPIKey(options.ApiKey),
		)
	})

	return g
}
