package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/rag/generator"
)

const defaultModel = "claude-3-5-haiku-latest"

var roles = map[generator.Role]func(...anthropic.ContentBlockParamUnion) anthropic.MessageParam{
	generator.RoleUser:      anthropic.NewUserMessage,
	generator.RoleAssistant: anthropic.NewAssistantMessage,
}

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string, history []generator.Message) (string, error) {
	messages, err := toMessages(history)
	if err != nil {
		return "", err
	}

	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(generator.ApplyPrefix(g.options, prompt))))

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		Messages:  messages,
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", generator.ErrNoResponse
	}

	return result, nil
}

func (g *anthropicGenerator) Model() string {
	return g.options.Model
}

func (g *anthropicGenerator) Close() error {
	return nil
}

func toMessages(history []generator.Message) ([]anthropic.MessageParam, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)

	for _, msg := range history {
		newMessage, ok := roles[msg.Role]
		if !ok {
			return nil, fmt.Errorf("%w: %q", generator.ErrUnknownRole, msg.Role)
		}

		messages = append(messages, newMessage(anthropic.NewTextBlock(msg.Content)))
	}

	return messages, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &anthropicGenerator{
		options: options,
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
	}
	if len(options.Location) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.Location))
	}
	if options.HTTPClient != nil {
		clientOpts = append(clientOpts, anthropicopt.WithHTTPClient(options.HTTPClient))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
