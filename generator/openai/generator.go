package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/rag/generator"
)

const defaultModel = openai.GPT4oMini

var roles = map[generator.Role]string{
	generator.RoleUser:      openai.ChatMessageRoleUser,
	generator.RoleAssistant: openai.ChatMessageRoleAssistant,
}

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string, history []generator.Message) (string, error) {
	messages, err := toMessages(history)
	if err != nil {
		return "", err
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: generator.ApplyPrefix(g.options, prompt),
	})

	req := openai.ChatCompletionRequest{
		Model:     g.options.Model,
		Messages:  messages,
		MaxTokens: g.options.MaxTokens,
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", generator.ErrNoResponse
	}

	return rsp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) Model() string {
	return g.options.Model
}

func (g *openAIGenerator) Close() error {
	return nil
}

func toMessages(history []generator.Message) ([]openai.ChatCompletionMessage, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)

	for _, msg := range history {
		role, ok := roles[msg.Role]
		if !ok {
			return nil, fmt.Errorf("%w: %q", generator.ErrUnknownRole, msg.Role)
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	return messages, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &openAIGenerator{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)
	if len(options.Location) > 0 {
		cfg.BaseURL = options.Location
	}
	if options.HTTPClient != nil {
		cfg.HTTPClient = options.HTTPClient
	}

	g.client = openai.NewClientWithConfig(cfg)

	return g
}
