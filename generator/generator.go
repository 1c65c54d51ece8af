package generator

import (
	"context"
	"errors"
)

var (
	ErrUnknownRole = errors.New("unknown conversation role")
	ErrNoResponse  = errors.New("no response from model")
)

type Generator interface {
	// Generate sends prompt as the triggering turn. history holds the prior
	// turns, oldest first, and is replayed before it. An empty history is a
	// one-shot completion.
	Generate(ctx context.Context, prompt string, history []Message) (string, error)
	Model() string
	Close() error
}
