package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/internal/errs"
	"github.com/w-h-a/rag/internal/service"
)

type Service struct {
	generator generator.Generator
	domain    string
	timeout   time.Duration
}

// Generate answers query from the retrieved excerpts. history holds the prior
// turns only; query is sent as the triggering turn.
func (s *Service) Generate(ctx context.Context, query string, excerpts string, history []generator.Message) (string, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return "", errs.Validation("query is required")
	}

	for i, msg := range history {
		if !msg.Role.Valid() {
			return "", errs.Validation("history[%d]: unknown role %q", i, msg.Role)
		}
	}

	return s.complete(ctx, "generate answer", BuildPrompt(s.domain, query, excerpts), history)
}

// Explain answers a question about a highlighted excerpt. No retrieval and no
// history.
func (s *Service) Explain(ctx context.Context, selectedText string, question string) (string, error) {
	if len(strings.TrimSpace(selectedText)) == 0 {
		return "", errs.Validation("selected_text is required")
	}

	if len(strings.TrimSpace(question)) == 0 {
		return "", errs.Validation("user_query is required")
	}

	return s.complete(ctx, "explain selection", explainPrompt(selectedText, question), nil)
}

// LatestDevelopments summarises recent research for a course section.
func (s *Service) LatestDevelopments(ctx context.Context, section string) (string, string, error) {
	if len(strings.TrimSpace(section)) == 0 {
		return "", "", errs.Validation("book_section is required")
	}

	rsp, err := s.complete(ctx, "latest developments", latestPrompt(s.domain, section), nil)
	if err != nil {
		return "", "", err
	}

	return rsp, fmt.Sprintf("Searched for latest research in %s", section), nil
}

func (s *Service) Model() string {
	return s.generator.Model()
}

func (s *Service) complete(ctx context.Context, op string, prompt string, history []generator.Message) (string, error) {
	ctx, cancel := service.WithTimeout(ctx, s.timeout)
	defer cancel()

	rsp, err := s.generator.Generate(ctx, prompt, history)
	if err != nil {
		return "", errs.Wrap(errs.ErrGeneration, op, err)
	}

	return rsp, nil
}

func New(
	g generator.Generator,
	domain string,
	timeout time.Duration,
) *Service {
	if len(strings.TrimSpace(domain)) == 0 {
		domain = DefaultDomain
	}

	return &Service{
		generator: g,
		domain:    domain,
		timeout:   timeout,
	}
}
