package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/internal/errs"
)

type call struct {
	prompt  string
	history []generator.Message
}

type stubGenerator struct {
	calls []call
	rsp   string
	err   error
	block bool
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, history []generator.Message) (string, error) {
	s.calls = append(s.calls, call{prompt: prompt, history: history})
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.rsp, s.err
}

func (s *stubGenerator) Model() string { return "stub-model" }

func (s *stubGenerator) Close() error { return nil }

func TestGenerate_NoContextKeepsInsufficientInstruction(t *testing.T) {
	g := &stubGenerator{rsp: "The course materials do not cover this."}
	svc := New(g, "", time.Second)

	rsp, err := svc.Generate(context.Background(), "What is the airspeed of a swallow?", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "The course materials do not cover this.", rsp)

	require.Len(t, g.calls, 1)
	prompt := g.calls[0].prompt
	assert.Contains(t, prompt, InsufficientContextInstruction)
	assert.Contains(t, prompt, "(no relevant context was found)")
	assert.Contains(t, prompt, "Question: What is the airspeed of a swallow?")
	assert.Contains(t, prompt, DefaultDomain)
	assert.Empty(t, g.calls[0].history)
}

func TestGenerate_ContextAndHistory(t *testing.T) {
	g := &stubGenerator{rsp: "ok"}
	svc := New(g, "Embedded Systems", time.Second)

	history := []generator.Message{
		{Role: generator.RoleUser, Content: "What is SLAM?"},
		{Role: generator.RoleAssistant, Content: "SLAM is..."},
	}

	_, err := svc.Generate(context.Background(), "Give an example", "excerpt one\n\nexcerpt two", history)
	require.NoError(t, err)

	require.Len(t, g.calls, 1)
	assert.Equal(t, history, g.calls[0].history)
	assert.Contains(t, g.calls[0].prompt, "Context:\nexcerpt one\n\nexcerpt two\n")
	assert.Contains(t, g.calls[0].prompt, "Embedded Systems course")
	assert.Contains(t, g.calls[0].prompt, InsufficientContextInstruction)
	assert.NotContains(t, g.calls[0].prompt, "What is SLAM?")
}

func TestGenerate_RejectsUnknownRole(t *testing.T) {
	g := &stubGenerator{}
	svc := New(g, "", time.Second)

	_, err := svc.Generate(context.Background(), "q", "", []generator.Message{{Role: "system", Content: "x"}})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Empty(t, g.calls)
}

func TestGenerate_Failure(t *testing.T) {
	upstream := errors.New("quota exceeded")
	svc := New(&stubGenerator{err: upstream}, "", time.Second)

	_, err := svc.Generate(context.Background(), "q", "", nil)
	assert.ErrorIs(t, err, errs.ErrGeneration)
	assert.ErrorIs(t, err, upstream)
	assert.NotErrorIs(t, err, errs.ErrTimeout)
}

func TestGenerate_Timeout(t *testing.T) {
	svc := New(&stubGenerator{block: true}, "", 10*time.Millisecond)

	_, err := svc.Generate(context.Background(), "q", "", nil)
	assert.ErrorIs(t, err, errs.ErrGeneration)
	assert.ErrorIs(t, err, errs.ErrTimeout)
	assert.Equal(t, 504, errs.Status(err))
}

func TestExplain(t *testing.T) {
	g := &stubGenerator{rsp: "It means the controller reacts to contact force."}
	svc := New(g, "", time.Second)

	rsp, err := svc.Explain(context.Background(), "impedance control", "What does this mean?")
	require.NoError(t, err)
	assert.Equal(t, "It means the controller reacts to contact force.", rsp)
	assert.Contains(t, g.calls[0].prompt, `"impedance control"`)
	assert.Contains(t, g.calls[0].prompt, "User question: What does this mean?")
	assert.Nil(t, g.calls[0].history)

	_, err = svc.Explain(context.Background(), "", "q")
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = svc.Explain(context.Background(), "text", " ")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestLatestDevelopments(t *testing.T) {
	g := &stubGenerator{rsp: "- Diffusion policies"}
	svc := New(g, "", time.Second)

	rsp, reasoning, err := svc.LatestDevelopments(context.Background(), "Humanoid Locomotion")
	require.NoError(t, err)
	assert.Equal(t, "- Diffusion policies", rsp)
	assert.Equal(t, "Searched for latest research in Humanoid Locomotion", reasoning)
	assert.Contains(t, g.calls[0].prompt, "Humanoid Locomotion")

	_, _, err = svc.LatestDevelopments(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
