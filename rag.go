package rag

import (
	"context"
	"errors"
	"strings"

	"github.com/w-h-a/rag/docstore"
	"github.com/w-h-a/rag/embedder"
	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/internal/errs"
	"github.com/w-h-a/rag/internal/service"
	"github.com/w-h-a/rag/internal/service/answer"
	"github.com/w-h-a/rag/internal/service/auth"
	"github.com/w-h-a/rag/internal/service/ingest"
	"github.com/w-h-a/rag/internal/service/retrieve"
	"github.com/w-h-a/rag/storer"
	"github.com/w-h-a/rag/userstore"
)

type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Answer struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}

type (
	Session = auth.Session
	Claims  = auth.Claims
)

type RAG struct {
	options  Options
	ingest   *ingest.Service
	retrieve *retrieve.Service
	answer   *answer.Service
	auth     *auth.Service
	docs     docstore.DocStore
	closers  []func() error
}

// Chat answers the last turn of history. Only that turn drives retrieval; the
// turns before it are replayed to the model as prior conversation.
func (r *RAG) Chat(ctx context.Context, history []generator.Message) (Answer, error) {
	if len(history) == 0 {
		return Answer{}, errs.Validation("history is required")
	}

	for i, msg := range history {
		if !msg.Role.Valid() {
			return Answer{}, errs.Validation("history[%d]: unknown role %q", i, msg.Role)
		}
	}

	last := history[len(history)-1]

	if last.Role != generator.RoleUser {
		return Answer{}, errs.Validation("last turn must come from the user")
	}

	if len(strings.TrimSpace(last.Content)) == 0 {
		return Answer{}, errs.Validation("last turn is empty")
	}

	passages, err := r.retrieve.Retrieve(ctx, last.Content, retrieve.DefaultLimit)
	if err != nil {
		return Answer{}, err
	}

	rsp, err := r.answer.Generate(ctx, last.Content, retrieve.JoinExcerpts(passages), history[:len(history)-1])
	if err != nil {
		return Answer{}, err
	}

	sources := make([]Source, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, Source{Title: p.Source})
	}

	return Answer{
		Response: rsp,
		Sources:  sources,
	}, nil
}

// Ingest admits a document. See ingest.Service for the partial failure
// contract.
func (r *RAG) Ingest(ctx context.Context, text string, metadata map[string]string) (string, error) {
	return r.ingest.Ingest(ctx, text, metadata)
}

// Documents lists provenance entries, newest first.
func (r *RAG) Documents(ctx context.Context, limit int) ([]docstore.Entry, error) {
	ctx, cancel := service.WithTimeout(ctx, r.options.CallTimeout)
	defer cancel()

	entries, err := r.docs.List(ctx, limit)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStore, "list documents", err)
	}

	return entries, nil
}

func (r *RAG) Retrieve(ctx context.Context, query string, k int) ([]retrieve.Passage, error) {
	return r.retrieve.Retrieve(ctx, query, k)
}

func (r *RAG) Explain(ctx context.Context, selectedText string, question string) (string, error) {
	return r.answer.Explain(ctx, selectedText, question)
}

func (r *RAG) LatestDevelopments(ctx context.Context, section string) (string, string, error) {
	return r.answer.LatestDevelopments(ctx, section)
}

func (r *RAG) Signup(ctx context.Context, email string, password string, name string) (Session, error) {
	return r.auth.Signup(ctx, email, password, name)
}

func (r *RAG) Login(ctx context.Context, email string, password string) (Session, error) {
	return r.auth.Login(ctx, email, password)
}

func (r *RAG) Verify(token string) (*Claims, error) {
	return r.auth.Verify(token)
}

func (r *RAG) Model() string {
	return r.answer.Model()
}

// Close tears down every client handle. It keeps going past failures.
func (r *RAG) Close() error {
	var errList []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func New(
	e embedder.Embedder,
	s storer.Storer,
	docs docstore.DocStore,
	users userstore.UserStore,
	g generator.Generator,
	opts ...Option,
) *RAG {
	options := NewOptions(opts...)

	r := &RAG{
		options:  options,
		ingest:   ingest.New(e, s, docs, options.Collection, options.CallTimeout),
		retrieve: retrieve.New(e, s, options.CallTimeout),
		answer:   answer.New(g, options.Domain, options.CallTimeout),
		auth:     auth.New(users, options.JWTSecret),
		docs:     docs,
		closers: []func() error{
			e.Close,
			s.Close,
			docs.Close,
			users.Close,
			g.Close,
		},
	}

	return r
}
