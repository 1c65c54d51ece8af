package rag

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Collection  string
	Domain      string
	JWTSecret   string
	CallTimeout time.Duration
	Context     context.Context
}

// WithCollection names the vector collection in compensating-action logs.
func WithCollection(collection string) Option {
	return func(o *Options) {
		o.Collection = collection
	}
}

func WithDomain(domain string) Option {
	return func(o *Options) {
		o.Domain = domain
	}
}

func WithJWTSecret(secret string) Option {
	return func(o *Options) {
		o.JWTSecret = secret
	}
}

// WithCallTimeout bounds each outbound embed, search, store and generate call.
func WithCallTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		CallTimeout: 30 * time.Second,
		Context:     context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
