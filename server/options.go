package server

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Name              string
	Address           string
	ReadHeaderTimeout time.Duration
	Context           context.Context
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithReadHeaderTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.ReadHeaderTimeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:              "rag",
		Address:           ":8000",
		ReadHeaderTimeout: 10 * time.Second,
		Context:           context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
