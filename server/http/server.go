package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/w-h-a/rag/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type httpServer struct {
	options  server.Options
	handler  http.Handler
	srv      *http.Server
	listener net.Listener
	started  bool
	mtx      sync.RWMutex
}

func (s *httpServer) Options() server.Options {
	return s.options
}

func (s *httpServer) Handle(handler any) error {
	h, ok := handler.(http.Handler)
	if !ok {
		return fmt.Errorf("http server expects an http.Handler, got %T", handler)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.handler = h

	return nil
}

// Start listens and serves in the background.
func (s *httpServer) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.started {
		return nil
	}

	if s.handler == nil {
		return errors.New("http server has no handler")
	}

	handler := s.handler

	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	handler = otelhttp.NewHandler(handler, s.options.Name)

	listener, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	s.listener = listener
	s.srv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.options.ReadHeaderTimeout,
	}
	s.started = true

	slog.InfoContext(s.options.Context, "http server listening", "name", s.options.Name, "address", listener.Addr().String())

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(s.options.Context, "http server stopped", "error", err)
		}
	}()

	return nil
}

// Stop drains in-flight requests until ctx is done.
func (s *httpServer) Stop(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !s.started {
		return nil
	}

	s.started = false

	return s.srv.Shutdown(ctx)
}

// Addr reports the bound address once started.
func (s *httpServer) Addr() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.listener == nil {
		return s.options.Address
	}

	return s.listener.Addr().String()
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	return &httpServer{
		options: options,
	}
}
