package http

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/rag/server"
)

func TestServer_ServesThroughMiddleware(t *testing.T) {
	var order []string

	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	srv := NewServer(
		server.WithAddress("127.0.0.1:0"),
		WithMiddleware(tag("outer"), tag("inner")),
	)

	require.NoError(t, srv.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop(context.Background()) })

	rsp, err := http.Get("http://" + srv.(*httpServer).Addr() + "/")
	require.NoError(t, err)
	defer rsp.Body.Close()

	body, _ := io.ReadAll(rsp.Body)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestServer_HandleRejectsNonHandler(t *testing.T) {
	srv := NewServer()
	assert.Error(t, srv.Handle("not a handler"))
}

func TestServer_StartWithoutHandler(t *testing.T) {
	srv := NewServer(server.WithAddress("127.0.0.1:0"))
	assert.Error(t, srv.Start())
	assert.NoError(t, srv.Stop(context.Background()))
}
