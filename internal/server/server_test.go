package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(http.NotFoundHandler(), Options{Port: 0, ShutdownTimeout: time.Second}, logger)
}

func TestServer_ShutdownOrderIsLIFO(t *testing.T) {
	srv := newTestServer()

	var order []string
	for _, name := range []string{"postgres", "redis", "sessions"} {
		name := name
		srv.OnShutdown(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, srv.gracefulShutdown())
	assert.Equal(t, []string{"sessions", "redis", "postgres"}, order)
}

func TestServer_ShutdownContinuesAfterError(t *testing.T) {
	srv := newTestServer()
	boom := errors.New("boom")

	var closed bool
	srv.OnShutdown("postgres", func(context.Context) error {
		closed = true
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error { return boom })

	err := srv.gracefulShutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "redis")
	assert.True(t, closed, "components after a failing one must still be shut down")
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	srv := newTestServer()
	srv.httpServer.Addr = "127.0.0.1:0"

	var stopped bool
	srv.OnShutdown("store", func(context.Context) error {
		stopped = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, stopped)
}
