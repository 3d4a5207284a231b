package profiler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, opts Options) *Server {
	t.Helper()

	opts.Logger = zerolog.Nop()
	server := New(opts)
	require.NoError(t, server.Start(context.Background()), "Start() error")
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})
	return server
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := New(Options{Logger: zerolog.Nop()})
	require.NoError(t, server.Start(context.Background()), "Start() error")
	assert.True(t, strings.HasPrefix(server.Addr(), "127.0.0.1:"), "bound to %s", server.Addr())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(shutdownCtx), "Shutdown() error")
}

func TestServer_AddrBeforeStart(t *testing.T) {
	assert.Empty(t, New(Options{}).Addr())
}

func TestServer_PprofEndpoints(t *testing.T) {
	server := startServer(t, Options{})
	baseURL := "http://" + server.Addr()

	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "index", endpoint: "/debug/pprof/"},
		{name: "cmdline", endpoint: "/debug/pprof/cmdline"},
		{name: "symbol", endpoint: "/debug/pprof/symbol"},
		{name: "trace", endpoint: "/debug/pprof/trace?seconds=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(baseURL + tt.endpoint)
			require.NoError(t, err, "GET %s error", tt.endpoint)
			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, http.StatusOK, resp.StatusCode, "GET %s", tt.endpoint)
		})
	}
}

func TestServer_WindowState(t *testing.T) {
	calls := 0
	server := startServer(t, Options{
		State: func() any {
			calls++
			return map[string]int{"size": 15, "calls": calls}
		},
	})

	resp, err := http.Get("http://" + server.Addr() + "/debug/window")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, map[string]int{"size": 15, "calls": 1}, got)
}

func TestServer_WindowStateNotRegistered(t *testing.T) {
	server := startServer(t, Options{})

	resp, err := http.Get("http://" + server.Addr() + "/debug/window")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
