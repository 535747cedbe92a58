package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMCPServer() *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("test", "0.0.1", mcpserver.WithToolCapabilities(true))
	s.AddTool(mcp.NewTool("ping"), func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("pong"), nil
	})
	return s
}

func TestIsLoopbackAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:8000", true},
		{"localhost:8000", true},
		{"[::1]:8000", true},
		{":8000", false},
		{"0.0.0.0:8000", false},
		{"192.168.1.10:8000", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopbackAddr(tt.addr))
		})
	}
}

func TestResponseWriter(t *testing.T) {
	t.Run("captures status code", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := newResponseWriter(recorder)
		rw.WriteHeader(http.StatusNotFound)

		assert.Equal(t, http.StatusNotFound, rw.statusCode)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("defaults to 200", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		assert.Equal(t, http.StatusOK, rw.statusCode)
	})

	t.Run("flushes underlying writer", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		newResponseWriter(recorder).Flush()
		assert.True(t, recorder.Flushed)
	})
}

func TestMetricPath(t *testing.T) {
	assert.Equal(t, "/mcp", metricPath("/mcp"))
	assert.Equal(t, "/readyz", metricPath("/readyz"))
	assert.Equal(t, "other", metricPath("/wp-admin"))
}

func TestHTTPServer_Handler(t *testing.T) {
	sc, err := NewServerContext(context.Background())
	require.NoError(t, err)
	defer sc.Shutdown()

	srv := httptest.NewServer(NewHTTPServer(newTestMCPServer(), sc, HTTPServerConfig{DisableStreaming: true}).Handler())
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("readiness reports missing client without failing", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, healthStatusNotConfigured, body.Checks["todoist"])
	})

	t.Run("mcp initialize", func(t *testing.T) {
		payload := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
		req, err := http.NewRequest(http.MethodPost, srv.URL+MCPEndpoint, strings.NewReader(payload))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var rpc struct {
			Result struct {
				ServerInfo struct {
					Name string `json:"name"`
				} `json:"serverInfo"`
			} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
		assert.Equal(t, "test", rpc.Result.ServerInfo.Name)
	})
}

func TestHTTPServer_StartAndShutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background())
	require.NoError(t, err)
	defer sc.Shutdown()

	s := NewHTTPServer(newTestMCPServer(), sc, HTTPServerConfig{})
	assert.Empty(t, s.Addr())

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- s.StartWithReadySignal("127.0.0.1:0", ready) }()

	select {
	case <-ready:
	case err := <-errCh:
		t.Fatalf("start failed: %v", err)
	}

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, s.Shutdown(context.Background()))
	assert.ErrorIs(t, <-errCh, http.ErrServerClosed)
	assert.False(t, s.Health().IsReady())
}
