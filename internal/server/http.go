package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultHTTPAddr is where the streamable-http transport listens.
	DefaultHTTPAddr = "127.0.0.1:8000"

	// MCPEndpoint is the streamable HTTP endpoint path.
	MCPEndpoint = "/mcp"
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// DisableStreaming makes the endpoint answer with plain JSON instead of SSE.
	DisableStreaming bool
}

// HTTPServer exposes an MCP server over streamable HTTP together with the
// health endpoints. It carries no authentication; bind it to loopback.
type HTTPServer struct {
	mcpServer *mcpserver.MCPServer
	sc        *ServerContext
	health    *HealthChecker
	config    HTTPServerConfig

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewHTTPServer creates the HTTP transport for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	return &HTTPServer{
		mcpServer: mcpServer,
		sc:        sc,
		health:    NewHealthChecker(sc),
		config:    config,
	}
}

// Health returns the health checker, so callers can flip readiness during shutdown.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler returns the full HTTP handler: /mcp plus the health endpoints.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{mcpserver.WithEndpointPath(MCPEndpoint)}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpoint, streamable)
	s.health.RegisterHealthEndpoints(mux)

	return s.instrumentationMiddleware(mux)
}

// Start listens on addr and serves until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *HTTPServer) Start(addr string) error {
	return s.StartWithReadySignal(addr, nil)
}

// StartWithReadySignal is Start, closing ready once the listener is bound.
func (s *HTTPServer) StartWithReadySignal(addr string, ready chan<- struct{}) error {
	if addr == "" {
		addr = DefaultHTTPAddr
	}
	if !isLoopbackAddr(addr) {
		slog.Warn("streamable-http transport bound to a non-loopback address without authentication",
			"addr", addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listener = ln
	s.mu.Unlock()

	if ready != nil {
		close(ready)
	}
	return srv.Serve(ln)
}

// Addr returns the bound address, or "" before Start.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// isLoopbackAddr reports whether a host:port listen address only accepts
// local connections. An empty host means all interfaces.
func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// responseWriter captures the status code for metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// instrumentationMiddleware records http_requests_total and
// http_request_duration_seconds for every request.
func (s *HTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sc == nil || s.sc.Metrics() == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, metricPath(r.URL.Path), rw.statusCode, time.Since(start))
	})
}

// metricPath bounds the path label to the routes this server knows.
func metricPath(p string) string {
	switch p {
	case MCPEndpoint, "/healthz", "/readyz", "/healthz/detailed":
		return p
	}
	return "other"
}
