package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

// ServerContext holds everything MCP handlers share: the active Todoist
// client and the instrumentation handles. It is passed explicitly to every
// tool, resource and prompt registration.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	// client is swapped atomically by setup_todoist. Handlers load it once
	// per invocation, so in-flight calls keep the credential they started with.
	client atomic.Pointer[todoist.Client]

	clientConfig todoist.Config
	metrics      *instrumentation.Metrics
	auditLogger  *instrumentation.AuditLogger
	logger       *slog.Logger
	readOnly     bool
	now          func() time.Time

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithClientConfig sets the template used to build Todoist clients. When
// cfg.Token is set a client is created immediately.
func WithClientConfig(cfg todoist.Config) Option {
	return func(sc *ServerContext) { sc.clientConfig = cfg }
}

// WithMetrics sets the metrics recorder shared by all handlers.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the tool audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.auditLogger = al }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// WithReadOnly hides write tools.
func WithReadOnly(readOnly bool) Option {
	return func(sc *ServerContext) { sc.readOnly = readOnly }
}

// WithClock overrides time.Now, for prompt tests.
func WithClock(now func() time.Time) Option {
	return func(sc *ServerContext) { sc.now = now }
}

// NewServerContext creates a new server context. A missing token is not an
// error: handlers report "not configured" until setup_todoist runs.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(sc)
	}

	if sc.clientConfig.Metrics == nil && sc.metrics != nil {
		sc.clientConfig.Metrics = sc.metrics
	}
	if sc.clientConfig.Logger == nil {
		sc.clientConfig.Logger = logging.NewSlogAdapter(sc.logger)
	}
	sc.clientConfig.HTTPClient = tracedHTTPClient(sc.clientConfig)

	if sc.clientConfig.Token != "" {
		if _, err := sc.SetAPIToken(sc.clientConfig.Token); err != nil {
			cancel()
			return nil, err
		}
	}

	return sc, nil
}

// tracedHTTPClient wraps the configured transport with otelhttp. Span names
// use the API path relative to the base URL with IDs collapsed.
func tracedHTTPClient(cfg todoist.Config) *http.Client {
	var base http.RoundTripper = http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		base = cfg.HTTPClient.Transport
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = todoist.DefaultBaseURL
	}
	var basePath string
	if u, err := url.Parse(baseURL); err == nil {
		basePath = strings.TrimRight(u.Path, "/")
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "todoist " + r.Method + " " + instrumentation.NormalizePath(strings.TrimPrefix(r.URL.Path, basePath))
			}),
		),
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TodoistClient returns the active client, or a *todoist.ConfigurationError
// when no token has been supplied yet.
func (sc *ServerContext) TodoistClient() (*todoist.Client, error) {
	if c := sc.client.Load(); c != nil {
		return c, nil
	}
	return nil, todoist.NotConfigured()
}

// HasTodoistClient reports whether a client is installed.
func (sc *ServerContext) HasTodoistClient() bool {
	return sc.client.Load() != nil
}

// NewTodoistClient builds a client for token from the configured template
// without installing it.
func (sc *ServerContext) NewTodoistClient(token string) (*todoist.Client, error) {
	cfg := sc.clientConfig
	cfg.Token = token
	return todoist.NewClient(cfg)
}

// SetAPIToken builds a client for token and installs it, replacing any
// previous client. The token is not validated against the API.
func (sc *ServerContext) SetAPIToken(token string) (*todoist.Client, error) {
	c, err := sc.NewTodoistClient(token)
	if err != nil {
		return nil, err
	}
	sc.SetTodoistClient(c)
	sc.logger.Info("todoist client installed", "token", logging.SanitizeToken(token))
	return c, nil
}

// SetTodoistClient installs c as the active client.
func (sc *ServerContext) SetTodoistClient(c *todoist.Client) {
	sc.client.Store(c)
}

// Metrics returns the metrics recorder; nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger; nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the operational logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// ReadOnly reports whether write tools are hidden.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Now returns the current time from the configured clock.
func (sc *ServerContext) Now() time.Time {
	return sc.now()
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
