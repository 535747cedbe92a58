package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"

	startupTimeout = 5 * time.Second
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server
	Enabled bool

	// Addr is the address for the metrics server
	Addr string
}

// ServeConfig holds everything the serve command needs.
type ServeConfig struct {
	Transport        string
	HTTPAddr         string
	DisableStreaming bool
	ReadOnly         bool
	Debug            bool

	// APIToken is read from TODOIST_API_TOKEN only, never from a flag.
	APIToken       string
	APIBaseURL     string
	RequestTimeout time.Duration

	Metrics MetricsConfig
}

func newServeCmd() *cobra.Command {
	cfg := ServeConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that gives AI assistants
access to Todoist tasks and projects.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Authentication:
  Set TODOIST_API_TOKEN (environment or .env file). Without it the server
  still starts; the assistant can then call setup_todoist with a token.

Read-only mode:
  --read-only hides every tool that changes data. setup_todoist stays available.

The HTTP transport has no authentication of its own and binds to
127.0.0.1 by default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadServeEnvVars(cmd, &cfg); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.Transport, "transport", transportStdio, "Transport type: stdio or streamable-http. Can also use MCP_TRANSPORT env var.")
	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport). Can also use MCP_HTTP_ADDR env var.")
	cmd.Flags().BoolVar(&cfg.DisableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&cfg.ReadOnly, "read-only", false, "Only register tools that do not change data. Can also use TODOIST_READ_ONLY env var.")
	cmd.Flags().StringVar(&cfg.APIBaseURL, "api-base-url", todoist.DefaultBaseURL, "Todoist REST API base URL. Can also use TODOIST_API_BASE_URL env var.")
	cmd.Flags().DurationVar(&cfg.RequestTimeout, "request-timeout", todoist.DefaultTimeout, "Timeout for each Todoist API request. Can also use TODOIST_REQUEST_TIMEOUT env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&cfg.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadServeEnvVars applies environment variables to settings whose flag was
// not explicitly set.
func loadServeEnvVars(cmd *cobra.Command, cfg *ServeConfig) error {
	flags := cmd.Flags()

	cfg.APIToken = os.Getenv("TODOIST_API_TOKEN")

	if !flags.Changed("transport") {
		if v := os.Getenv("MCP_TRANSPORT"); v != "" {
			cfg.Transport = v
		}
	}
	if !flags.Changed("http-addr") {
		if v := os.Getenv("MCP_HTTP_ADDR"); v != "" {
			cfg.HTTPAddr = v
		}
	}
	if !flags.Changed("api-base-url") {
		if v := os.Getenv("TODOIST_API_BASE_URL"); v != "" {
			cfg.APIBaseURL = v
		}
	}
	if !flags.Changed("request-timeout") {
		if v := os.Getenv("TODOIST_REQUEST_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("invalid TODOIST_REQUEST_TIMEOUT %q: expected a positive duration such as 30s", v)
			}
			cfg.RequestTimeout = d
		}
	}
	if !flags.Changed("read-only") {
		if err := envBool("TODOIST_READ_ONLY", &cfg.ReadOnly); err != nil {
			return err
		}
	}
	if !flags.Changed("metrics-enabled") {
		if err := envBool("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
			return err
		}
	}
	if !flags.Changed("metrics-addr") {
		if v := os.Getenv("METRICS_ADDR"); v != "" {
			cfg.Metrics.Addr = v
		}
	}

	switch cfg.Transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q (expected true/false)", key, v)
	}
	*dst = parsed
	return nil
}

func runServe(parent context.Context, cfg ServeConfig) error {
	if parent == nil {
		parent = context.Background()
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries MCP frames in stdio mode, so all logs go to stderr.
	logger := logging.New(os.Stderr, cfg.Debug)
	slog.SetDefault(logger)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if err := instrConfig.Validate(); err != nil {
		return fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithReadOnly(cfg.ReadOnly),
		server.WithClientConfig(todoist.Config{
			Token:   cfg.APIToken,
			BaseURL: cfg.APIBaseURL,
			Timeout: cfg.RequestTimeout,
		}),
	}
	if provider.Enabled() {
		opts = append(opts,
			server.WithMetrics(provider.Metrics()),
			server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)),
		)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	if !serverContext.HasTodoistClient() {
		logger.Warn("TODOIST_API_TOKEN is not set; tools will report an error until setup_todoist is called")
	}

	mcpSrv := newMCPServer()
	if err := registerAll(mcpSrv, serverContext, cfg.ReadOnly); err != nil {
		return err
	}

	logger.Info("starting todoist-mcp",
		"version", version,
		"transport", cfg.Transport,
		"read_only", cfg.ReadOnly,
		"api_base_url", cfg.APIBaseURL)

	switch cfg.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv, logger)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv, mcpserver.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(startupTimeout):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg ServeConfig, provider *instrumentation.Provider, logger *slog.Logger) error {
	if cfg.Metrics.Enabled && provider.Enabled() && provider.PrometheusHandler() != nil {
		metricsServer, err := startMetricsServer(cfg.Metrics, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	httpServer := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		DisableStreaming: cfg.DisableStreaming,
	})

	ready := make(chan struct{})
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.StartWithReadySignal(cfg.HTTPAddr, ready); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
		logger.Info("streamable HTTP server started",
			"addr", httpServer.Addr(),
			"mcp_endpoint", server.MCPEndpoint,
			"health_endpoints", "/healthz, /readyz, /healthz/detailed")
	case err := <-serverDone:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(startupTimeout):
		return fmt.Errorf("HTTP server startup timed out")
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
