// Package instrumentation provides OpenTelemetry instrumentation for the
// todoist-mcp server.
//
// # Metrics
//
// Server/HTTP:
//   - http_requests_total: HTTP requests by method, path, and status
//   - http_request_duration_seconds: HTTP request durations
//
// Todoist REST API:
//   - todoist_api_requests_total: requests by operation, method, and status class
//   - todoist_api_request_duration_seconds: request durations
//   - todoist_client_setups_total: runtime credential installs by result
//
// MCP:
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds: by tool and status
//   - mcp_resource_reads_total: by resource URI (or template) and status
//   - mcp_prompt_renders_total: by prompt and status
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>), resource reads,
// prompt renders (prompt.<name>) and, through otelhttp, every outbound
// Todoist request.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: todoist-mcp)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_ARGUMENTS
//
// The stdout exporters write to stderr; stdout is reserved for the stdio transport.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "get_tasks", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
