package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrTool      = "tool"
	attrResource  = "resource"
	attrPrompt    = "prompt"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a valid no-op recorder.
type Metrics struct {
	// Inbound HTTP (streamable-http transport)
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Outbound Todoist REST calls
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
	resourceReadsTotal   metric.Int64Counter
	promptRendersTotal   metric.Int64Counter
	clientSetupsTotal    metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all instruments registered on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.apiRequestsTotal, err = meter.Int64Counter(
		"todoist_api_requests_total",
		metric.WithDescription("Total number of Todoist REST API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create todoist_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"todoist_api_request_duration_seconds",
		metric.WithDescription("Todoist REST API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create todoist_api_request_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.resourceReadsTotal, err = meter.Int64Counter(
		"mcp_resource_reads_total",
		metric.WithDescription("Total number of MCP resource reads"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_resource_reads_total counter: %w", err)
	}

	m.promptRendersTotal, err = meter.Int64Counter(
		"mcp_prompt_renders_total",
		metric.WithDescription("Total number of MCP prompt renders"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_prompt_renders_total counter: %w", err)
	}

	m.clientSetupsTotal, err = meter.Int64Counter(
		"todoist_client_setups_total",
		metric.WithDescription("Total number of runtime Todoist credential installs"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create todoist_client_setups_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an inbound HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAPIRequest records one Todoist REST round trip. statusCode is 0 when
// no response was received.
//
// It satisfies todoist.MetricsRecorder.
func (m *Metrics) RecordAPIRequest(ctx context.Context, operation, method string, statusCode int, duration time.Duration) {
	if m == nil || m.apiRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, StatusClass(statusCode)),
	)
	m.apiRequestsTotal.Add(ctx, 1, attrs)
	m.apiRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordResourceRead records a resource read. resource should be the
// registered URI or URI template, never the expanded URI.
func (m *Metrics) RecordResourceRead(ctx context.Context, resource, status string) {
	if m == nil || m.resourceReadsTotal == nil {
		return
	}
	m.resourceReadsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResource, resource),
		attribute.String(attrStatus, status),
	))
}

// RecordPromptRender records a prompt render.
func (m *Metrics) RecordPromptRender(ctx context.Context, prompt, status string) {
	if m == nil || m.promptRendersTotal == nil {
		return
	}
	m.promptRendersTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrPrompt, prompt),
		attribute.String(attrStatus, status),
	))
}

// RecordClientSetup records a setup_todoist attempt.
// Result should be one of SetupResultSuccess, SetupResultRejected.
func (m *Metrics) RecordClientSetup(ctx context.Context, result string) {
	if m == nil || m.clientSetupsTotal == nil {
		return
	}
	m.clientSetupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}
