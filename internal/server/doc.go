// Package server holds the shared state of the todoist-mcp server and its
// HTTP plumbing.
//
// ServerContext owns the active Todoist client behind an atomic pointer,
// so setup_todoist can replace the credential while other handlers run.
// It also carries the metrics recorder, audit logger, clock and read-only flag
// that tool, resource and prompt handlers consult.
//
// HTTPServer serves the streamable HTTP transport on /mcp together with
// /healthz, /readyz and /healthz/detailed. MetricsServer serves Prometheus
// metrics on a separate port.
package server
