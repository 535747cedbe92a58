// Package common holds the wrappers and result helpers shared by every MCP
// tool: span, metric and audit instrumentation around handlers, and the
// JSON and "Failed to ..." result shapes the tools reply with.
package common
