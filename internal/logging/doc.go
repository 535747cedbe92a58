// Package logging provides structured logging utilities for todoist-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "tasks.list")
//	logger.Info("listing tasks",
//	    logging.ProjectID(projectID),
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// The Todoist API token is never logged directly; use SanitizeToken.
package logging
