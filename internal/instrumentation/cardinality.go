package instrumentation

import (
	"strconv"
	"strings"
)

// Cardinality helpers. Label values must come from a bounded set: never put
// task IDs, project IDs or expanded resource URIs into a metric label.

// StatusClass collapses an HTTP status code into its class ("2xx", "4xx", ...).
// Zero, meaning no response was received, maps to "none".
func StatusClass(code int) string {
	if code <= 0 {
		return "none"
	}
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// NormalizePath replaces ID segments of a Todoist REST path with "{id}" so
// that "/tasks/7025/close" and "/tasks/7026/close" share a label value.
func NormalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}

	segments := strings.Split(trimmed, "/")
	for i, seg := range segments {
		if i > 0 && isIDSegment(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isIDSegment(seg string) bool {
	switch seg {
	case "close", "reopen", "tasks", "projects", "sections", "labels", "comments", "collaborators":
		return false
	}
	return seg != ""
}

// Operation names used for Todoist API metrics and log attributes.
const (
	OperationTasksList      = "tasks.list"
	OperationTasksGet       = "tasks.get"
	OperationTasksCreate    = "tasks.create"
	OperationTasksUpdate    = "tasks.update"
	OperationTasksClose     = "tasks.close"
	OperationTasksReopen    = "tasks.reopen"
	OperationTasksDelete    = "tasks.delete"
	OperationProjectsList   = "projects.list"
	OperationProjectsGet    = "projects.get"
	OperationProjectsCreate = "projects.create"
)
