// Package resources provides the read-only Todoist views MCP clients can
// fetch: all tasks, all projects, and the tasks of one project through a
// URI template. Every resource is plain text. A failed backend call is
// rendered as an error line in the resource body rather than returned as a
// protocol error.
package resources
