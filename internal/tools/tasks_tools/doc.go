// Package tasks_tools provides the MCP tools for Todoist tasks: listing and
// fetching tasks, creating and updating them, and closing, reopening or
// deleting them one at a time or in batches.
package tasks_tools
