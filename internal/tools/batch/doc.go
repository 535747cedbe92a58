// Package batch provides helpers for tools that act on several Todoist
// items in one call.
//
// It parses parameters that accept either a single ID or a list, runs the
// per-item operation sequentially and reports partial failures in one JSON
// summary.
package batch
