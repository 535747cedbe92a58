// Package cmd implements the command-line interface for todoist-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - check: Verify the configured Todoist API token
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools and prompts
//
// The serve command is the default command when no subcommand is specified.
package cmd
