// Package projects_tools provides the MCP tools for Todoist projects.
package projects_tools
