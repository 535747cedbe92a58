package cmd

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/prompts"
	"github.com/teemow/todoist-mcp/internal/resources"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/tools/projects_tools"
	"github.com/teemow/todoist-mcp/internal/tools/setup_tools"
	"github.com/teemow/todoist-mcp/internal/tools/tasks_tools"
)

const serverInstructions = `This server manages the user's Todoist account.
Use get_tasks and get_projects to look around before changing anything.
Priorities run from 1 (normal) to 4 (urgent).
If a call fails with "Todoist client not configured", ask the user for an
API token and call setup_todoist.`

// newMCPServer creates the MCP server with every capability this binary offers.
func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("todoist-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithInstructions(serverInstructions),
		mcpserver.WithRecovery(),
	)
}

// registerAll registers all MCP tools, resources and prompts.
func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name:     "Setup",
			register: func() error { return setup_tools.RegisterSetupTools(mcpSrv, sc) },
		},
		{
			name:     "Tasks",
			register: func() error { return tasks_tools.RegisterTasksTools(mcpSrv, sc, readOnly) },
		},
		{
			name:     "Projects",
			register: func() error { return projects_tools.RegisterProjectsTools(mcpSrv, sc, readOnly) },
		},
		{
			name:     "Resources",
			register: func() error { return resources.RegisterTodoistResources(mcpSrv, sc) },
		},
		{
			name:     "Prompts",
			register: func() error { return prompts.RegisterPrompts(mcpSrv, sc) },
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
