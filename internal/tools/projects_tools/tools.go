package projects_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

// RegisterProjectsTools registers the project tools. create_project is
// skipped in read-only mode.
func RegisterProjectsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getProjectsTool := mcp.NewTool("get_projects",
		mcp.WithDescription("Get all Todoist projects"),
	)
	s.AddTool(getProjectsTool, common.InstrumentedToolHandler("get_projects", sc, handleGetProjects(sc)))

	getProjectTool := mcp.NewTool("get_project",
		mcp.WithDescription("Get a single Todoist project by ID"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The ID of the project"),
		),
	)
	s.AddTool(getProjectTool, common.InstrumentedToolHandler("get_project", sc, handleGetProject(sc)))

	if readOnly {
		return nil
	}

	createProjectTool := mcp.NewTool("create_project",
		mcp.WithDescription("Create a new Todoist project"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the project"),
		),
		mcp.WithString("color",
			mcp.Description("Project color, e.g. 'berry_red' or 'blue'"),
			mcp.Enum(todoist.Colors...),
		),
	)
	s.AddTool(createProjectTool, common.InstrumentedToolHandler("create_project", sc, handleCreateProject(sc)))

	return nil
}

func handleGetProjects(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("get projects", err), nil
		}

		projects, err := client.ListProjects(ctx)
		if err != nil {
			return common.FailedResult("get projects", err), nil
		}
		return common.JSONResult(projects)
	}
}

func handleGetProject(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("get project", err), nil
		}

		project, err := client.GetProject(ctx, request.GetString("project_id", ""))
		if err != nil {
			return common.FailedResult("get project", err), nil
		}
		return common.JSONResult(project)
	}
}

func handleCreateProject(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, err := sc.TodoistClient()
		if err != nil {
			return common.FailedResult("create project", err), nil
		}

		project, err := client.CreateProject(ctx, todoist.CreateProjectRequest{
			Name:  request.GetString("name", ""),
			Color: request.GetString("color", ""),
		})
		if err != nil {
			return common.FailedResult("create project", err), nil
		}
		return common.JSONResult(project)
	}
}
