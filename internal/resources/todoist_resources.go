package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/render"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

const (
	TasksURI           = "todoist://tasks"
	ProjectsURI        = "todoist://projects"
	ProjectTasksURI    = "todoist://project/{project_id}/tasks"
	projectTasksPrefix = "todoist://project/"
	projectTasksSuffix = "/tasks"

	mimeTypeText = "text/plain"
)

// RegisterTodoistResources registers the task and project resources.
func RegisterTodoistResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	tasksResource := mcp.NewResource(
		TasksURI,
		"Todoist Tasks",
		mcp.WithResourceDescription("All active Todoist tasks"),
		mcp.WithMIMEType(mimeTypeText),
	)
	s.AddResource(tasksResource, instrumented(sc, TasksURI, func(ctx context.Context, _ mcp.ReadResourceRequest) (string, error) {
		return tasksText(ctx, sc)
	}))

	projectsResource := mcp.NewResource(
		ProjectsURI,
		"Todoist Projects",
		mcp.WithResourceDescription("All Todoist projects"),
		mcp.WithMIMEType(mimeTypeText),
	)
	s.AddResource(projectsResource, instrumented(sc, ProjectsURI, func(ctx context.Context, _ mcp.ReadResourceRequest) (string, error) {
		return projectsText(ctx, sc)
	}))

	projectTasksTemplate := mcp.NewResourceTemplate(
		ProjectTasksURI,
		"Todoist Project Tasks",
		mcp.WithTemplateDescription("Active tasks of one Todoist project"),
		mcp.WithTemplateMIMEType(mimeTypeText),
	)
	s.AddResourceTemplate(projectTasksTemplate, instrumented(sc, ProjectTasksURI, func(ctx context.Context, req mcp.ReadResourceRequest) (string, error) {
		return projectTasksText(ctx, sc, projectIDFromURI(req.Params.URI))
	}))

	return nil
}

// textHandler produces a resource body. A non-nil error marks the read as
// failed for metrics; the text is served either way.
type textHandler func(ctx context.Context, req mcp.ReadResourceRequest) (string, error)

func instrumented(sc *server.ServerContext, name string, h textHandler) mcpserver.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ctx, span := instrumentation.StartResourceSpan(ctx, name)
		defer span.End()

		text, err := h(ctx, req)
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
			sc.Logger().Warn("resource read failed",
				logging.Resource(req.Params.URI),
				logging.Err(err))
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		sc.Metrics().RecordResourceRead(ctx, name, status)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: mimeTypeText,
				Text:     text,
			},
		}, nil
	}
}

func tasksText(ctx context.Context, sc *server.ServerContext) (string, error) {
	client, err := sc.TodoistClient()
	if err != nil {
		return fmt.Sprintf("Error fetching tasks: %v", err), err
	}
	tasks, err := client.ListTasks(ctx, "")
	if err != nil {
		return fmt.Sprintf("Error fetching tasks: %v", err), err
	}
	if len(tasks) == 0 {
		return "No tasks found", nil
	}
	return render.TaskList(fmt.Sprintf("Todoist Tasks (%d total):", len(tasks)), tasks), nil
}

func projectsText(ctx context.Context, sc *server.ServerContext) (string, error) {
	client, err := sc.TodoistClient()
	if err != nil {
		return fmt.Sprintf("Error fetching projects: %v", err), err
	}
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return fmt.Sprintf("Error fetching projects: %v", err), err
	}
	if len(projects) == 0 {
		return "No projects found", nil
	}
	return render.ProjectList(fmt.Sprintf("Todoist Projects (%d total):", len(projects)), projects), nil
}

func projectTasksText(ctx context.Context, sc *server.ServerContext, projectID string) (string, error) {
	if projectID == "" || strings.Contains(projectID, "/") {
		err := &todoist.ValidationError{Field: "project_id", Message: "must be a single non-empty path segment"}
		return fmt.Sprintf("Error fetching tasks for project %s: %v", projectID, err), err
	}
	client, err := sc.TodoistClient()
	if err != nil {
		return fmt.Sprintf("Error fetching tasks for project %s: %v", projectID, err), err
	}
	tasks, err := client.ListTasks(ctx, projectID)
	if err != nil {
		return fmt.Sprintf("Error fetching tasks for project %s: %v", projectID, err), err
	}
	if len(tasks) == 0 {
		return fmt.Sprintf("No tasks found for project %s", projectID), nil
	}
	return render.TaskList(fmt.Sprintf("Tasks for Project %s (%d total):", projectID, len(tasks)), tasks), nil
}

// projectIDFromURI extracts {project_id} from todoist://project/{project_id}/tasks.
func projectIDFromURI(uri string) string {
	id := strings.TrimPrefix(uri, projectTasksPrefix)
	return strings.TrimSuffix(id, projectTasksSuffix)
}
