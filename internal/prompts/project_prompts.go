package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

const planningTaskLimit = 10

type projectPlanning struct {
	Name      string
	Project   *todoist.Project
	TaskCount int
	Shown     []todoist.Task
	More      int
}

func projectPlanningPrompt() Prompt {
	return Prompt{
		definition: mcp.NewPrompt("project_planning",
			mcp.WithPromptDescription("Plan a new or existing Todoist project"),
			mcp.WithArgument("project_name",
				mcp.ArgumentDescription("Project name, matched case-insensitively against existing projects"),
				mcp.RequiredArgument(),
			),
		),
		label:  "project planning",
		render: renderProjectPlanning,
	}
}

func renderProjectPlanning(ctx context.Context, sc *server.ServerContext, args map[string]string) (string, error) {
	name := args["project_name"]

	client, err := sc.TodoistClient()
	if err != nil {
		return "", err
	}
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return "", err
	}

	data := projectPlanning{Name: name}
	if project, ok := todoist.FindProjectByName(projects, name); ok {
		tasks, err := client.ListTasks(ctx, project.ID)
		if err != nil {
			return "", err
		}
		data.Project = &project
		data.TaskCount = len(tasks)
		data.Shown = tasks
		if len(tasks) > planningTaskLimit {
			data.Shown = tasks[:planningTaskLimit]
			data.More = len(tasks) - planningTaskLimit
		}
	}
	return execute("project_planning", data)
}

type projectStats struct {
	Name         string
	Marker       string
	Total        int
	HighPriority int
	Overdue      int
}

func projectReviewPrompt() Prompt {
	return Prompt{
		definition: mcp.NewPrompt("project_review",
			mcp.WithPromptDescription("Review all projects with task, high-priority and overdue counts"),
		),
		label:  "project review",
		render: renderProjectReview,
	}
}

func renderProjectReview(ctx context.Context, sc *server.ServerContext, _ map[string]string) (string, error) {
	tasks, projects, err := snapshot(ctx, sc)
	if err != nil {
		return "", err
	}
	return execute("project_review", struct{ Projects []projectStats }{reviewStats(tasks, projects, sc)})
}

// reviewStats computes per-project counts in project order. Overdue is
// judged against the server clock.
func reviewStats(tasks []todoist.Task, projects []todoist.Project, sc *server.ServerContext) []projectStats {
	now := sc.Now()
	stats := make([]projectStats, 0, len(projects))
	for _, p := range projects {
		s := projectStats{Name: p.Name}
		for _, t := range tasks {
			if t.ProjectID != p.ID {
				continue
			}
			s.Total++
			if t.Priority >= todoist.PriorityHigh {
				s.HighPriority++
			}
			if t.IsOverdue(now) {
				s.Overdue++
			}
		}
		switch {
		case s.Overdue > 0:
			s.Marker = "🔴"
		case s.HighPriority > 0:
			s.Marker = "🟡"
		default:
			s.Marker = "🟢"
		}
		stats = append(stats, s)
	}
	return stats
}

func projectCompletionPrompt() Prompt {
	return Prompt{
		definition: mcp.NewPrompt("project_completion",
			mcp.WithPromptDescription("Wrap up a finished project with a checklist and retrospective"),
			mcp.WithArgument("project_name",
				mcp.ArgumentDescription("Name of the completed project"),
				mcp.RequiredArgument(),
			),
		),
		label: "project completion",
		render: func(_ context.Context, _ *server.ServerContext, args map[string]string) (string, error) {
			return execute("project_completion", struct{ Name string }{args["project_name"]})
		},
	}
}
