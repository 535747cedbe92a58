package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

const (
	inboxName    = "Inbox"
	reviewSample = 5
)

type taskGroup struct {
	Project string
	Tasks   []todoist.Task
}

func dailyPlanningPrompt() Prompt {
	return Prompt{
		definition: mcp.NewPrompt("daily_planning",
			mcp.WithPromptDescription("Plan the day from the current Todoist tasks, grouped by project"),
		),
		label:  "daily planning",
		render: renderDailyPlanning,
	}
}

func renderDailyPlanning(ctx context.Context, sc *server.ServerContext, _ map[string]string) (string, error) {
	tasks, projects, err := snapshot(ctx, sc)
	if err != nil {
		return "", err
	}
	return execute("daily_planning", struct{ Groups []taskGroup }{groupByProject(tasks, projects)})
}

// groupByProject groups tasks by project name in order of first appearance.
// Tasks whose project is unknown land in Inbox.
func groupByProject(tasks []todoist.Task, projects []todoist.Project) []taskGroup {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	var groups []taskGroup
	index := make(map[string]int)
	for _, t := range tasks {
		name, ok := names[t.ProjectID]
		if !ok {
			name = inboxName
		}
		i, seen := index[name]
		if !seen {
			i = len(groups)
			index[name] = i
			groups = append(groups, taskGroup{Project: name})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

func taskBreakdownPrompt() Prompt {
	return Prompt{
		definition: mcp.NewPrompt("task_breakdown",
			mcp.WithPromptDescription("Break a complex task down into actionable Todoist subtasks"),
			mcp.WithArgument("task_description",
				mcp.ArgumentDescription("The task to break down"),
				mcp.RequiredArgument(),
			),
		),
		label: "task breakdown",
		render: func(_ context.Context, _ *server.ServerContext, args map[string]string) (string, error) {
			return execute("task_breakdown", struct{ TaskDescription string }{args["task_description"]})
		},
	}
}

// prioritySample is a priority bucket: its full size plus the first few tasks.
type prioritySample struct {
	Count  int
	Sample []todoist.Task
}

func newPrioritySample(tasks []todoist.Task) *prioritySample {
	if len(tasks) == 0 {
		return nil
	}
	sample := tasks
	if len(sample) > reviewSample {
		sample = sample[:reviewSample]
	}
	return &prioritySample{Count: len(tasks), Sample: sample}
}

type weeklyReview struct {
	TaskCount    int
	ProjectCount int
	High         *prioritySample
	Medium       *prioritySample
	OtherCount   int
}

func weeklyReviewPrompt() Prompt {
	return Prompt{
		definition: mcp.NewPrompt("weekly_review",
			mcp.WithPromptDescription("Review the week with task and project counts and the most important open tasks"),
		),
		label:  "weekly review",
		render: renderWeeklyReview,
	}
}

func renderWeeklyReview(ctx context.Context, sc *server.ServerContext, _ map[string]string) (string, error) {
	tasks, projects, err := snapshot(ctx, sc)
	if err != nil {
		return "", err
	}

	var high, medium []todoist.Task
	other := 0
	for _, t := range tasks {
		switch {
		case t.Priority == todoist.PriorityUrgent:
			high = append(high, t)
		case t.Priority == todoist.PriorityHigh:
			medium = append(medium, t)
		default:
			other++
		}
	}

	return execute("weekly_review", weeklyReview{
		TaskCount:    len(tasks),
		ProjectCount: len(projects),
		High:         newPrioritySample(high),
		Medium:       newPrioritySample(medium),
		OtherCount:   other,
	})
}
