// Package render formats Todoist tasks and projects as the plain text that
// resources and prompts hand to the model. Output depends only on the input
// order, so the same snapshot always renders the same bytes.
package render

import (
	"fmt"
	"strings"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// PriorityMarker maps a priority to its colored marker.
func PriorityMarker(p todoist.Priority) string {
	switch p {
	case todoist.PriorityUrgent:
		return "🔴"
	case todoist.PriorityHigh:
		return "🟡"
	case todoist.PriorityMedium:
		return "🟢"
	default:
		return "⚪"
	}
}

// DueText returns the human-readable due descriptor. The bool is false when
// the task carries no due information.
func DueText(t todoist.Task) (string, bool) {
	if t.Due == nil {
		return "", false
	}
	switch {
	case t.Due.String != "":
		return t.Due.String, true
	case t.Due.Datetime != "":
		return t.Due.Datetime, true
	case t.Due.Date != "":
		return t.Due.Date, true
	}
	return "", false
}

// TaskLine renders "- <marker> <content> (ID: <id>, Priority: <p>)" with a
// trailing " - Due: <due>" when the task has a due date.
func TaskLine(t todoist.Task) string {
	line := fmt.Sprintf("- %s %s (ID: %s, Priority: %d)", PriorityMarker(t.Priority), t.Content, t.ID, t.Priority)
	if due, ok := DueText(t); ok {
		line += " - Due: " + due
	}
	return line
}

// ProjectLine renders "- <name> (ID: <id>)".
func ProjectLine(p todoist.Project) string {
	return fmt.Sprintf("- %s (ID: %s)", p.Name, p.ID)
}

// TaskList renders a header followed by one TaskLine per task.
func TaskList(header string, tasks []todoist.Task) string {
	var b strings.Builder
	b.WriteString(header)
	for _, t := range tasks {
		b.WriteByte('\n')
		b.WriteString(TaskLine(t))
	}
	return b.String()
}

// ProjectList renders a header followed by one ProjectLine per project.
func ProjectList(header string, projects []todoist.Project) string {
	var b strings.Builder
	b.WriteString(header)
	for _, p := range projects {
		b.WriteByte('\n')
		b.WriteString(ProjectLine(p))
	}
	return b.String()
}
