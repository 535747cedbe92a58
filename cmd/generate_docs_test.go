package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := map[string]string{
		"setup_todoist":  "Setup Tools",
		"get_tasks":      "Task Tools",
		"complete_tasks": "Task Tools",
		"reopen_task":    "Task Tools",
		"get_projects":   "Project Tools",
		"create_project": "Project Tools",
		"something_else": "Other",
	}
	for name, want := range tests {
		assert.Equal(t, want, getCategoryFromToolName(name), name)
	}
}

func TestGenerateDocs(t *testing.T) {
	t.Setenv("TODOIST_API_TOKEN", "")

	var buf bytes.Buffer
	require.NoError(t, generateDocs(context.Background(), &buf))
	out := buf.String()

	for _, want := range []string{
		"# MCP Reference",
		"## Setup Tools",
		"## Task Tools",
		"## Project Tools",
		"### setup_todoist",
		"### complete_tasks",
		"### create_project",
		"`todoist://project/{project_id}/tasks` (template)",
		"### daily_planning",
		"### project_review",
		"- `project_name` (required)",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "## Other")
}
