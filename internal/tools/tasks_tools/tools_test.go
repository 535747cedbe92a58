package tasks_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoist-mcp/internal/mcptest"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/todoist/todoisttest"
)

func newHarness(t *testing.T, readOnly bool, opts ...server.Option) (*mcptest.Harness, *todoisttest.Server) {
	t.Helper()

	backend := todoisttest.NewServer(t)
	opts = append([]server.Option{
		server.WithClientConfig(todoist.Config{Token: todoisttest.Token, BaseURL: backend.URL()}),
	}, opts...)
	sc, err := server.NewServerContext(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(false))
	require.NoError(t, RegisterTasksTools(s, sc, readOnly))
	return mcptest.New(t, s), backend
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(text), &v), text)
	return v
}

func TestRegisterTasksTools(t *testing.T) {
	h, _ := newHarness(t, false)
	assert.ElementsMatch(t, []string{
		"get_tasks", "get_task", "create_task", "update_task",
		"complete_task", "complete_tasks", "reopen_task", "delete_task",
	}, h.ToolNames())

	ro, _ := newHarness(t, true)
	assert.ElementsMatch(t, []string{"get_tasks", "get_task"}, ro.ToolNames())
}

func TestGetTasks(t *testing.T) {
	h, backend := newHarness(t, false)
	work := backend.AddProject(todoist.Project{Name: "Work"})
	home := backend.AddProject(todoist.Project{Name: "Home"})
	backend.AddTask(todoist.Task{Content: "Write report", ProjectID: work.ID})
	backend.AddTask(todoist.Task{Content: "Water plants", ProjectID: home.ID})

	res := h.CallTool("get_tasks", nil)
	require.False(t, res.IsError, res.Text)
	assert.Len(t, decode[[]todoist.Task](t, res.Text), 2)

	res = h.CallTool("get_tasks", map[string]any{"project_id": work.ID})
	require.False(t, res.IsError, res.Text)
	tasks := decode[[]todoist.Task](t, res.Text)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write report", tasks[0].Content)
}

func TestGetTasks_Empty(t *testing.T) {
	h, _ := newHarness(t, false)

	res := h.CallTool("get_tasks", nil)
	require.False(t, res.IsError)
	assert.Equal(t, "[]", res.Text)
}

func TestGetTasks_NotConfigured(t *testing.T) {
	sc, err := server.NewServerContext(context.Background())
	require.NoError(t, err)
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test", "0.0.0")
	require.NoError(t, RegisterTasksTools(s, sc, false))
	h := mcptest.New(t, s)

	res := h.CallTool("get_tasks", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Failed to get tasks: Todoist client not configured", res.Text)
}

func TestGetTasks_BackendFailure(t *testing.T) {
	h, backend := newHarness(t, false)
	backend.Fail("GET /tasks", http.StatusServiceUnavailable, "maintenance")

	res := h.CallTool("get_tasks", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Failed to get tasks: ")
	assert.Contains(t, res.Text, "returned 503")
	assert.Contains(t, res.Text, "maintenance")
}

func TestGetTask(t *testing.T) {
	h, backend := newHarness(t, false)
	task := backend.AddTask(todoist.Task{Content: "Call mom"})

	res := h.CallTool("get_task", map[string]any{"task_id": task.ID})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "Call mom", decode[todoist.Task](t, res.Text).Content)

	res = h.CallTool("get_task", map[string]any{"task_id": "missing"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Failed to get task: ")
	assert.Contains(t, res.Text, "returned 404")
}

func TestCreateTask(t *testing.T) {
	h, backend := newHarness(t, false)
	project := backend.AddProject(todoist.Project{Name: "Work"})

	res := h.CallTool("create_task", map[string]any{
		"content":    "Prepare slides",
		"project_id": project.ID,
		"labels":     []any{"deep-work", "q4"},
		"priority":   4,
		"due_string": "tomorrow",
	})
	require.False(t, res.IsError, res.Text)

	task := decode[todoist.Task](t, res.Text)
	assert.Equal(t, "Prepare slides", task.Content)
	assert.Equal(t, project.ID, task.ProjectID)
	assert.Equal(t, todoist.PriorityUrgent, task.Priority)
	assert.Equal(t, []string{"deep-work", "q4"}, task.Labels)
	require.NotNil(t, task.Due)
	assert.Equal(t, "tomorrow", task.Due.String)

	reqs := backend.Requests()
	body := reqs[len(reqs)-1].Body
	assert.Equal(t, "Prepare slides", body["content"])
	assert.Equal(t, float64(4), body["priority"])
}

func TestCreateTask_DefaultPriority(t *testing.T) {
	h, backend := newHarness(t, false)

	res := h.CallTool("create_task", map[string]any{"content": "Buy milk"})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, todoist.PriorityNormal, decode[todoist.Task](t, res.Text).Priority)

	body := backend.Requests()[0].Body
	assert.Equal(t, float64(1), body["priority"])
	assert.NotContains(t, body, "project_id")
	assert.NotContains(t, body, "labels")
	assert.NotContains(t, body, "due_string")
}

func TestCreateTask_InvalidPriority(t *testing.T) {
	h, backend := newHarness(t, false)

	res := h.CallTool("create_task", map[string]any{"content": "x", "priority": 5})
	assert.True(t, res.IsError)
	assert.Equal(t, "Failed to create task: invalid priority: must be between 1 and 4, got 5", res.Text)
	assert.Empty(t, backend.Requests(), "validation must happen before any request")
}

func TestCreateTask_EmptyContent(t *testing.T) {
	h, backend := newHarness(t, false)

	res := h.CallTool("create_task", map[string]any{"content": "  "})
	assert.True(t, res.IsError)
	assert.Equal(t, "Failed to create task: invalid content: must not be empty", res.Text)
	assert.Empty(t, backend.Requests())
}

func TestUpdateTask_OnlySentFields(t *testing.T) {
	h, backend := newHarness(t, false)
	task := backend.AddTask(todoist.Task{Content: "Draft", Labels: []string{"a"}})

	res := h.CallTool("update_task", map[string]any{"task_id": task.ID, "priority": 3})
	require.False(t, res.IsError, res.Text)

	updated := decode[todoist.Task](t, res.Text)
	assert.Equal(t, "Draft", updated.Content)
	assert.Equal(t, todoist.PriorityHigh, updated.Priority)
	assert.Equal(t, []string{"a"}, updated.Labels)

	body := backend.Requests()[0].Body
	assert.Equal(t, map[string]any{"priority": float64(3)}, body)
}

func TestUpdateTask_ClearLabels(t *testing.T) {
	h, backend := newHarness(t, false)
	task := backend.AddTask(todoist.Task{Content: "Draft", Labels: []string{"a"}})

	res := h.CallTool("update_task", map[string]any{"task_id": task.ID, "labels": []any{}})
	require.False(t, res.IsError, res.Text)
	assert.Empty(t, decode[todoist.Task](t, res.Text).Labels)
}

func TestUpdateTask_NothingToUpdate(t *testing.T) {
	h, backend := newHarness(t, false)
	task := backend.AddTask(todoist.Task{Content: "Draft"})

	res := h.CallTool("update_task", map[string]any{"task_id": task.ID})
	assert.True(t, res.IsError)
	assert.Equal(t, "Failed to update task: invalid update: no fields to update", res.Text)
	assert.Empty(t, backend.Requests())
}

func TestCompleteTask(t *testing.T) {
	h, backend := newHarness(t, false)
	task := backend.AddTask(todoist.Task{Content: "Done soon"})

	res := h.CallTool("complete_task", map[string]any{"task_id": task.ID})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "{\n  \"status\": \"completed\",\n  \"task_id\": \""+task.ID+"\"\n}", res.Text)
	assert.True(t, backend.IsClosed(task.ID))
	assert.Empty(t, backend.Tasks())
}

func TestCompleteTask_Unknown(t *testing.T) {
	h, _ := newHarness(t, false)

	res := h.CallTool("complete_task", map[string]any{"task_id": "404404"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Failed to complete task: ")
	assert.Contains(t, res.Text, "returned 404")
}

func TestCompleteTasks(t *testing.T) {
	h, backend := newHarness(t, false)
	a := backend.AddTask(todoist.Task{Content: "a"})
	b := backend.AddTask(todoist.Task{Content: "b"})

	res := h.CallTool("complete_tasks", map[string]any{"task_ids": []any{a.ID, "missing", b.ID}})
	require.False(t, res.IsError, res.Text)

	var summary struct {
		Total      int `json:"total"`
		Successful int `json:"successful"`
		Failed     int `json:"failed"`
		Results    []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "missing", summary.Results[1].ID)
	assert.Contains(t, summary.Results[1].Error, "returned 404")
	assert.True(t, backend.IsClosed(a.ID))
	assert.True(t, backend.IsClosed(b.ID))
}

func TestCompleteTasks_SingleString(t *testing.T) {
	h, backend := newHarness(t, false)
	a := backend.AddTask(todoist.Task{Content: "a"})

	res := h.CallTool("complete_tasks", map[string]any{"task_ids": a.ID})
	require.False(t, res.IsError, res.Text)
	assert.True(t, backend.IsClosed(a.ID))
}

func TestCompleteTasks_InvalidIDs(t *testing.T) {
	h, backend := newHarness(t, false)

	res := h.CallTool("complete_tasks", map[string]any{"task_ids": []any{}})
	assert.True(t, res.IsError)
	assert.Equal(t, "Failed to complete tasks: task_ids cannot be empty", res.Text)
	assert.Empty(t, backend.Requests())
}

func TestReopenTask(t *testing.T) {
	h, backend := newHarness(t, false)
	task := backend.AddTask(todoist.Task{Content: "again"})

	require.False(t, h.CallTool("complete_task", map[string]any{"task_id": task.ID}).IsError)
	res := h.CallTool("reopen_task", map[string]any{"task_id": task.ID})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, `"status": "reopened"`)
	assert.False(t, backend.IsClosed(task.ID))
	assert.Len(t, backend.Tasks(), 1)
}

func TestDeleteTask(t *testing.T) {
	h, backend := newHarness(t, false)
	task := backend.AddTask(todoist.Task{Content: "obsolete"})

	res := h.CallTool("delete_task", map[string]any{"task_id": task.ID})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, `"status": "deleted"`)
	assert.Empty(t, backend.Tasks())

	res = h.CallTool("delete_task", map[string]any{"task_id": task.ID})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Failed to delete task: ")
}
