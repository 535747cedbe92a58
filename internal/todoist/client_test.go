package todoist_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/todoist/todoisttest"
)

type apiObservation struct {
	op     string
	method string
	status int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []apiObservation
}

func (f *fakeRecorder) RecordAPIRequest(_ context.Context, op, method string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, apiObservation{op, method, status})
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := todoist.NewClient(todoist.Config{Token: "   "})
	require.Error(t, err)

	var cfgErr *todoist.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := todoist.NewClient(todoist.Config{Token: "abc"})
	require.NoError(t, err)
	assert.Equal(t, todoist.DefaultBaseURL, c.BaseURL())

	c, err = todoist.NewClient(todoist.Config{Token: "abc", BaseURL: "http://localhost:9999/rest/v2/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/rest/v2", c.BaseURL())
}

func TestClient_SendsBearerAndJSONHeaders(t *testing.T) {
	backend := todoisttest.NewServer(t)
	c := backend.Client(t)

	_, err := c.ListProjects(context.Background())
	require.NoError(t, err)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+todoisttest.Token, reqs[0].Authorization)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.Equal(t, "/projects", reqs[0].Path)
}

func TestClient_ListTasks(t *testing.T) {
	backend := todoisttest.NewServer(t)
	work := backend.AddProject(todoist.Project{Name: "Work"})
	home := backend.AddProject(todoist.Project{Name: "Home"})
	backend.AddTask(todoist.Task{Content: "Write report", ProjectID: work.ID, Priority: 4})
	backend.AddTask(todoist.Task{Content: "Water plants", ProjectID: home.ID})
	c := backend.Client(t)

	all, err := c.ListTasks(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := c.ListTasks(context.Background(), work.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Write report", filtered[0].Content)
	for _, task := range filtered {
		assert.Equal(t, work.ID, task.ProjectID)
	}

	reqs := backend.Requests()
	assert.Empty(t, reqs[0].Query)
	assert.Equal(t, "project_id="+work.ID, reqs[1].Query)
}

func TestClient_ListTasks_EmptyIsNotNil(t *testing.T) {
	backend := todoisttest.NewServer(t)

	tasks, err := backend.Client(t).ListTasks(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestClient_CreateTask(t *testing.T) {
	for p := todoist.PriorityNormal; p <= todoist.PriorityUrgent; p++ {
		t.Run(strconv.Itoa(int(p)), func(t *testing.T) {
			backend := todoisttest.NewServer(t)
			c := backend.Client(t)

			task, err := c.CreateTask(context.Background(), todoist.CreateTaskRequest{
				Content:   "Buy milk",
				Priority:  p,
				Labels:    []string{"errand"},
				DueString: "tomorrow",
			})
			require.NoError(t, err)
			assert.Equal(t, p, task.Priority)
			assert.Equal(t, "Buy milk", task.Content)
			assert.Equal(t, []string{"errand"}, task.Labels)
			require.NotNil(t, task.Due)
			assert.Equal(t, "tomorrow", task.Due.String)
			assert.NotEmpty(t, task.ID)
		})
	}
}

func TestClient_CreateTask_BodyShape(t *testing.T) {
	backend := todoisttest.NewServer(t)
	c := backend.Client(t)

	_, err := c.CreateTask(context.Background(), todoist.CreateTaskRequest{Content: "Minimal"})
	require.NoError(t, err)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"content": "Minimal", "priority": float64(1)}, reqs[0].Body,
		"absent optional fields must be omitted, priority defaults to 1")
}

func TestClient_CreateTask_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   todoist.CreateTaskRequest
		field string
	}{
		{"empty content", todoist.CreateTaskRequest{Content: " "}, "content"},
		{"priority too high", todoist.CreateTaskRequest{Content: "x", Priority: 5}, "priority"},
		{"negative priority", todoist.CreateTaskRequest{Content: "x", Priority: -1}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := todoisttest.NewServer(t)

			_, err := backend.Client(t).CreateTask(context.Background(), tt.req)
			require.Error(t, err)

			var verr *todoist.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.True(t, todoist.IsValidation(err))
			assert.Empty(t, backend.Requests(), "no request may be sent for invalid input")
		})
	}
}

func TestClient_CompleteTask(t *testing.T) {
	backend := todoisttest.NewServer(t)
	task := backend.AddTask(todoist.Task{Content: "Done soon"})
	c := backend.Client(t)

	ok, err := c.CompleteTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, backend.IsClosed(task.ID))
	assert.Empty(t, backend.Tasks())
}

func TestClient_CompleteTask_UnknownID(t *testing.T) {
	backend := todoisttest.NewServer(t)

	ok, err := backend.Client(t).CompleteTask(context.Background(), "404404")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, todoist.IsNotFound(err))

	var remote *todoist.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.MethodPost, remote.Method)
	assert.Equal(t, "/tasks/404404/close", remote.Path)
	assert.Equal(t, "Task not found", remote.Body)
}

func TestClient_ReopenAndDeleteTask(t *testing.T) {
	backend := todoisttest.NewServer(t)
	task := backend.AddTask(todoist.Task{Content: "Recurring chore"})
	c := backend.Client(t)
	ctx := context.Background()

	_, err := c.CompleteTask(ctx, task.ID)
	require.NoError(t, err)

	ok, err := c.ReopenTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, backend.Tasks(), 1)

	ok, err = c.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, backend.Tasks())

	_, err = c.DeleteTask(ctx, task.ID)
	assert.True(t, todoist.IsNotFound(err))
}

func TestClient_GetAndUpdateTask(t *testing.T) {
	backend := todoisttest.NewServer(t)
	task := backend.AddTask(todoist.Task{Content: "Draft"})
	c := backend.Client(t)
	ctx := context.Background()

	got, err := c.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Content)

	content := "Final"
	prio := todoist.PriorityHigh
	updated, err := c.UpdateTask(ctx, task.ID, todoist.UpdateTaskRequest{Content: &content, Priority: &prio})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Content)
	assert.Equal(t, todoist.PriorityHigh, updated.Priority)

	reqs := backend.Requests()
	assert.Equal(t, map[string]any{"content": "Final", "priority": float64(3)}, reqs[len(reqs)-1].Body)
}

func TestClient_UpdateTask_Validation(t *testing.T) {
	backend := todoisttest.NewServer(t)
	c := backend.Client(t)
	ctx := context.Background()

	_, err := c.UpdateTask(ctx, "1", todoist.UpdateTaskRequest{})
	assert.True(t, todoist.IsValidation(err))

	bad := todoist.Priority(9)
	_, err = c.UpdateTask(ctx, "1", todoist.UpdateTaskRequest{Priority: &bad})
	assert.True(t, todoist.IsValidation(err))

	_, err = c.UpdateTask(ctx, "", todoist.UpdateTaskRequest{Priority: &bad})
	assert.True(t, todoist.IsValidation(err))

	assert.Empty(t, backend.Requests())
}

func TestClient_Projects(t *testing.T) {
	backend := todoisttest.NewServer(t)
	c := backend.Client(t)
	ctx := context.Background()

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	created, err := c.CreateProject(ctx, todoist.CreateProjectRequest{Name: "Garden", Color: "lime_green"})
	require.NoError(t, err)
	assert.Equal(t, "Garden", created.Name)
	assert.Equal(t, "lime_green", created.Color)

	got, err := c.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	projects, err = c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
}

func TestClient_CreateProject_Validation(t *testing.T) {
	backend := todoisttest.NewServer(t)
	c := backend.Client(t)

	_, err := c.CreateProject(context.Background(), todoist.CreateProjectRequest{Name: ""})
	assert.True(t, todoist.IsValidation(err))

	_, err = c.CreateProject(context.Background(), todoist.CreateProjectRequest{Name: "X", Color: "chartreuse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown color "chartreuse"`)

	assert.Empty(t, backend.Requests())
}

func TestClient_RejectedToken(t *testing.T) {
	backend := todoisttest.NewServer(t)
	c, err := todoist.NewClient(todoist.Config{Token: "wrong", BaseURL: backend.URL()})
	require.NoError(t, err)

	_, err = c.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, todoist.IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, todoist.StatusCode(err))
}

func TestClient_RemoteErrorCarriesBody(t *testing.T) {
	backend := todoisttest.NewServer(t)
	backend.Fail("GET /projects", http.StatusServiceUnavailable, "Service Unavailable")

	_, err := backend.Client(t).ListProjects(context.Background())
	require.Error(t, err)
	assert.Equal(t, "todoist projects.list: GET /projects returned 503: Service Unavailable", err.Error())

	backend.Recover()
	_, err = backend.Client(t).ListProjects(context.Background())
	assert.NoError(t, err)
}

func TestClient_TransportError(t *testing.T) {
	c, err := todoist.NewClient(todoist.Config{Token: "abc", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background(), "")
	require.Error(t, err)

	var terr *todoist.TransportError
	assert.True(t, errors.As(err, &terr))
	assert.Equal(t, "tasks.list", terr.Op)
	assert.Zero(t, todoist.StatusCode(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	backend := todoisttest.NewServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.Client(t).ListProjects(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_RecordsMetrics(t *testing.T) {
	backend := todoisttest.NewServer(t)
	rec := &fakeRecorder{}
	c, err := todoist.NewClient(todoist.Config{Token: todoisttest.Token, BaseURL: backend.URL(), Metrics: rec})
	require.NoError(t, err)

	_, _ = c.ListProjects(context.Background())
	_, _ = c.CompleteTask(context.Background(), "missing")

	assert.Equal(t, []apiObservation{
		{"projects.list", http.MethodGet, http.StatusOK},
		{"tasks.close", http.MethodPost, http.StatusNotFound},
	}, rec.seen)
}
