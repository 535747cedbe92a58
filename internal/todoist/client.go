package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"

	"github.com/teemow/todoist-mcp/internal/logging"
)

const (
	// DefaultBaseURL is the Todoist REST API v2 root.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"

	// DefaultTimeout bounds every request when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of a failed response is kept in RemoteError.
	maxErrorBody = 64 << 10
)

// MetricsRecorder receives one observation per round trip. statusCode is 0
// when no response arrived.
type MetricsRecorder interface {
	RecordAPIRequest(ctx context.Context, operation, method string, statusCode int, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	// Token is the Todoist API token. Required.
	Token string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient supplies the base transport. The client adds bearer
	// authentication on top of it.
	HTTPClient *http.Client

	Logger  logging.Logger
	Metrics MetricsRecorder
}

// Client performs Todoist REST API calls. It is safe for concurrent use.
// Each method performs exactly one HTTP round trip and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
	metrics MetricsRecorder
}

// NewClient creates a Client. An empty token yields a ConfigurationError.
func NewClient(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, &ConfigurationError{Err: errors.New("Todoist API token is empty")}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &ConfigurationError{Err: errors.Wrapf(err, "invalid base URL %q", cfg.BaseURL)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var base http.RoundTripper
	if cfg.HTTPClient != nil {
		base = cfg.HTTPClient.Transport
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
				Base:   base,
			},
		},
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTasks returns active tasks, restricted to projectID when it is not empty.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	var query url.Values
	if projectID != "" {
		query = url.Values{"project_id": {projectID}}
	}

	tasks := []Task{}
	if err := c.do(ctx, "tasks.list", http.MethodGet, "/tasks", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single active task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	if err := requireID("task_id", id); err != nil {
		return nil, err
	}

	var task Task
	if err := c.do(ctx, "tasks.get", http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task. A zero priority is sent as PriorityNormal.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if req.Priority == 0 {
		req.Priority = PriorityNormal
	}
	if !req.Priority.Valid() {
		return nil, invalidPriority(req.Priority)
	}

	var task Task
	if err := c.do(ctx, "tasks.create", http.MethodPost, "/tasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask changes the fields set in req and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*Task, error) {
	if err := requireID("task_id", id); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, &ValidationError{Field: "update", Message: "no fields to update"}
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		return nil, &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return nil, invalidPriority(*req.Priority)
	}

	var task Task
	if err := c.do(ctx, "tasks.update", http.MethodPost, "/tasks/"+url.PathEscape(id), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask closes a task. It returns true only on a 2xx answer; every
// other status is a *RemoteError.
func (c *Client) CompleteTask(ctx context.Context, id string) (bool, error) {
	if err := requireID("task_id", id); err != nil {
		return false, err
	}
	if err := c.do(ctx, "tasks.close", http.MethodPost, "/tasks/"+url.PathEscape(id)+"/close", nil, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// ReopenTask reopens a completed task.
func (c *Client) ReopenTask(ctx context.Context, id string) (bool, error) {
	if err := requireID("task_id", id); err != nil {
		return false, err
	}
	if err := c.do(ctx, "tasks.reopen", http.MethodPost, "/tasks/"+url.PathEscape(id)+"/reopen", nil, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) (bool, error) {
	if err := requireID("task_id", id); err != nil {
		return false, err
	}
	if err := c.do(ctx, "tasks.delete", http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// ListProjects returns every project visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	projects := []Project{}
	if err := c.do(ctx, "projects.list", http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	if err := requireID("project_id", id); err != nil {
		return nil, err
	}

	var project Project
	if err := c.do(ctx, "projects.get", http.MethodGet, "/projects/"+url.PathEscape(id), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a project. Color must be one of Colors when set.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if req.Color != "" && !ValidColor(req.Color) {
		return nil, &ValidationError{
			Field:   "color",
			Message: "unknown color " + strconv.Quote(req.Color) + ", expected one of " + strings.Join(Colors, ", "),
		}
	}

	var project Project
	if err := c.do(ctx, "projects.create", http.MethodPost, "/projects", nil, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// do performs one round trip. out may be nil when the response body is ignored.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "todoist %s: encode request", op)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrapf(err, "todoist %s: build request", op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(ctx, op, method, 0, start)
		c.logger.Debug("todoist request failed", logging.Operation(op), logging.Err(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.observe(ctx, op, method, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("todoist request rejected",
			logging.Operation(op),
			"status_code", resp.StatusCode)
		return &RemoteError{
			Op:         op,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "todoist %s: decode response", op)
	}
	return nil
}

func (c *Client) observe(ctx context.Context, op, method string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordAPIRequest(ctx, op, method, status, time.Since(start))
	}
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}

func invalidPriority(p Priority) error {
	return &ValidationError{
		Field:   "priority",
		Message: "must be between 1 and 4, got " + strconv.Itoa(int(p)),
	}
}
