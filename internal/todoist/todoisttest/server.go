// Package todoisttest provides an in-memory Todoist REST API for tests.
package todoisttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// Token is the API token accepted by servers created with NewServer.
const Token = "test-token"

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          map[string]any
}

type failure struct {
	status int
	body   string
}

// Server fakes the subset of the Todoist REST API the client uses.
// Routes are rooted at URL(), which stands in for DefaultBaseURL.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	token    string
	nextID   int
	projects []todoist.Project
	tasks    []todoist.Task
	closed   map[string]todoist.Task
	failures map[string]failure
	requests []Request
}

// NewServer starts a fake backend that accepts Token. It is closed when the
// test ends.
func NewServer(tb testing.TB) *Server {
	tb.Helper()

	s := &Server{
		token:    Token,
		nextID:   1000,
		closed:   make(map[string]todoist.Task),
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks", s.listTasks)
	mux.HandleFunc("POST /tasks", s.createTask)
	mux.HandleFunc("GET /tasks/{id}", s.getTask)
	mux.HandleFunc("POST /tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /tasks/{id}", s.deleteTask)
	mux.HandleFunc("POST /tasks/{id}/close", s.closeTask)
	mux.HandleFunc("POST /tasks/{id}/reopen", s.reopenTask)
	mux.HandleFunc("GET /projects", s.listProjects)
	mux.HandleFunc("POST /projects", s.createProject)
	mux.HandleFunc("GET /projects/{id}", s.getProject)

	s.srv = httptest.NewServer(s.middleware(mux))
	tb.Cleanup(s.srv.Close)
	return s
}

// URL is the base URL to pass as todoist.Config.BaseURL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Client returns a todoist.Client pointed at the fake backend.
func (s *Server) Client(tb testing.TB) *todoist.Client {
	tb.Helper()
	c, err := todoist.NewClient(todoist.Config{Token: Token, BaseURL: s.URL()})
	if err != nil {
		tb.Fatalf("todoisttest: new client: %v", err)
	}
	return c
}

// AddProject seeds a project and returns it with its assigned ID.
func (s *Server) AddProject(p todoist.Project) todoist.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.newID()
	}
	s.projects = append(s.projects, p)
	return p
}

// AddTask seeds an active task and returns it with its assigned ID.
func (s *Server) AddTask(t todoist.Task) todoist.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.Priority == 0 {
		t.Priority = todoist.PriorityNormal
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Tasks returns a snapshot of the active tasks.
func (s *Server) Tasks() []todoist.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]todoist.Task(nil), s.tasks...)
}

// Projects returns a snapshot of the projects.
func (s *Server) Projects() []todoist.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]todoist.Project(nil), s.projects...)
}

// IsClosed reports whether the task with id was completed.
func (s *Server) IsClosed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.closed[id]
	return ok
}

// Fail makes every request matching route (for example "GET /projects")
// answer with status and body until Recover is called.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, body: body}
}

// Recover clears all injected failures.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) newID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		}
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		f, failing := s.failures[r.Method+" "+routeOf(r.URL.Path)]
		token := s.token
		s.mu.Unlock()

		if rec.Authorization != "Bearer "+token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if failing {
			http.Error(w, f.body, f.status)
			return
		}

		// Bodies were consumed above; handlers read rec.Body instead.
		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), rec.Body)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []todoist.Task{}
	for _, t := range s.tasks {
		if projectID == "" || t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	content, _ := body["content"].(string)
	if content == "" {
		http.Error(w, "Argument content is missing", http.StatusBadRequest)
		return
	}

	task := todoist.Task{Content: content, Priority: todoist.PriorityNormal, Labels: []string{}}
	if p, ok := body["priority"].(float64); ok {
		task.Priority = todoist.Priority(p)
	}
	if pid, ok := body["project_id"].(string); ok {
		task.ProjectID = pid
	}
	if labels, ok := body["labels"].([]any); ok {
		for _, l := range labels {
			task.Labels = append(task.Labels, fmt.Sprint(l))
		}
	}
	if ds, ok := body["due_string"].(string); ok && ds != "" {
		task.Due = &todoist.Due{String: ds}
	}

	s.mu.Lock()
	if task.ProjectID == "" && len(s.projects) > 0 {
		task.ProjectID = s.projects[0].ID
	}
	task.ID = s.newID()
	task.URL = "https://todoist.com/showTask?id=" + task.ID
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) findTask(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(r.PathValue("id"))
	if i < 0 {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.tasks[i])
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(r.PathValue("id"))
	if i < 0 {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	t := &s.tasks[i]
	if v, ok := body["content"].(string); ok {
		t.Content = v
	}
	if v, ok := body["description"].(string); ok {
		t.Description = v
	}
	if v, ok := body["priority"].(float64); ok {
		t.Priority = todoist.Priority(v)
	}
	if v, ok := body["due_string"].(string); ok {
		t.Due = &todoist.Due{String: v}
	}
	if v, ok := body["labels"].([]any); ok {
		t.Labels = []string{}
		for _, l := range v {
			t.Labels = append(t.Labels, fmt.Sprint(l))
		}
	}
	writeJSON(w, http.StatusOK, *t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(r.PathValue("id"))
	if i < 0 {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) closeTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(r.PathValue("id"))
	if i < 0 {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	t := s.tasks[i]
	t.IsCompleted = true
	s.closed[t.ID] = t
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reopenTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	t, ok := s.closed[id]
	if !ok {
		if s.findTask(id) >= 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	delete(s.closed, id)
	t.IsCompleted = false
	s.tasks = append(s.tasks, t)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listProjects(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]todoist.Project{}, s.projects...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	for _, p := range s.projects {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	http.Error(w, "Project not found", http.StatusNotFound)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	name, _ := body["name"].(string)
	if name == "" {
		http.Error(w, "Argument name is missing", http.StatusBadRequest)
		return
	}
	color, _ := body["color"].(string)
	if color == "" {
		color = "charcoal"
	}

	s.mu.Lock()
	p := todoist.Project{ID: s.newID(), Name: name, Color: color, ViewStyle: "list"}
	p.URL = "https://todoist.com/showProject?id=" + p.ID
	s.projects = append(s.projects, p)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}
