package todoist

import (
	"strings"
	"time"
)

// Priority is a Todoist task priority. 4 is the highest ("p1" in the Todoist UI).
type Priority int

const (
	PriorityNormal Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

// Valid reports whether p is one of the four Todoist priorities.
func (p Priority) Valid() bool {
	return p >= PriorityNormal && p <= PriorityUrgent
}

// Due is the due information attached to a task.
type Due struct {
	// String is the human readable form, e.g. "tomorrow" or "every monday".
	String      string `json:"string"`
	Date        string `json:"date"`
	IsRecurring bool   `json:"is_recurring"`
	Datetime    string `json:"datetime,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Lang        string `json:"lang,omitempty"`
}

// Time returns the due moment. Datetime wins over Date; a date-only due
// resolves to the end of that day in loc.
func (d *Due) Time(loc *time.Location) (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	if d.Datetime != "" {
		if t, err := time.Parse(time.RFC3339, d.Datetime); err == nil {
			return t, true
		}
		// Floating datetimes carry no offset.
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", d.Datetime, loc); err == nil {
			return t, true
		}
	}
	if d.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", d.Date, loc); err == nil {
			return t.Add(24*time.Hour - time.Nanosecond), true
		}
	}
	return time.Time{}, false
}

// Task is an active Todoist task.
type Task struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Description  string   `json:"description"`
	ProjectID    string   `json:"project_id,omitempty"`
	SectionID    *string  `json:"section_id"`
	ParentID     *string  `json:"parent_id"`
	Priority     Priority `json:"priority"`
	Labels       []string `json:"labels"`
	Due          *Due     `json:"due"`
	Order        int      `json:"order"`
	IsCompleted  bool     `json:"is_completed"`
	CommentCount int      `json:"comment_count"`
	CreatedAt    string   `json:"created_at,omitempty"`
	CreatorID    string   `json:"creator_id,omitempty"`
	AssigneeID   *string  `json:"assignee_id"`
	URL          string   `json:"url,omitempty"`
}

// HasProject reports whether the task references a project.
func (t Task) HasProject() bool {
	return t.ProjectID != ""
}

// IsOverdue reports whether the task is due strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	due, ok := t.Due.Time(now.Location())
	return ok && due.Before(now)
}

// Project is a Todoist project.
type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Color          string  `json:"color,omitempty"`
	ParentID       *string `json:"parent_id"`
	Order          int     `json:"order"`
	CommentCount   int     `json:"comment_count"`
	IsShared       bool    `json:"is_shared"`
	IsFavorite     bool    `json:"is_favorite"`
	IsInboxProject bool    `json:"is_inbox_project"`
	IsTeamInbox    bool    `json:"is_team_inbox"`
	ViewStyle      string  `json:"view_style,omitempty"`
	URL            string  `json:"url,omitempty"`
}

// CreateTaskRequest is the body of POST /tasks. Only Content is required;
// zero values are left out of the request.
type CreateTaskRequest struct {
	Content   string   `json:"content"`
	ProjectID string   `json:"project_id,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Priority  Priority `json:"priority"`
	DueString string   `json:"due_string,omitempty"`
}

// UpdateTaskRequest is the body of POST /tasks/{id}. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Content     *string   `json:"content,omitempty"`
	Description *string   `json:"description,omitempty"`
	Labels      *[]string `json:"labels,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueString   *string   `json:"due_string,omitempty"`
}

// Empty reports whether the request would change nothing.
func (r UpdateTaskRequest) Empty() bool {
	return r.Content == nil && r.Description == nil && r.Labels == nil && r.Priority == nil && r.DueString == nil
}

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Colors lists the project colors accepted by the Todoist API.
var Colors = []string{
	"berry_red", "red", "orange", "yellow", "olive_green",
	"lime_green", "green", "mint_green", "teal", "sky_blue",
	"light_blue", "blue", "grape", "violet", "lavender",
	"magenta", "salmon", "charcoal", "grey", "taupe",
}

// ValidColor reports whether c is one of Colors.
func ValidColor(c string) bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// FindProjectByName returns the first project whose name matches name
// case-insensitively.
func FindProjectByName(projects []Project, name string) (Project, bool) {
	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Project{}, false
}
