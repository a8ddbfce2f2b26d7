package ticktick

import (
	"time"
)

// DateLayout is the timestamp layout TickTick uses for startDate, dueDate
// and completedTime, e.g. 2019-11-13T03:00:00.000+0000.
const DateLayout = "2006-01-02T15:04:05.000-0700"

// Priority is the TickTick task priority. Only the four named values are valid.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityLow    Priority = 1
	PriorityMedium Priority = 3
	PriorityHigh   Priority = 5
)

// Valid reports whether p is one of the priorities TickTick accepts.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string {
	switch p {
	case PriorityNone:
		return "None"
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Status values
const (
	TaskStatusNormal    = 0
	TaskStatusCompleted = 2
	ItemStatusNormal    = 0
	ItemStatusCompleted = 1
)

// Defaults applied by CreateProject
const (
	DefaultProjectColor = "#F18181"
	DefaultProjectView  = "list"
	DefaultProjectKind  = "TASK"
)

const projectPermissionRead = "read"

// Project represents a TickTick project (list)
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	SortOrder  int64  `json:"sortOrder,omitempty"`
	Closed     bool   `json:"closed,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	ViewMode   string `json:"viewMode,omitempty"`
	Permission string `json:"permission,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// ReadOnly reports whether the project is shared with read permission only.
func (p Project) ReadOnly() bool {
	return p.Permission == projectPermissionRead
}

// Column represents a kanban column of a project
type Column struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sortOrder,omitempty"`
}

// ProjectData is a project together with its undone tasks and columns.
type ProjectData struct {
	Project Project  `json:"project"`
	Tasks   []Task   `json:"tasks"`
	Columns []Column `json:"columns,omitempty"`
}

// ChecklistItem represents a subtask entry in a task checklist
type ChecklistItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	CompletedTime string `json:"completedTime,omitempty"`
	IsAllDay      bool   `json:"isAllDay,omitempty"`
	SortOrder     int64  `json:"sortOrder,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	TimeZone      string `json:"timeZone,omitempty"`
}

// Completed reports whether the checklist item is checked.
func (i ChecklistItem) Completed() bool {
	return i.Status == ItemStatusCompleted
}

// Task represents a TickTick task
type Task struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"projectId"`
	Title         string          `json:"title"`
	Content       string          `json:"content,omitempty"`
	Desc          string          `json:"desc,omitempty"`
	IsAllDay      bool            `json:"isAllDay,omitempty"`
	StartDate     string          `json:"startDate,omitempty"`
	DueDate       string          `json:"dueDate,omitempty"`
	TimeZone      string          `json:"timeZone,omitempty"`
	Reminders     []string        `json:"reminders,omitempty"`
	RepeatFlag    string          `json:"repeatFlag,omitempty"`
	Priority      Priority        `json:"priority"`
	Status        int             `json:"status"`
	CompletedTime string          `json:"completedTime,omitempty"`
	SortOrder     int64           `json:"sortOrder,omitempty"`
	ParentID      string          `json:"parentId,omitempty"`
	Items         []ChecklistItem `json:"items,omitempty"`
}

// Completed reports whether the task is done.
func (t Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}

// Due returns the parsed due date. ok is false when the task has no due
// date or it is not in DateLayout.
func (t Task) Due() (due time.Time, ok bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := time.Parse(DateLayout, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// ProjectInput represents the input for creating or updating a project.
// Empty fields are left untouched on update.
type ProjectInput struct {
	Name     string `json:"name,omitempty" validate:"required"`
	Color    string `json:"color,omitempty"`
	ViewMode string `json:"viewMode,omitempty" validate:"omitempty,oneof=list kanban timeline"`
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=TASK NOTE"`
}

// TaskInput represents the input for creating or updating a task.
// StartDate and DueDate are ISO 8601 timestamps, e.g. 2025-11-07T09:00:00+0000.
type TaskInput struct {
	Title     string    `json:"title,omitempty" validate:"required"`
	ProjectID string    `json:"projectId" validate:"required"`
	Content   string    `json:"content,omitempty"`
	StartDate string    `json:"startDate,omitempty" validate:"omitempty,isodate"`
	DueDate   string    `json:"dueDate,omitempty" validate:"omitempty,isodate"`
	Priority  *Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	IsAllDay  *bool     `json:"isAllDay,omitempty"`
}

// SubtaskInput represents the input for creating a subtask. The subtask
// lives in the same project as its parent.
type SubtaskInput struct {
	Title     string    `json:"title" validate:"required"`
	ParentID  string    `json:"parentId" validate:"required"`
	ProjectID string    `json:"projectId" validate:"required"`
	Content   string    `json:"content,omitempty"`
	Priority  *Priority `json:"priority,omitempty" validate:"omitempty,priority"`
}

// taskBody is the wire form of a task create or update.
type taskBody struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title,omitempty"`
	ProjectID string    `json:"projectId"`
	ParentID  string    `json:"parentId,omitempty"`
	Content   string    `json:"content,omitempty"`
	StartDate string    `json:"startDate,omitempty"`
	DueDate   string    `json:"dueDate,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	IsAllDay  *bool     `json:"isAllDay,omitempty"`
}

// PriorityPtr returns a pointer to p, for the optional input fields.
func PriorityPtr(p Priority) *Priority {
	return &p
}
