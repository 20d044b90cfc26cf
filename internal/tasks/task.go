// Package tasks holds the work-breakdown model: tasks, the in-memory store,
// workflow steps and dependency checks.
package tasks

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a task.
// Unknown values are kept as opaque strings.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Task is a single node of the work breakdown.
type Task struct {
	ID                int           `json:"id"`
	Title             string        `json:"title"`
	Description       string        `json:"description,omitempty"`
	Deadline          *time.Time    `json:"deadline,omitempty"`
	Dependencies      []int         `json:"dependencies"`
	AssignedTo        []string      `json:"assigned_to"`
	Status            Status        `json:"status"`
	Priority          *float64      `json:"priority,omitempty"`
	ParentID          *int          `json:"parent_id,omitempty"`
	Urgency           *float64      `json:"urgency,omitempty"`
	Importance        *float64      `json:"importance,omitempty"`
	GithubIssueNumber *int          `json:"github_issue_number,omitempty"`
	WorkflowSteps     WorkflowSteps `json:"workflow_steps"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// IsAssigned reports whether anyone is assigned to the task.
func (t *Task) IsAssigned() bool {
	return len(t.AssignedTo) > 0
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// CreateOption customizes a task created through Store.Create.
type CreateOption func(*Task)

// WithDescription sets the task description.
func WithDescription(desc string) CreateOption {
	return func(t *Task) { t.Description = desc }
}

// WithDeadline sets the task deadline.
func WithDeadline(d time.Time) CreateOption {
	return func(t *Task) { t.Deadline = &d }
}

// WithPriority sets the task priority.
func WithPriority(p float64) CreateOption {
	return func(t *Task) { t.Priority = &p }
}

// WithParent links the task under parentID.
func WithParent(parentID int) CreateOption {
	return func(t *Task) { t.ParentID = &parentID }
}

// WithDependencies sets the ids the task depends on.
func WithDependencies(ids ...int) CreateOption {
	return func(t *Task) { t.Dependencies = append([]int{}, ids...) }
}

// WithAssignees sets the task assignees.
func WithAssignees(names ...string) CreateOption {
	return func(t *Task) { t.AssignedTo = append([]string{}, names...) }
}

// deadlineLayouts are tried in order by ParseDeadline.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline parses an ISO-8601 date or date-time.
// Returns nil for empty or malformed input; a bad deadline is treated as
// no deadline at all.
func ParseDeadline(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return &d
		}
	}
	return nil
}

// normalize enforces the structural invariants of a task.
func (t *Task) normalize() {
	if t.Dependencies == nil {
		t.Dependencies = []int{}
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []string{}
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	t.WorkflowSteps = t.WorkflowSteps.normalized()
}
