package tasks

// Record is the loose, file-level shape of a task as supplied by
// collaborators (JSON or YAML). Task() validates it once into a Task.
type Record struct {
	ID                int             `json:"id,omitempty" yaml:"id,omitempty"`
	Title             string          `json:"title" yaml:"title"`
	Description       string          `json:"description,omitempty" yaml:"description,omitempty"`
	Deadline          string          `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Dependencies      []int           `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	AssignedTo        []string        `json:"assigned_to,omitempty" yaml:"assigned_to,omitempty"`
	Status            string          `json:"status,omitempty" yaml:"status,omitempty"`
	Priority          *float64        `json:"priority,omitempty" yaml:"priority,omitempty"`
	ParentID          *int            `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	GithubIssueNumber *int            `json:"github_issue_number,omitempty" yaml:"github_issue_number,omitempty"`
	WorkflowSteps     map[string]bool `json:"workflow_steps,omitempty" yaml:"workflow_steps,omitempty"`
}

// Task converts the record, applying defaults for every missing field.
// A malformed deadline becomes no deadline.
func (r Record) Task() *Task {
	t := &Task{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Deadline:          ParseDeadline(r.Deadline),
		Dependencies:      append([]int{}, r.Dependencies...),
		AssignedTo:        append([]string{}, r.AssignedTo...),
		Status:            Status(r.Status),
		Priority:          r.Priority,
		ParentID:          r.ParentID,
		GithubIssueNumber: r.GithubIssueNumber,
		WorkflowSteps:     WorkflowSteps(r.WorkflowSteps),
	}
	t.normalize()
	return t
}

// RecordOf converts a task back to its file-level shape.
func RecordOf(t *Task) Record {
	r := Record{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Dependencies:      append([]int{}, t.Dependencies...),
		AssignedTo:        append([]string{}, t.AssignedTo...),
		Status:            string(t.Status),
		Priority:          t.Priority,
		ParentID:          t.ParentID,
		GithubIssueNumber: t.GithubIssueNumber,
		WorkflowSteps:     make(map[string]bool, len(StepNames)),
	}
	if t.Deadline != nil {
		r.Deadline = t.Deadline.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, name := range StepNames {
		r.WorkflowSteps[name] = t.WorkflowSteps[name]
	}
	return r
}
