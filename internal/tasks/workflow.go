package tasks

import (
	"errors"
	"fmt"
	"strings"
)

// Fixed workflow step names, in checklist order.
const (
	StepCoding          = "Coding"
	StepTesting         = "Testing"
	StepDocumentation   = "Documentation"
	StepCodeReview      = "Code Review"
	StepMergeDeployment = "Merge and Deployment"
	StepVerification    = "Verification"
)

// StepNames lists every workflow step in order.
var StepNames = []string{
	StepCoding,
	StepTesting,
	StepDocumentation,
	StepCodeReview,
	StepMergeDeployment,
	StepVerification,
}

// ErrUnknownStep is returned when a step name is not one of StepNames.
var ErrUnknownStep = errors.New("unknown workflow step")

// WorkflowSteps maps each fixed step name to its completion flag.
type WorkflowSteps map[string]bool

// NewWorkflowSteps returns a checklist with every step pending.
func NewWorkflowSteps() WorkflowSteps {
	ws := make(WorkflowSteps, len(StepNames))
	for _, name := range StepNames {
		ws[name] = false
	}
	return ws
}

// normalized returns a copy holding exactly the fixed keys.
// Keys are matched case-insensitively; unknown keys are dropped.
func (ws WorkflowSteps) normalized() WorkflowSteps {
	out := NewWorkflowSteps()
	for k, done := range ws {
		if name, ok := CanonicalStep(k); ok && done {
			out[name] = true
		}
	}
	return out
}

// Completed returns the number of finished steps.
func (ws WorkflowSteps) Completed() int {
	n := 0
	for _, name := range StepNames {
		if ws[name] {
			n++
		}
	}
	return n
}

// CanonicalStep resolves name to one of StepNames, ignoring case and
// collapsing runs of whitespace.
func CanonicalStep(name string) (string, bool) {
	key := strings.Join(strings.Fields(name), " ")
	for _, step := range StepNames {
		if strings.EqualFold(step, key) {
			return step, true
		}
	}
	return "", false
}

// MarkStepCompleted flags the named step as done. Unknown names return
// ErrUnknownStep and leave the checklist untouched.
//
// The first finished step moves a pending task to in_progress and the last
// one moves it to completed.
func MarkStepCompleted(t *Task, step string) error {
	name, ok := CanonicalStep(step)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	if t.WorkflowSteps == nil {
		t.WorkflowSteps = NewWorkflowSteps()
	}
	t.WorkflowSteps[name] = true

	switch {
	case IsCompleted(t):
		t.Status = StatusCompleted
	case t.Status == StatusPending:
		t.Status = StatusInProgress
	}
	return nil
}

// ProgressPercentage returns the share of finished steps, 0 to 100.
func ProgressPercentage(t *Task) float64 {
	return float64(t.WorkflowSteps.Completed()) / float64(len(StepNames)) * 100
}

// IsCompleted reports whether all six steps are done.
func IsCompleted(t *Task) bool {
	return t.WorkflowSteps.Completed() == len(StepNames)
}
