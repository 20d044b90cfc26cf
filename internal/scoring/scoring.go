// Package scoring computes urgency and importance for tasks and derives the
// Eisenhower matrix and execution order from them.
//
// Every function here is pure: scores are returned, and only the batch
// entry points write them back onto tasks.
package scoring

import (
	"math"
	"time"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

const (
	// UrgencyFloor is the urgency of a task without a deadline.
	UrgencyFloor = 0.1
	// DefaultImportance is the importance of a task without a priority.
	DefaultImportance = 1.0

	// ClassifyWindow is the lookahead used for classification and ordering.
	ClassifyWindow = 7 * 24 * time.Hour
	// ProgressWindow is the lookahead used by the extended score.
	ProgressWindow = 3 * 24 * time.Hour

	// dependencyCap is the dependency count at which the dependency factor saturates.
	dependencyCap = 10
)

// Extended score weights. They sum to 1.
const (
	weightTime       = 0.5
	weightDependency = 0.3
	weightStatus     = 0.2
)

// Urgency maps the time left before the deadline onto [UrgencyFloor, 1]
// against a lookahead window. Due or overdue tasks score 1. Tasks without a
// deadline, or with one beyond the window, score UrgencyFloor, so a distant
// deadline never ranks below no deadline at all.
func Urgency(t *tasks.Task, now time.Time, window time.Duration) float64 {
	if t.Deadline == nil {
		return UrgencyFloor
	}
	if window <= 0 {
		window = ClassifyWindow
	}
	remaining := t.Deadline.Sub(now)
	if remaining <= 0 {
		return 1
	}
	return math.Max(UrgencyFloor, clamp01(1-float64(remaining)/float64(window)))
}

// Importance returns the task priority, or DefaultImportance when unset.
func Importance(t *tasks.Task) float64 {
	if t.Priority == nil {
		return DefaultImportance
	}
	return *t.Priority
}

// Extended blends deadline pressure, dependency load and work state into a
// single [0, 1] score used by progress reports.
func Extended(t *tasks.Task, now time.Time) float64 {
	return extended(t, now, ProgressWindow)
}

func extended(t *tasks.Task, now time.Time, window time.Duration) float64 {
	timeFactor := Urgency(t, now, window)
	depFactor := math.Min(float64(len(t.Dependencies))/dependencyCap, 1)
	return weightTime*timeFactor + weightDependency*depFactor + weightStatus*statusFactor(t)
}

func statusFactor(t *tasks.Task) float64 {
	switch {
	case t.Status == tasks.StatusCompleted:
		return 0
	case t.Status == tasks.StatusInProgress:
		return 1
	case t.IsAssigned():
		return 0.75
	default:
		return 0.5
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
