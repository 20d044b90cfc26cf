package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dohr-michael/taskflow/internal/scheduler"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

var ErrRunNotFound = errors.New("schedule run not found")

// Snapshot is the persisted state of a task store.
type Snapshot struct {
	NextTaskID int           `json:"next_task_id"`
	SavedAt    time.Time     `json:"saved_at"`
	Tasks      []*tasks.Task `json:"tasks"`
}

// SnapshotOf captures the tasks of s in creation order.
func SnapshotOf(s *tasks.Store) *Snapshot {
	return &Snapshot{
		NextTaskID: s.NextID(),
		SavedAt:    time.Now(),
		Tasks:      s.All(),
	}
}

// Store rebuilds a task store from the snapshot.
func (snap *Snapshot) Store() (*tasks.Store, error) {
	s := tasks.NewStore()
	if snap == nil {
		return s, nil
	}
	if err := s.Restore(snap.Tasks, snap.NextTaskID); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return s, nil
}

// RunEntry is one leveled task of a schedule run.
type RunEntry struct {
	TaskID     int        `json:"task_id"`
	Title      string     `json:"title"`
	ResourceID string     `json:"resource_id"`
	Start      float64    `json:"start"`
	End        float64    `json:"end"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
}

// Run is a saved leveling result.
type Run struct {
	ID           string                 `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	DurationKind scheduler.DurationKind `json:"duration_kind"`
	Calendar     string                 `json:"calendar,omitempty"`
	Entries      []RunEntry             `json:"entries"`
}

// GenerateRunID creates a unique run identifier with "run_" prefix.
func GenerateRunID() string {
	u := uuid.New().String()
	return "run_" + strings.ReplaceAll(u[:8], "-", "")
}

// NewRun turns a schedule into a run, ordered by resource then start.
// Titles come from flat; cal, when not nil, adds wall-clock times.
func NewRun(kind scheduler.DurationKind, sched scheduler.Schedule, flat []scheduler.FlatTask, cal *scheduler.Calendar) *Run {
	titles := make(map[int]string, len(flat))
	for _, f := range flat {
		titles[f.ID] = f.Title
	}

	run := &Run{
		ID:           GenerateRunID(),
		CreatedAt:    time.Now(),
		DurationKind: kind,
		Entries:      []RunEntry{},
	}
	if cal != nil {
		run.Calendar = cal.String()
	}
	for _, res := range sched.Resources() {
		for _, slot := range sched.Timeline(res) {
			e := RunEntry{
				TaskID:     slot.TaskID,
				Title:      titles[slot.TaskID],
				ResourceID: slot.ResourceID,
				Start:      slot.Start,
				End:        slot.End,
			}
			if cal != nil {
				if start, end, err := cal.Span(slot.Entry); err == nil {
					e.StartsAt, e.EndsAt = &start, &end
				} else {
					slog.Debug("entry left without wall-clock times", "task_id", slot.TaskID, "error", err)
				}
			}
			run.Entries = append(run.Entries, e)
		}
	}
	return run
}

// Backend persists snapshots and schedule runs.
type Backend interface {
	// LoadSnapshot returns the saved snapshot, or nil when nothing was saved yet.
	LoadSnapshot() (*Snapshot, error)
	SaveSnapshot(snap *Snapshot) error
	SaveRun(run *Run) error
	GetRun(id string) (*Run, error)
	// ListRuns returns saved runs, newest first.
	ListRuns() ([]*Run, error)
	Close() error
}
