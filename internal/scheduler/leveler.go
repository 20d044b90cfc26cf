package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
)

// DurationKind selects which estimate of a task the leveler uses.
type DurationKind string

const (
	DurationOptimistic  DurationKind = "optimistic"
	DurationNormal      DurationKind = "normal"
	DurationPessimistic DurationKind = "pessimistic"
)

// DefaultDuration is the length, in hours, of a task without an estimate.
const DefaultDuration = 1.0

var ErrUnknownDurationKind = errors.New("unknown duration kind")

// ParseDurationKind accepts "optimistic", "normal" or "pessimistic", with or
// without the "_hours" suffix. Empty means normal.
func ParseDurationKind(s string) (DurationKind, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_hours")
	switch DurationKind(s) {
	case "", DurationNormal:
		return DurationNormal, nil
	case DurationOptimistic:
		return DurationOptimistic, nil
	case DurationPessimistic:
		return DurationPessimistic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDurationKind, s)
}

// Duration resolves the estimate of t for kind. A missing or non-finite
// estimate is DefaultDuration; an explicit zero is kept and negatives count
// as zero.
func (k DurationKind) Duration(t FlatTask) float64 {
	var v *float64
	switch k {
	case DurationOptimistic:
		v = t.OptimisticHours
	case DurationPessimistic:
		v = t.PessimisticHours
	default:
		v = t.NormalHours
	}
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return DefaultDuration
	}
	if *v < 0 {
		return 0
	}
	return *v
}

// Allocation asks for a task to be run by a resource.
type Allocation struct {
	TaskID int    `json:"task_id" yaml:"task_id"`
	Role   string `json:"role" yaml:"role"`
}

// Entry is the time window given to one task, in hours from the start of
// its resource's timeline.
type Entry struct {
	ResourceID string  `json:"resource_id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
}

// Schedule maps task ids to their windows.
type Schedule map[int]Entry

// Slot is an Entry with its task id, used for ordered views.
type Slot struct {
	TaskID int `json:"task_id"`
	Entry
}

// Resources returns the resource ids used by the schedule, sorted.
func (s Schedule) Resources() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range s {
		if !seen[e.ResourceID] {
			seen[e.ResourceID] = true
			out = append(out, e.ResourceID)
		}
	}
	sort.Strings(out)
	return out
}

// Timeline returns the windows of one resource ordered by start, then
// task id for zero-length windows sharing a start.
func (s Schedule) Timeline(resource string) []Slot {
	var out []Slot
	for id, e := range s {
		if e.ResourceID == resource {
			out = append(out, Slot{TaskID: id, Entry: e})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].End != out[j].End {
			return out[i].End < out[j].End
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// Makespan returns the latest end across all resources.
func (s Schedule) Makespan() float64 {
	var m float64
	for _, e := range s {
		if e.End > m {
			m = e.End
		}
	}
	return m
}

// Leveler assigns tasks to resources first come, first served.
type Leveler struct {
	kind DurationKind
}

// NewLeveler creates a leveler reading the given estimate. An empty kind
// means normal.
func NewLeveler(kind DurationKind) *Leveler {
	if kind == "" {
		kind = DurationNormal
	}
	return &Leveler{kind: kind}
}

// Kind returns the estimate the leveler reads.
func (l *Leveler) Kind() DurationKind {
	return l.kind
}

// Level walks allocations in order and places each task at the current end
// of its resource's timeline. Allocations naming an unknown task are
// skipped. Windows on one resource never overlap.
func (l *Leveler) Level(flat []FlatTask, allocations []Allocation) Schedule {
	byID := make(map[int]FlatTask, len(flat))
	for _, t := range flat {
		if _, dup := byID[t.ID]; !dup {
			byID[t.ID] = t
		}
	}

	cursor := map[string]float64{}
	out := Schedule{}
	for _, a := range allocations {
		t, ok := byID[a.TaskID]
		if !ok {
			slog.Debug("allocation skipped, unknown task", "task_id", a.TaskID, "role", a.Role)
			continue
		}
		start := cursor[a.Role]
		end := start + l.kind.Duration(t)
		cursor[a.Role] = end
		out[t.ID] = Entry{ResourceID: a.Role, Start: start, End: end}
	}
	return out
}

// LevelResources levels flat tasks with a one-off leveler.
func LevelResources(flat []FlatTask, allocations []Allocation, kind DurationKind) Schedule {
	return NewLeveler(kind).Level(flat, allocations)
}
