package scoring

import "github.com/dohr-michael/taskflow/internal/tasks"

// Quadrant names an Eisenhower bucket.
type Quadrant string

const (
	QuadrantDoNow     Quadrant = "do_now"
	QuadrantSchedule  Quadrant = "schedule"
	QuadrantDelegate  Quadrant = "delegate"
	QuadrantEliminate Quadrant = "eliminate"
)

// Thresholds split the score scales into low and high halves.
// A score equal to its threshold is high.
type Thresholds struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
}

// DefaultThresholds uses the midpoints of the urgency scale [0, 1] and of
// the 1 to 5 priority scale.
func DefaultThresholds() Thresholds {
	return Thresholds{Urgency: 0.5, Importance: 3.0}
}

// Matrix is the Eisenhower classification of a task list.
type Matrix struct {
	DoNow     []*tasks.Task `json:"do_now"`
	Schedule  []*tasks.Task `json:"schedule"`
	Delegate  []*tasks.Task `json:"delegate"`
	Eliminate []*tasks.Task `json:"eliminate"`
}

// Len returns the number of classified tasks.
func (m Matrix) Len() int {
	return len(m.DoNow) + len(m.Schedule) + len(m.Delegate) + len(m.Eliminate)
}

// Quadrant returns the tasks of bucket q.
func (m Matrix) Quadrant(q Quadrant) []*tasks.Task {
	switch q {
	case QuadrantDoNow:
		return m.DoNow
	case QuadrantSchedule:
		return m.Schedule
	case QuadrantDelegate:
		return m.Delegate
	case QuadrantEliminate:
		return m.Eliminate
	}
	return nil
}

// QuadrantOf returns the bucket of a task given its stored scores.
// Missing scores count as 0.
func QuadrantOf(t *tasks.Task, th Thresholds) Quadrant {
	urgent := value(t.Urgency) >= th.Urgency
	important := value(t.Importance) >= th.Importance
	switch {
	case urgent && important:
		return QuadrantDoNow
	case important:
		return QuadrantSchedule
	case urgent:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

// Classify buckets tasks by their stored scores, keeping input order
// within each bucket.
func Classify(list []*tasks.Task, th Thresholds) Matrix {
	m := Matrix{
		DoNow:     []*tasks.Task{},
		Schedule:  []*tasks.Task{},
		Delegate:  []*tasks.Task{},
		Eliminate: []*tasks.Task{},
	}
	for _, t := range list {
		switch QuadrantOf(t, th) {
		case QuadrantDoNow:
			m.DoNow = append(m.DoNow, t)
		case QuadrantSchedule:
			m.Schedule = append(m.Schedule, t)
		case QuadrantDelegate:
			m.Delegate = append(m.Delegate, t)
		default:
			m.Eliminate = append(m.Eliminate, t)
		}
	}
	return m
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
