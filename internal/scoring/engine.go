package scoring

import (
	"log/slog"
	"time"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

// Scores holds the two computed dimensions of a task.
type Scores struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
}

// Cache memoizes scores by task id for one scoring pass. It belongs to the
// caller; reuse it only while tasks and the reference time are unchanged.
type Cache map[int]Scores

// Engine bundles the tunables of the batch entry points.
type Engine struct {
	Window time.Duration
	// ProgressWindow is the time-factor window of Extended.
	ProgressWindow time.Duration
	Thresholds     Thresholds
	Weights        Weights
	// Propagate raises each parent's urgency to that of its most urgent descendant.
	Propagate bool
}

// NewEngine returns an engine with the default window, thresholds and weights.
func NewEngine() *Engine {
	return &Engine{
		Window:         ClassifyWindow,
		ProgressWindow: ProgressWindow,
		Thresholds:     DefaultThresholds(),
		Weights:        DefaultWeights(),
	}
}

// Score computes the scores of a single task, consulting cache when given.
func (e *Engine) Score(t *tasks.Task, now time.Time, cache Cache) Scores {
	if cache != nil {
		if sc, ok := cache[t.ID]; ok {
			return sc
		}
	}
	sc := Scores{
		Urgency:    Urgency(t, now, e.Window),
		Importance: Importance(t),
	}
	if cache != nil {
		cache[t.ID] = sc
	}
	return sc
}

// Extended returns the progress score of t using the engine's progress window.
func (e *Engine) Extended(t *tasks.Task, now time.Time) float64 {
	return extended(t, now, e.ProgressWindow)
}

// CalculateScores scores every task of the store and writes urgency and
// importance back onto the tasks.
func (e *Engine) CalculateScores(s *tasks.Store, now time.Time, cache Cache) {
	all := s.All()
	scores := make(map[int]Scores, len(all))
	for _, t := range all {
		scores[t.ID] = e.Score(t, now, cache)
	}

	if e.Propagate {
		for _, t := range all {
			anc, err := s.Ancestors(t.ID)
			if err != nil {
				slog.Warn("malformed parent chain", "task_id", t.ID, "error", err)
			}
			u := scores[t.ID].Urgency
			for _, a := range anc {
				if sc := scores[a.ID]; sc.Urgency < u {
					sc.Urgency = u
					scores[a.ID] = sc
				}
			}
		}
	}

	for _, t := range all {
		sc := scores[t.ID]
		t.Urgency = &sc.Urgency
		t.Importance = &sc.Importance
	}
}

// ClassifyStore scores the store and buckets its tasks.
func (e *Engine) ClassifyStore(s *tasks.Store, now time.Time) Matrix {
	e.CalculateScores(s, now, Cache{})
	return Classify(s.All(), e.Thresholds)
}

// PrioritizeStore scores the store and orders its tasks.
func (e *Engine) PrioritizeStore(s *tasks.Store, now time.Time) []*tasks.Task {
	e.CalculateScores(s, now, Cache{})
	return Prioritize(s.All(), e.Weights)
}
