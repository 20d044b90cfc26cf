package scoring

import (
	"sort"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

// Weights combine importance and urgency into one ordering key.
type Weights struct {
	Importance float64 `json:"importance"`
	Urgency    float64 `json:"urgency"`
}

// DefaultWeights favours importance over urgency, 0.6 to 0.4.
func DefaultWeights() Weights {
	return Weights{Importance: 0.6, Urgency: 0.4}
}

// Combined returns the weighted ordering key of a task from its stored
// scores. Missing scores count as 0.
func Combined(t *tasks.Task, w Weights) float64 {
	return w.Importance*value(t.Importance) + w.Urgency*value(t.Urgency)
}

// Prioritize returns the tasks ordered by descending combined score, ties
// broken by ascending id. The input slice is left untouched.
func Prioritize(list []*tasks.Task, w Weights) []*tasks.Task {
	result := make([]*tasks.Task, len(list))
	copy(result, list)

	sort.SliceStable(result, func(i, j int) bool {
		ci, cj := Combined(result[i], w), Combined(result[j], w)
		if ci != cj {
			return ci > cj
		}
		return result[i].ID < result[j].ID
	})
	return result
}
