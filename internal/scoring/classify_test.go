package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

func scored(s *tasks.Store, title string, urgency, importance float64) *tasks.Task {
	t := s.Create(title)
	t.Urgency = &urgency
	t.Importance = &importance
	return t
}

func ids(list []*tasks.Task) []int {
	out := []int{}
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

func TestClassify(t *testing.T) {
	s := tasks.NewStore()
	scored(s, "do", 0.9, 5)
	scored(s, "plan", 0.1, 4)
	scored(s, "hand off", 0.8, 1)
	scored(s, "drop", 0.2, 1)
	scored(s, "edge", 0.5, 3)
	scored(s, "do too", 1, 3.5)

	m := Classify(s.All(), DefaultThresholds())

	assert.Equal(t, []int{1, 5, 6}, ids(m.DoNow))
	assert.Equal(t, []int{2}, ids(m.Schedule))
	assert.Equal(t, []int{3}, ids(m.Delegate))
	assert.Equal(t, []int{4}, ids(m.Eliminate))
	assert.Equal(t, s.Len(), m.Len())
}

func TestClassifyEachTaskOnce(t *testing.T) {
	s := tasks.NewStore()
	for i := 0; i < 20; i++ {
		scored(s, "t", float64(i%5)/4, float64(i%6))
	}
	m := Classify(s.All(), DefaultThresholds())

	seen := map[int]int{}
	for _, q := range []Quadrant{QuadrantDoNow, QuadrantSchedule, QuadrantDelegate, QuadrantEliminate} {
		for _, task := range m.Quadrant(q) {
			seen[task.ID]++
		}
	}
	assert.Len(t, seen, 20)
	for id, n := range seen {
		assert.Equal(t, 1, n, "task %d", id)
	}
}

func TestClassifyEmpty(t *testing.T) {
	m := Classify(nil, DefaultThresholds())
	require.NotNil(t, m.DoNow)
	require.NotNil(t, m.Schedule)
	require.NotNil(t, m.Delegate)
	require.NotNil(t, m.Eliminate)
	assert.Equal(t, 0, m.Len())
}

func TestClassifyUnscoredIsEliminate(t *testing.T) {
	s := tasks.NewStore()
	s.Create("raw")
	m := Classify(s.All(), DefaultThresholds())
	assert.Len(t, m.Eliminate, 1)
}

func TestClassifyStore(t *testing.T) {
	s := tasks.NewStore()
	s.Create("urgent important", tasks.WithPriority(5), tasks.WithDeadline(now))
	s.Create("someday")

	m := NewEngine().ClassifyStore(s, now)
	assert.Equal(t, []int{1}, ids(m.DoNow))
	assert.Equal(t, []int{2}, ids(m.Eliminate))
}
