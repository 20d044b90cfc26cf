package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestUrgencyNoDeadline(t *testing.T) {
	task := tasks.NewStore().Create("t")
	for _, w := range []time.Duration{ClassifyWindow, ProgressWindow, 0} {
		assert.Equal(t, UrgencyFloor, Urgency(task, now, w))
	}
}

func TestUrgencyWindow(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		window   time.Duration
		want     float64
	}{
		{"overdue", now.Add(-48 * time.Hour), ClassifyWindow, 1},
		{"due now", now, ClassifyWindow, 1},
		{"half window", now.Add(84 * time.Hour), ClassifyWindow, 0.5},
		{"beyond window", now.Add(30 * 24 * time.Hour), ClassifyWindow, UrgencyFloor},
		{"near window end", now.Add(160 * time.Hour), ClassifyWindow, UrgencyFloor},
		{"short window", now.Add(36 * time.Hour), ProgressWindow, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tasks.NewStore().Create("t", tasks.WithDeadline(tt.deadline))
			got := Urgency(task, now, tt.window)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, UrgencyFloor)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestUrgencyCloserIsHigher(t *testing.T) {
	s := tasks.NewStore()
	near := s.Create("near", tasks.WithDeadline(now.Add(24*time.Hour)))
	far := s.Create("far", tasks.WithDeadline(now.Add(5*24*time.Hour)))
	assert.Greater(t, Urgency(near, now, ClassifyWindow), Urgency(far, now, ClassifyWindow))
}

func TestUrgencyDistantDeadlineNotBelowNoDeadline(t *testing.T) {
	s := tasks.NewStore()
	none := s.Create("none")
	distant := s.Create("distant", tasks.WithDeadline(now.Add(90*24*time.Hour)))
	for _, w := range []time.Duration{ClassifyWindow, ProgressWindow} {
		assert.GreaterOrEqual(t, Urgency(distant, now, w), Urgency(none, now, w))
	}
}

func TestImportance(t *testing.T) {
	s := tasks.NewStore()
	assert.Equal(t, DefaultImportance, Importance(s.Create("none")))

	prev := -1.0
	for _, p := range []float64{0, 1, 2.5, 5, 10, 100} {
		got := Importance(s.Create("p", tasks.WithPriority(p)))
		assert.Greater(t, got, prev)
		prev = got
	}
}

func TestExtended(t *testing.T) {
	s := tasks.NewStore()

	idle := s.Create("idle")
	assert.InDelta(t, 0.5*UrgencyFloor+0.2*0.5, Extended(idle, now), 1e-9)

	busy := s.Create("busy",
		tasks.WithDeadline(now.Add(-time.Hour)),
		tasks.WithDependencies(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12),
	)
	busy.Status = tasks.StatusInProgress
	assert.InDelta(t, 1.0, Extended(busy, now), 1e-9)

	done := s.Create("done")
	done.Status = tasks.StatusCompleted
	assert.InDelta(t, 0.5*UrgencyFloor, Extended(done, now), 1e-9)

	assigned := s.Create("assigned", tasks.WithAssignees("alice"))
	assert.Greater(t, Extended(assigned, now), Extended(idle, now))
}

func TestEngineExtendedWindow(t *testing.T) {
	task := tasks.NewStore().Create("t", tasks.WithDeadline(now.Add(48*time.Hour)))

	e := NewEngine()
	assert.InDelta(t, Extended(task, now), e.Extended(task, now), 1e-9)

	e.ProgressWindow = 4 * 24 * time.Hour
	assert.InDelta(t, 0.5*0.5+0.2*0.5, e.Extended(task, now), 1e-9)
}

func TestCalculateScoresWritesBack(t *testing.T) {
	s := tasks.NewStore()
	a := s.Create("a", tasks.WithPriority(4))
	b := s.Create("b", tasks.WithDeadline(now))

	cache := Cache{}
	NewEngine().CalculateScores(s, now, cache)

	require.NotNil(t, a.Urgency)
	require.NotNil(t, a.Importance)
	assert.Equal(t, UrgencyFloor, *a.Urgency)
	assert.Equal(t, 4.0, *a.Importance)
	assert.Equal(t, 1.0, *b.Urgency)
	assert.Equal(t, DefaultImportance, *b.Importance)
	assert.Len(t, cache, 2)
}

func TestCalculateScoresUsesCache(t *testing.T) {
	s := tasks.NewStore()
	a := s.Create("a")

	cache := Cache{a.ID: {Urgency: 0.9, Importance: 7}}
	NewEngine().CalculateScores(s, now, cache)
	assert.Equal(t, 0.9, *a.Urgency)
	assert.Equal(t, 7.0, *a.Importance)
}

func TestCalculateScoresPropagation(t *testing.T) {
	s := tasks.NewStore()
	root := s.Create("root")
	mid := s.Create("mid", tasks.WithParent(root.ID))
	s.Create("leaf", tasks.WithParent(mid.ID), tasks.WithDeadline(now))
	other := s.Create("other")

	e := NewEngine()
	e.Propagate = true
	e.CalculateScores(s, now, nil)

	assert.Equal(t, 1.0, *root.Urgency)
	assert.Equal(t, 1.0, *mid.Urgency)
	assert.Equal(t, UrgencyFloor, *other.Urgency)
}

func TestCalculateScoresPropagationCycle(t *testing.T) {
	s := tasks.NewStore()
	a := s.Create("a", tasks.WithParent(2))
	b := s.Create("b", tasks.WithParent(1), tasks.WithDeadline(now))

	e := NewEngine()
	e.Propagate = true
	e.CalculateScores(s, now, nil)

	assert.Equal(t, 1.0, *a.Urgency)
	assert.Equal(t, 1.0, *b.Urgency)
}
