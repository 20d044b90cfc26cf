package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWBS(t *testing.T) {
	root := GenerateWBS("Mobile app")

	assert.Equal(t, "Mobile app", root.Title)
	assert.Equal(t, 1, root.ID)
	assert.Equal(t, 10, root.Count())
	require.Len(t, root.Subtasks, 3)

	var ids []int
	var walk func(Node)
	walk = func(n Node) {
		ids = append(ids, n.ID)
		for _, c := range n.Subtasks {
			walk(c)
		}
	}
	walk(root)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids)

	leaf := root.Subtasks[0].Subtasks[0]
	require.NotNil(t, leaf.NormalHours)
	assert.Equal(t, 4.0, *leaf.NormalHours)
	assert.LessOrEqual(t, *leaf.OptimisticHours, *leaf.NormalHours)
	assert.LessOrEqual(t, *leaf.NormalHours, *leaf.PessimisticHours)
}

func TestRecordRoundTripKeepsSteps(t *testing.T) {
	s := NewStore()
	task := s.Create("t", WithDeadline(mustDeadline(t, "2026-11-01")))
	require.NoError(t, MarkStepCompleted(task, StepTesting))

	back := RecordOf(task).Task()
	assert.Equal(t, task.ID, back.ID)
	assert.True(t, back.WorkflowSteps[StepTesting])
	require.NotNil(t, back.Deadline)
	assert.True(t, task.Deadline.Equal(*back.Deadline))
}

func mustDeadline(t *testing.T, s string) time.Time {
	t.Helper()
	p := ParseDeadline(s)
	require.NotNil(t, p)
	return *p
}
