package tasks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPercentage(t *testing.T) {
	for k := 0; k <= len(StepNames); k++ {
		task := NewStore().Create("t")
		for _, name := range StepNames[:k] {
			require.NoError(t, MarkStepCompleted(task, name))
		}
		assert.Equal(t, float64(k)/6*100, ProgressPercentage(task), "k=%d", k)
		assert.Equal(t, k == 6, IsCompleted(task), "k=%d", k)
	}
}

func TestMarkAllStepsCompletes(t *testing.T) {
	task := NewStore().Create("t")
	for _, name := range StepNames {
		require.NoError(t, MarkStepCompleted(task, name))
	}
	assert.True(t, IsCompleted(task))
	assert.Equal(t, 100.0, ProgressPercentage(task))
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestMarkStepMovesPendingToInProgress(t *testing.T) {
	task := NewStore().Create("t")
	require.NoError(t, MarkStepCompleted(task, "code   review"))
	assert.True(t, task.WorkflowSteps[StepCodeReview])
	assert.Equal(t, StatusInProgress, task.Status)
}

func TestMarkUnknownStep(t *testing.T) {
	task := NewStore().Create("t")
	err := MarkStepCompleted(task, "Deploy")
	assert.True(t, errors.Is(err, ErrUnknownStep))
	assert.Len(t, task.WorkflowSteps, len(StepNames))
	assert.NotContains(t, task.WorkflowSteps, "Deploy")
	assert.Equal(t, 0, task.WorkflowSteps.Completed())
	assert.Equal(t, StatusPending, task.Status)
}

func TestCanonicalStep(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Coding", StepCoding, true},
		{"TESTING", StepTesting, true},
		{"merge  and\tdeployment", StepMergeDeployment, true},
		{" verification ", StepVerification, true},
		{"review", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalStep(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
