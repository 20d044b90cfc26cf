package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

func TestAssignSlotsPerHierarchy(t *testing.T) {
	s := tasks.NewStore()
	r1 := s.Create("r1")
	a := s.Create("a", tasks.WithParent(r1.ID))
	r2 := s.Create("r2")
	b := s.Create("b", tasks.WithParent(r2.ID))
	c := s.Create("c", tasks.WithParent(a.ID))

	got := AssignSlots(s, []*tasks.Task{c, b, r1, a, r2})

	assert.Equal(t, []SlotAssignment{
		{TaskID: c.ID, RootID: r1.ID, Slot: 0},
		{TaskID: b.ID, RootID: r2.ID, Slot: 0},
		{TaskID: r1.ID, RootID: r1.ID, Slot: 1},
		{TaskID: a.ID, RootID: r1.ID, Slot: 2},
		{TaskID: r2.ID, RootID: r2.ID, Slot: 1},
	}, got)
}

func TestAssignSlotsEmpty(t *testing.T) {
	assert.Empty(t, AssignSlots(tasks.NewStore(), nil))
}
