package scheduler

import "github.com/dohr-michael/taskflow/internal/tasks"

// SlotAssignment places a task at a unit-less position within its hierarchy.
type SlotAssignment struct {
	TaskID int `json:"task_id"`
	RootID int `json:"root_id"`
	Slot   int `json:"slot"`
}

// AssignSlots is the simple strategy: walking tasks in the given order
// (usually the prioritized order), each task takes the next free slot of
// its root hierarchy. Durations and resources are ignored; use Leveler for
// timed schedules.
func AssignSlots(s *tasks.Store, ordered []*tasks.Task) []SlotAssignment {
	next := map[int]int{}
	out := []SlotAssignment{}
	for _, t := range ordered {
		root, ok := s.RootOf(t.ID)
		if !ok {
			continue
		}
		out = append(out, SlotAssignment{TaskID: t.ID, RootID: root.ID, Slot: next[root.ID]})
		next[root.ID]++
	}
	return out
}
