package tasks

import "fmt"

// Roots returns tasks without a parent, plus tasks whose parent is not in
// the store, in creation order.
func (s *Store) Roots() []*Task {
	var out []*Task
	for _, t := range s.All() {
		if t.ParentID == nil || !s.Has(*t.ParentID) {
			out = append(out, t)
		}
	}
	return out
}

// Children returns the direct children of id in creation order.
func (s *Store) Children(id int) []*Task {
	var out []*Task
	for _, t := range s.All() {
		if t.ParentID != nil && *t.ParentID == id && t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Ancestors returns the parent chain of id, nearest first.
// The walk stops at a missing parent. A chain that revisits a task stops
// there and returns ErrParentCycle alongside the ancestors found so far.
func (s *Store) Ancestors(id int) ([]*Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}

	visited := map[int]bool{id: true}
	var out []*Task
	for t.ParentID != nil {
		pid := *t.ParentID
		if visited[pid] {
			return out, fmt.Errorf("%w: task %d", ErrParentCycle, id)
		}
		visited[pid] = true

		parent, ok := s.tasks[pid]
		if !ok {
			break
		}
		out = append(out, parent)
		t = parent
	}
	return out, nil
}

// Depth returns the number of ancestors of id. Cycles count only the
// distinct tasks seen before the loop closes.
func (s *Store) Depth(id int) int {
	anc, _ := s.Ancestors(id)
	return len(anc)
}

// Descendants returns every task below id in pre-order.
func (s *Store) Descendants(id int) []*Task {
	visited := map[int]bool{id: true}
	var out []*Task
	var walk func(int)
	walk = func(pid int) {
		for _, c := range s.Children(pid) {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			out = append(out, c)
			walk(c.ID)
		}
	}
	walk(id)
	return out
}

// RootOf returns the topmost reachable ancestor of id, or the task itself.
func (s *Store) RootOf(id int) (*Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	anc, _ := s.Ancestors(id)
	if len(anc) == 0 {
		return t, true
	}
	return anc[len(anc)-1], true
}
