// Package scheduler turns a work-breakdown tree into per-resource time
// slots.
package scheduler

import "github.com/dohr-michael/taskflow/internal/tasks"

// FlatTask is one node of a breakdown tree with its parent link resolved.
type FlatTask struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	ParentID         *int     `json:"parent_id"`
	OptimisticHours  *float64 `json:"optimistic_hours,omitempty"`
	NormalHours      *float64 `json:"normal_hours,omitempty"`
	PessimisticHours *float64 `json:"pessimistic_hours,omitempty"`
}

// Flatten lists every node of the tree in pre-order, each annotated with
// the id of its enclosing node. The root has no parent.
func Flatten(root tasks.Node) []FlatTask {
	var out []FlatTask
	flattenInto(&out, root, nil)
	return out
}

// FlattenAll flattens a forest, tree after tree.
func FlattenAll(roots []tasks.Node) []FlatTask {
	out := []FlatTask{}
	for _, r := range roots {
		flattenInto(&out, r, nil)
	}
	return out
}

func flattenInto(out *[]FlatTask, n tasks.Node, parent *int) {
	*out = append(*out, FlatTask{
		ID:               n.ID,
		Title:            n.Title,
		ParentID:         parent,
		OptimisticHours:  n.OptimisticHours,
		NormalHours:      n.NormalHours,
		PessimisticHours: n.PessimisticHours,
	})
	id := n.ID
	for _, child := range n.Subtasks {
		flattenInto(out, child, &id)
	}
}
