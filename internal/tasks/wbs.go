package tasks

// Node is one element of a nested work-breakdown tree.
// A missing subtasks list is the same as an empty one.
type Node struct {
	ID               int      `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	Priority         *float64 `json:"priority,omitempty" yaml:"priority,omitempty"`
	OptimisticHours  *float64 `json:"optimistic_hours,omitempty" yaml:"optimistic_hours,omitempty"`
	NormalHours      *float64 `json:"normal_hours,omitempty" yaml:"normal_hours,omitempty"`
	PessimisticHours *float64 `json:"pessimistic_hours,omitempty" yaml:"pessimistic_hours,omitempty"`
	Subtasks         []Node   `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// Count returns the number of nodes in the tree rooted at n.
func (n Node) Count() int {
	c := 1
	for _, s := range n.Subtasks {
		c += s.Count()
	}
	return c
}

type wbsLeaf struct {
	title                         string
	optimistic, normal, pessimist float64
}

type wbsPhase struct {
	title  string
	leaves []wbsLeaf
}

// wbsTemplate is the fixed breakdown every idea expands into.
var wbsTemplate = []wbsPhase{
	{"Planning", []wbsLeaf{
		{"Define requirements", 2, 4, 8},
		{"Design architecture", 4, 8, 16},
	}},
	{"Implementation", []wbsLeaf{
		{"Develop core features", 8, 16, 32},
		{"Write tests", 4, 8, 12},
	}},
	{"Deployment", []wbsLeaf{
		{"Prepare release", 1, 2, 4},
		{"Deploy to production", 1, 2, 6},
	}},
}

// GenerateWBS expands an idea into the fixed three-level breakdown.
// Node ids run from 1 in pre-order.
func GenerateWBS(idea string) Node {
	next := 1
	id := func() int {
		v := next
		next++
		return v
	}

	root := Node{ID: id(), Title: idea, Description: "Work breakdown for: " + idea}
	for _, ph := range wbsTemplate {
		phase := Node{ID: id(), Title: ph.title}
		for _, l := range ph.leaves {
			phase.Subtasks = append(phase.Subtasks, Node{
				ID:               id(),
				Title:            l.title,
				OptimisticHours:  hours(l.optimistic),
				NormalHours:      hours(l.normal),
				PessimisticHours: hours(l.pessimist),
			})
		}
		root.Subtasks = append(root.Subtasks, phase)
	}
	return root
}

func hours(v float64) *float64 { return &v }
