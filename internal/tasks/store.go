package tasks

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateID = errors.New("duplicate task id")
	ErrInvalidID   = errors.New("invalid task id")
	ErrParentCycle = errors.New("parent chain contains a cycle")
)

// Store owns every task of a run, keyed by id.
// It is not safe for concurrent mutation; callers serialize access.
type Store struct {
	tasks  map[int]*Task
	order  []int
	nextID int
	now    func() time.Time
}

// NewStore creates an empty store whose first id is 1.
func NewStore() *Store {
	return &Store{
		tasks:  make(map[int]*Task),
		nextID: 1,
		now:    time.Now,
	}
}

// Create adds a new pending task with the next id.
func (s *Store) Create(title string, opts ...CreateOption) *Task {
	t := &Task{
		ID:            s.nextID,
		Title:         title,
		Status:        StatusPending,
		WorkflowSteps: NewWorkflowSteps(),
	}
	s.nextID++
	for _, opt := range opts {
		opt(t)
	}
	s.insert(t)
	return t
}

// Import adds tasks built from records, keeping their explicit ids.
// Records without an id get the next free one; negative ids are rejected.
// The id counter moves past the highest id seen.
func (s *Store) Import(records []Record) ([]*Task, error) {
	out := make([]*Task, 0, len(records))
	for _, r := range records {
		t := r.Task()
		if t.ID < 0 {
			return out, fmt.Errorf("import task %q: %w %d", t.Title, ErrInvalidID, t.ID)
		}
		if t.ID == 0 {
			t.ID = s.nextID
		}
		if _, exists := s.tasks[t.ID]; exists {
			return out, fmt.Errorf("%w: %d", ErrDuplicateID, t.ID)
		}
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.insert(t)
		out = append(out, t)
	}
	return out, nil
}

// Restore loads tasks saved from an earlier run, keeping ids and
// timestamps. The id counter is at least nextID afterwards so ids are never
// handed out twice across runs.
func (s *Store) Restore(saved []*Task, nextID int) error {
	for _, t := range saved {
		if t.ID <= 0 {
			return fmt.Errorf("restore task %q: %w %d", t.Title, ErrInvalidID, t.ID)
		}
		if _, exists := s.tasks[t.ID]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicateID, t.ID)
		}
		t.normalize()
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.tasks[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	if nextID > s.nextID {
		s.nextID = nextID
	}
	return nil
}

// AddTree creates one task per node in pre-order, linking each to the task
// created for its enclosing node. Node ids are not reused; the store
// assigns fresh ones.
func (s *Store) AddTree(root Node) []*Task {
	var out []*Task
	var walk func(n Node, parent *int)
	walk = func(n Node, parent *int) {
		opts := []CreateOption{WithDescription(n.Description)}
		if parent != nil {
			opts = append(opts, WithParent(*parent))
		}
		if n.Priority != nil {
			opts = append(opts, WithPriority(*n.Priority))
		}
		t := s.Create(n.Title, opts...)
		out = append(out, t)
		for _, child := range n.Subtasks {
			walk(child, &t.ID)
		}
	}
	walk(root, nil)
	return out
}

func (s *Store) insert(t *Task) {
	t.normalize()
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
}

// Get returns the task with the given id.
func (s *Store) Get(id int) (*Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

// Has reports whether id is a task of the store.
func (s *Store) Has(id int) bool {
	_, ok := s.tasks[id]
	return ok
}

// All returns every task in creation order.
func (s *Store) All() []*Task {
	out := make([]*Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.order)
}

// NextID returns the id the next created task will get.
func (s *Store) NextID() int {
	return s.nextID
}

// MarkTaskCompleted sets the task status to completed.
// Returns false when the id is unknown.
func (s *Store) MarkTaskCompleted(id int) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	t.Status = StatusCompleted
	t.UpdatedAt = s.now()
	return true
}

// AssignTask adds assignee to the task unless already present.
// Returns false when the id is unknown.
func (s *Store) AssignTask(id int, assignee string) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	for _, a := range t.AssignedTo {
		if a == assignee {
			return true
		}
	}
	t.AssignedTo = append(t.AssignedTo, assignee)
	t.UpdatedAt = s.now()
	return true
}

// Touch bumps the update time of a task after an external mutation.
func (s *Store) Touch(id int) {
	if t, ok := s.tasks[id]; ok {
		t.UpdatedAt = s.now()
	}
}
