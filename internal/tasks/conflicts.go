package tasks

import "fmt"

// DetectConflicts reports every dependency that points at a task missing
// from the store, one message per (task, missing id) pair, in creation
// order then dependency order.
func DetectConflicts(s *Store) []string {
	conflicts := []string{}
	for _, t := range s.All() {
		for _, dep := range t.Dependencies {
			if !s.Has(dep) {
				conflicts = append(conflicts, fmt.Sprintf("%s depends on unknown task %d", t.Title, dep))
			}
		}
	}
	return conflicts
}
