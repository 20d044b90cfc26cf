package tasks

import (
	"regexp"
	"strconv"
	"strings"
)

// taskMarkerRe matches the "Task <id>:" prefix of an intent.
var taskMarkerRe = regexp.MustCompile(`(?i)\btask\s+(\d+)\s*:`)

// stepDoneRe matches "<step name> done" at the start of the text following
// a marker. The step name is the shortest run before " done".
var stepDoneRe = regexp.MustCompile(`(?i)^\s*([^\n]+?)\s+done\b`)

// StepIntent is one "mark this step done" request found in a commit message.
type StepIntent struct {
	TaskID int    `json:"task_id"`
	Step   string `json:"step"`
}

// ParseCommitMessage extracts every step-completion intent from message.
// Step names are returned as written; matching against the fixed steps is
// left to ApplyIntents.
//
// Each marker only owns the text up to the next marker, so an intent
// without "done" never swallows the one after it.
func ParseCommitMessage(message string) []StepIntent {
	var intents []StepIntent
	markers := taskMarkerRe.FindAllStringSubmatchIndex(message, -1)
	for i, m := range markers {
		end := len(message)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		step := stepDoneRe.FindStringSubmatch(message[m[1]:end])
		if step == nil {
			continue
		}
		id, err := strconv.Atoi(message[m[2]:m[3]])
		if err != nil {
			continue // overflow
		}
		intents = append(intents, StepIntent{
			TaskID: id,
			Step:   strings.TrimSpace(step[1]),
		})
	}
	return intents
}

// ApplyIntents marks the requested steps on tasks of the store.
// Intents naming an unknown task or step are skipped. Returns the intents
// that changed a task, with canonical step names.
func ApplyIntents(s *Store, intents []StepIntent) []StepIntent {
	var applied []StepIntent
	for _, in := range intents {
		t, ok := s.Get(in.TaskID)
		if !ok {
			continue
		}
		name, ok := CanonicalStep(in.Step)
		if !ok {
			continue
		}
		if err := MarkStepCompleted(t, name); err != nil {
			continue
		}
		s.Touch(t.ID)
		applied = append(applied, StepIntent{TaskID: t.ID, Step: name})
	}
	return applied
}

// UpdateFromCommitMessage parses message and applies the result to s.
func UpdateFromCommitMessage(s *Store, message string) []StepIntent {
	return ApplyIntents(s, ParseCommitMessage(message))
}
