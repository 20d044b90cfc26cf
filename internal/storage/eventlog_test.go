package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dohr-michael/taskflow/internal/events"
)

func TestEventLogger_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)

	el := NewEventLogger(dir, bus)
	defer el.Close()

	ts := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	bus.Publish(events.Event{
		ID:        "evt-1",
		Type:      events.EventStepCompleted,
		Timestamp: ts,
		TaskID:    3,
		Payload:   map[string]any{"step": "Coding"},
	})
	bus.Publish(events.Event{
		ID:        "evt-2",
		Type:      events.EventTaskCompleted,
		Timestamp: ts.Add(time.Minute),
		TaskID:    3,
	})
	bus.Close()

	got, err := LoadJournal(filepath.Join(dir, "2026-10-15.jsonl"))
	if err != nil {
		t.Fatalf("LoadJournal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].ID != "evt-1" || got[1].ID != "evt-2" {
		t.Errorf("unexpected order: %q, %q", got[0].ID, got[1].ID)
	}
	if got[0].Payload["step"] != "Coding" {
		t.Errorf("payload step = %v", got[0].Payload["step"])
	}
}

func TestEventLogger_DayRouting(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(8)
	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.Event{ID: "a", Type: events.EventTaskCreated, Timestamp: time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)})
	bus.Publish(events.Event{ID: "b", Type: events.EventTaskCreated, Timestamp: time.Date(2026, 1, 2, 1, 0, 0, 0, time.UTC)})
	bus.Close()

	for _, name := range []string{"2026-01-01.jsonl", "2026-01-02.jsonl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestLoadJournal_SkipsCorruptedAndMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "j.jsonl")
	content := `{"id":"ok","type":"task.created","timestamp":"2026-10-15T09:00:00Z"}
not json

{"id":"ok2","type":"task.created","timestamp":"2026-10-15T09:00:00Z"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := LoadJournal(path)
	if err != nil {
		t.Fatalf("LoadJournal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}

	none, err := LoadJournal(filepath.Join(dir, "missing.jsonl"))
	if err != nil || none != nil {
		t.Fatalf("missing journal: got %v, %v", none, err)
	}
}
