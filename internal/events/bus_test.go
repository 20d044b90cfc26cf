package events

import (
	"errors"
	"strings"
	"testing"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)

	var received []Event
	bus.Subscribe(func(e Event) {
		received = append(received, e)
	}, EventStepCompleted)

	bus.Publish(NewTaskEvent(EventStepCompleted, 1, map[string]any{"step": "Coding"}))
	bus.Publish(NewTaskEvent(EventTaskCreated, 2, nil))

	bus.Close()

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventStepCompleted {
		t.Errorf("expected %s, got %s", EventStepCompleted, received[0].Type)
	}
	if received[0].TaskID != 1 {
		t.Errorf("expected task 1, got %d", received[0].TaskID)
	}
}

func TestBusSubscribeAllKeepsOrder(t *testing.T) {
	bus := NewBus(2)

	var got []int
	bus.Subscribe(func(e Event) {
		got = append(got, e.TaskID)
	})

	for i := 1; i <= 10; i++ {
		if err := bus.Publish(NewTaskEvent(EventTaskCreated, i, nil)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	bus.Close()

	if len(got) != 10 {
		t.Fatalf("expected 10 events, got %d", len(got))
	}
	for i, id := range got {
		if id != i+1 {
			t.Fatalf("event %d: got task %d, want %d", i, id, i+1)
		}
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(8)

	count := 0
	unsub := bus.Subscribe(func(Event) { count++ })
	unsub()

	bus.Publish(NewEvent(EventScoresCalculated, nil))
	bus.Close()

	if count != 0 {
		t.Errorf("expected no delivery after unsubscribe, got %d", count)
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := NewBus(8)
	bus.Close()
	bus.Close()

	err := bus.Publish(NewEvent(EventScheduleLeveled, nil))
	if !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
}

func TestBusHistory(t *testing.T) {
	bus := NewBus(3)
	for i := 0; i < 5; i++ {
		bus.Publish(NewTaskEvent(EventTaskCreated, i, nil))
	}
	bus.Close()

	history := bus.History(10)
	if len(history) != 3 {
		t.Fatalf("expected 3 events, got %d", len(history))
	}
	if history[0].TaskID != 2 || history[2].TaskID != 4 {
		t.Errorf("unexpected history order: %+v", history)
	}
}

func TestNewEventID(t *testing.T) {
	a := NewEvent(EventCommitApplied, nil)
	b := NewEvent(EventCommitApplied, nil)
	if !strings.HasPrefix(a.ID, "evt_") {
		t.Errorf("expected evt_ prefix, got %q", a.ID)
	}
	if a.ID == b.ID {
		t.Errorf("expected distinct ids, got %q twice", a.ID)
	}
}
