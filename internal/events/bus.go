// Package events carries task lifecycle events from the CLI to the journal.
package events

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBusClosed = errors.New("event bus is closed")
)

// EventType represents the type of event.
type EventType string

const (
	// Task lifecycle
	EventTaskCreated   EventType = "task.created"
	EventTaskAssigned  EventType = "task.assigned"
	EventTaskCompleted EventType = "task.completed"
	EventStepCompleted EventType = "task.step.completed"

	// Batch passes
	EventScoresCalculated EventType = "scores.calculated"
	EventCommitApplied    EventType = "commit.applied"
	EventScheduleLeveled  EventType = "schedule.leveled"
	EventSlotsAssigned    EventType = "schedule.slots"
)

// Event represents an event in the system.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TaskID    int            `json:"task_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, payload map[string]any) Event {
	return Event{
		ID:        generateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// NewTaskEvent creates an event about a single task.
func NewTaskEvent(eventType EventType, taskID int, payload map[string]any) Event {
	e := NewEvent(eventType, payload)
	e.TaskID = taskID
	return e
}

func generateEventID() string {
	return "evt_" + strings.ReplaceAll(uuid.New().String()[:8], "-", "")
}

// Subscriber is a function that receives events.
// Subscribers run on the dispatch goroutine and must not publish.
type Subscriber func(Event)

type subscription struct {
	id         int
	eventTypes []EventType
	handler    Subscriber
}

// Bus delivers events in publish order on a single dispatch goroutine.
type Bus struct {
	mu          sync.RWMutex // guards subscribers
	subscribers map[int]*subscription
	nextID      int
	eventChan   chan Event
	ringBuffer  *RingBuffer
	drained     chan struct{}

	// closeMu guards closed and is held by publishers while they send, so
	// the channel is never closed under them. The dispatcher never takes it.
	closeMu sync.RWMutex
	closed  bool
}

// NewBus creates a new event bus.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	b := &Bus{
		subscribers: make(map[int]*subscription),
		eventChan:   make(chan Event, bufferSize),
		ringBuffer:  NewRingBuffer(bufferSize),
		drained:     make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	defer close(b.drained)
	for event := range b.eventChan {
		b.ringBuffer.Add(event)
		b.notifySubscribers(event)
	}
}

func (b *Bus) notifySubscribers(event Event) {
	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.subscribers))
	for id := 0; id < b.nextID; id++ {
		if sub, ok := b.subscribers[id]; ok && sub.matches(event) {
			subs = append(subs, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(event)
	}
}

func (s *subscription) matches(event Event) bool {
	if len(s.eventTypes) == 0 {
		return true
	}
	for _, t := range s.eventTypes {
		if t == event.Type {
			return true
		}
	}
	return false
}

// Publish queues an event, waiting for room in the buffer.
// Returns ErrBusClosed after Close.
func (b *Bus) Publish(event Event) error {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	b.eventChan <- event
	return nil
}

// Subscribe registers a handler for specific event types, or for every
// event when none are given. Returns an unsubscribe function.
func (b *Bus) Subscribe(handler Subscriber, eventTypes ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	b.subscribers[id] = &subscription{
		id:         id,
		eventTypes: eventTypes,
		handler:    handler,
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// History returns recent events from the ring buffer.
func (b *Bus) History(limit int) []Event {
	return b.ringBuffer.Get(limit)
}

// Close stops accepting events and returns once every queued event has
// been delivered.
func (b *Bus) Close() {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		<-b.drained
		return
	}
	b.closed = true
	close(b.eventChan)
	b.closeMu.Unlock()

	<-b.drained
}

// RingBuffer is a circular buffer for storing recent events.
type RingBuffer struct {
	mu     sync.RWMutex
	events []Event
	size   int
	pos    int
	count  int
}

// NewRingBuffer creates a new ring buffer.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		events: make([]Event, size),
		size:   size,
	}
}

func (r *RingBuffer) Add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.pos] = event
	r.pos = (r.pos + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

func (r *RingBuffer) Get(n int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}

	result := make([]Event, n)
	start := (r.pos - n + r.size) % r.size
	for i := 0; i < n; i++ {
		result[i] = r.events[(start+i)%r.size]
	}
	return result
}
