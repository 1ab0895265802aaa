package absm

import "fmt"

// DefaultEventCapacity is the event queue capacity used when none is configured.
const DefaultEventCapacity = 2048

// EventKind identifies a machine Event.
type EventKind int

const (
	// EventStateEnter fires when a state becomes active.
	EventStateEnter EventKind = iota

	// EventStateLeave fires when a state stops being active.
	EventStateLeave

	// EventActiveStateChanged fires after a transition promotes its destination.
	EventActiveStateChanged

	// EventActiveTransitionChanged fires when a transition starts, and with a zero
	// handle when the active transition is cleared.
	EventActiveTransitionChanged
)

func (k EventKind) String() string {
	switch k {
	case EventStateEnter:
		return "StateEnter"
	case EventStateLeave:
		return "StateLeave"
	case EventActiveStateChanged:
		return "ActiveStateChanged"
	case EventActiveTransitionChanged:
		return "ActiveTransitionChanged"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a notification produced by Machine.Tick. State is set for StateEnter and
// StateLeave, Prev and New for ActiveStateChanged, Transition for ActiveTransitionChanged.
type Event struct {
	Kind       EventKind
	State      StateHandle
	Prev       StateHandle
	New        StateHandle
	Transition TransitionHandle
}

func (e Event) String() string {
	switch e.Kind {
	case EventStateEnter, EventStateLeave:
		return fmt.Sprintf("%s(%s)", e.Kind, e.State)
	case EventActiveStateChanged:
		return fmt.Sprintf("%s{%s -> %s}", e.Kind, e.Prev, e.New)
	default:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Transition)
	}
}

// EventQueue is a bounded FIFO. Once full, new events are dropped and counted; the
// events already queued are kept.
type EventQueue struct {
	buf     []Event
	head    int
	size    int
	dropped uint64
}

// NewEventQueue creates a queue holding at most capacity events.
// A capacity below 1 is raised to 1.
//
// Parameters:
//   - capacity: the maximum number of queued events
//
// Returns:
//   - *EventQueue: the newly created queue
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{buf: make([]Event, max(capacity, 1))}
}

// Push appends an event.
//
// Parameters:
//   - e: the event to queue
//
// Returns:
//   - bool: false if the queue was full and the event was dropped
func (q *EventQueue) Push(e Event) bool {
	if q.size == len(q.buf) {
		q.dropped++
		return false
	}
	q.buf[(q.head+q.size)%len(q.buf)] = e
	q.size++
	return true
}

// Pop removes the oldest event.
//
// Returns:
//   - Event: the oldest event
//   - bool: false if the queue was empty
func (q *EventQueue) Pop() (Event, bool) {
	if q.size == 0 {
		return Event{}, false
	}
	e := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return e, true
}

// Drain pops every queued event in order.
//
// Returns:
//   - []Event: the events, oldest first
func (q *EventQueue) Drain() []Event {
	out := make([]Event, 0, q.size)
	for {
		e, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return q.size
}

// Cap returns the queue capacity.
func (q *EventQueue) Cap() int {
	return len(q.buf)
}

// Dropped returns how many events were discarded because the queue was full.
func (q *EventQueue) Dropped() uint64 {
	return q.dropped
}

// Clear discards every queued event. The drop counter is kept.
func (q *EventQueue) Clear() {
	q.head = 0
	q.size = 0
}
