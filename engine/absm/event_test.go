package absm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := NewEventQueue(4)
	q.Push(Event{Kind: EventStateEnter})
	q.Push(Event{Kind: EventStateLeave})

	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, EventStateEnter, e.Kind)
	e, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, EventStateLeave, e.Kind)
	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestEventQueue_KeepsOldestWhenFull(t *testing.T) {
	q := NewEventQueue(2)
	assert.True(t, q.Push(Event{Kind: EventStateEnter}))
	assert.True(t, q.Push(Event{Kind: EventStateLeave}))
	assert.False(t, q.Push(Event{Kind: EventActiveStateChanged}))

	assert.Equal(t, uint64(1), q.Dropped())
	events := q.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, EventStateEnter, events[0].Kind)
	assert.Equal(t, EventStateLeave, events[1].Kind)
}

func TestEventQueue_WrapsAround(t *testing.T) {
	q := NewEventQueue(2)
	for i := range 5 {
		q.Push(Event{Kind: EventKind(i % 4)})
		e, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, EventKind(i%4), e.Kind)
	}
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_CapacityFloorAndClear(t *testing.T) {
	q := NewEventQueue(0)
	assert.Equal(t, 1, q.Cap())
	q.Push(Event{})
	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.True(t, q.Push(Event{}))
}
