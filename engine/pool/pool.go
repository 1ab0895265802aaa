package pool

import "fmt"

// Handle is a generation-checked reference to a value stored in a Pool.
// The zero Handle never refers to a live slot.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// Index returns the slot index the handle points at.
//
// Returns:
//   - uint32: the slot index
func (h Handle[T]) Index() uint32 {
	return h.index
}

// Generation returns the slot generation the handle was issued for.
//
// Returns:
//   - uint32: the generation tag, 0 for the zero handle
func (h Handle[T]) Generation() uint32 {
	return h.generation
}

// IsNone reports whether the handle is the zero handle.
//
// Returns:
//   - bool: true if the handle was never issued by a pool
func (h Handle[T]) IsNone() bool {
	return h.generation == 0
}

func (h Handle[T]) String() string {
	if h.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%d:%d", h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	alive      bool
}

// Pool is a slot array with free-list reuse. Freed slots bump their generation so
// handles issued before the free are detected as stale instead of aliasing the
// slot's next occupant. Iteration is always in slot index order.
// Pool is not safe for concurrent use.
type Pool[T any] struct {
	slots []slot[T]
	free  []uint32
	alive int
}

// NewPool creates an empty Pool.
//
// Returns:
//   - *Pool[T]: the newly created pool
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{}
}

// Spawn stores a value in a free slot, reusing the most recently freed slot if any.
//
// Parameters:
//   - value: the value to store
//
// Returns:
//   - Handle[T]: the handle for the new occupant
func (p *Pool[T]) Spawn(value T) Handle[T] {
	p.alive++
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		s := &p.slots[idx]
		s.value = value
		s.alive = true
		return Handle[T]{index: idx, generation: s.generation}
	}

	p.slots = append(p.slots, slot[T]{value: value, generation: 1, alive: true})
	return Handle[T]{index: uint32(len(p.slots) - 1), generation: 1}
}

// Free releases the slot the handle refers to.
//
// Parameters:
//   - h: the handle to free
//
// Returns:
//   - T: the value that occupied the slot
//   - bool: false if the handle was stale or never issued
func (p *Pool[T]) Free(h Handle[T]) (T, bool) {
	var zero T
	if !p.IsValid(h) {
		return zero, false
	}
	s := &p.slots[h.index]
	value := s.value
	s.value = zero
	s.alive = false
	s.generation++
	if s.generation == 0 {
		// wrapped around, skip the reserved zero generation
		s.generation = 1
	}
	p.free = append(p.free, h.index)
	p.alive--
	return value, true
}

// IsValid reports whether the handle refers to a live slot of the same generation.
//
// Parameters:
//   - h: the handle to check
//
// Returns:
//   - bool: true if the handle is live
func (p *Pool[T]) IsValid(h Handle[T]) bool {
	if h.IsNone() || int(h.index) >= len(p.slots) {
		return false
	}
	s := &p.slots[h.index]
	return s.alive && s.generation == h.generation
}

// IsStale reports whether the handle was issued by this pool for a slot that has
// since been freed. Handles that never referred to a slot are not stale.
//
// Parameters:
//   - h: the handle to check
//
// Returns:
//   - bool: true if the handle's occupant was freed
func (p *Pool[T]) IsStale(h Handle[T]) bool {
	if h.IsNone() || int(h.index) >= len(p.slots) {
		return false
	}
	return !p.IsValid(h)
}

// Get borrows the value the handle refers to. The pointer stays valid until the
// next Spawn grows the pool.
//
// Parameters:
//   - h: the handle to dereference
//
// Returns:
//   - *T: the stored value, nil if the handle is not live
//   - bool: true if the handle is live
func (p *Pool[T]) Get(h Handle[T]) (*T, bool) {
	if !p.IsValid(h) {
		return nil, false
	}
	return &p.slots[h.index].value, true
}

// Len returns the number of live values.
func (p *Pool[T]) Len() int {
	return p.alive
}

// Handles returns the handles of all live values in slot order.
//
// Returns:
//   - []Handle[T]: live handles, lowest slot index first
func (p *Pool[T]) Handles() []Handle[T] {
	out := make([]Handle[T], 0, p.alive)
	for i := range p.slots {
		if p.slots[i].alive {
			out = append(out, Handle[T]{index: uint32(i), generation: p.slots[i].generation})
		}
	}
	return out
}

// Each calls fn for every live value in slot order until fn returns false.
//
// Parameters:
//   - fn: visitor receiving the handle and a pointer to the value
func (p *Pool[T]) Each(fn func(h Handle[T], value *T) bool) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.alive {
			continue
		}
		if !fn(Handle[T]{index: uint32(i), generation: s.generation}, &s.value) {
			return
		}
	}
}

// Clear frees every live slot. Outstanding handles become stale.
func (p *Pool[T]) Clear() {
	for i := range p.slots {
		if p.slots[i].alive {
			p.Free(Handle[T]{index: uint32(i), generation: p.slots[i].generation})
		}
	}
}
