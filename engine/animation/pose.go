package animation

import (
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
)

// PoseEntry is a single bone's local transform within a Pose.
type PoseEntry struct {
	// Bone is the index of the bound bone in its skeleton.
	Bone int32

	// Transform is the bone's local transform.
	Transform model.Transform
}

// Pose is an ordered mapping from bound bone index to local transform.
// Entries keep the order in which bones were first set.
type Pose struct {
	entries []PoseEntry
	index   map[int32]int
}

// NewPose creates an empty Pose with room for capacity bones.
//
// Parameters:
//   - capacity: the expected bone count
//
// Returns:
//   - *Pose: the newly created pose
func NewPose(capacity int) *Pose {
	return &Pose{
		entries: make([]PoseEntry, 0, capacity),
		index:   make(map[int32]int, capacity),
	}
}

// Set writes a bone's transform. Overwriting keeps the bone's original position in the order.
//
// Parameters:
//   - bone: the bone index
//   - t: the local transform
func (p *Pose) Set(bone int32, t model.Transform) {
	if p.index == nil {
		p.index = make(map[int32]int)
	}
	if i, ok := p.index[bone]; ok {
		p.entries[i].Transform = t
		return
	}
	p.index[bone] = len(p.entries)
	p.entries = append(p.entries, PoseEntry{Bone: bone, Transform: t})
}

// Get reads a bone's transform.
//
// Parameters:
//   - bone: the bone index
//
// Returns:
//   - model.Transform: the bone's transform, zero if absent
//   - bool: true if the bone is present
func (p *Pose) Get(bone int32) (model.Transform, bool) {
	if p == nil {
		return model.Transform{}, false
	}
	i, ok := p.index[bone]
	if !ok {
		return model.Transform{}, false
	}
	return p.entries[i].Transform, true
}

// Has reports whether the bone is present.
func (p *Pose) Has(bone int32) bool {
	if p == nil {
		return false
	}
	_, ok := p.index[bone]
	return ok
}

// Len returns the number of bones in the pose.
func (p *Pose) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entries returns the pose's entries in order. The slice is owned by the pose
// and must not be modified.
//
// Returns:
//   - []PoseEntry: the ordered entries
func (p *Pose) Entries() []PoseEntry {
	if p == nil {
		return nil
	}
	return p.entries
}

// Bones returns the bone indices in pose order.
//
// Returns:
//   - []int32: a fresh slice of bone indices
func (p *Pose) Bones() []int32 {
	out := make([]int32, 0, p.Len())
	for _, e := range p.Entries() {
		out = append(out, e.Bone)
	}
	return out
}

// Reset empties the pose, keeping its allocations.
func (p *Pose) Reset() {
	p.entries = p.entries[:0]
	clear(p.index)
}

// CopyFrom replaces this pose's contents with other's.
//
// Parameters:
//   - other: the pose to copy, nil empties the pose
func (p *Pose) CopyFrom(other *Pose) {
	p.Reset()
	for _, e := range other.Entries() {
		p.Set(e.Bone, e.Transform)
	}
}

// Clone returns a deep copy of the pose.
//
// Returns:
//   - *Pose: the copy
func (p *Pose) Clone() *Pose {
	out := NewPose(p.Len())
	out.CopyFrom(p)
	return out
}
