package skeleton

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-absm/common"
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrBoneOutOfRange is returned when a pose names a bone the skeleton does not have.
var ErrBoneOutOfRange = errors.New("skeleton: bone out of range")

// Binder applies poses to a skeleton and derives the matrices a skinning pass needs.
// Bones missing from a pose keep their bind transform.
type Binder interface {
	animation.PoseConsumer

	// Skeleton returns the bound skeleton.
	Skeleton() *model.Skeleton

	// Local returns a bone's current local transform.
	//
	// Parameters:
	//   - bone: the bone index
	//
	// Returns:
	//   - model.Transform: the local transform
	//   - bool: false if the bone is out of range
	Local(bone int32) (model.Transform, bool)

	// World returns a bone's model-space matrix from the latest applied pose.
	//
	// Parameters:
	//   - bone: the bone index
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	//   - bool: false if the bone is out of range
	World(bone int32) (mgl32.Mat4, bool)

	// Skin returns a bone's skinning matrix, its world matrix times its inverse bind matrix.
	//
	// Parameters:
	//   - bone: the bone index
	//
	// Returns:
	//   - mgl32.Mat4: the skinning matrix
	//   - bool: false if the bone is out of range
	Skin(bone int32) (mgl32.Mat4, bool)

	// SkinMatrices copies every skinning matrix into dst, growing it as needed.
	//
	// Parameters:
	//   - dst: the destination slice, may be nil
	//
	// Returns:
	//   - []mgl32.Mat4: dst holding one matrix per bone
	SkinMatrices(dst []mgl32.Mat4) []mgl32.Mat4

	// Applied returns how many poses have been applied since construction.
	Applied() uint64

	// Reset returns every bone to its bind transform.
	Reset()
}

type binder struct {
	mu       *sync.RWMutex
	skeleton *model.Skeleton
	root     mgl32.Mat4
	local    []model.Transform
	world    []mgl32.Mat4
	skin     []mgl32.Mat4
	applied  uint64
}

var _ Binder = &binder{}

// NewBinder creates a Binder for the given skeleton, initialised at its bind pose.
// Parents must precede their children in skeleton.Bones.
//
// Parameters:
//   - skeleton: the skeleton to drive
//   - options: functional options for binder configuration
//
// Returns:
//   - Binder: the newly created binder
func NewBinder(skeleton *model.Skeleton, options ...BinderBuilderOption) Binder {
	if skeleton == nil {
		panic("skeleton: NewBinder requires a non-nil skeleton")
	}
	for i, b := range skeleton.Bones {
		if b.ParentIndex >= int32(i) {
			panic(fmt.Sprintf("skeleton: NewBinder requires parents to precede children (bone %d has parent %d)", i, b.ParentIndex))
		}
	}

	n := len(skeleton.Bones)
	b := &binder{
		mu:       &sync.RWMutex{},
		skeleton: skeleton,
		root:     mgl32.Ident4(),
		local:    make([]model.Transform, n),
		world:    make([]mgl32.Mat4, n),
		skin:     make([]mgl32.Mat4, n),
	}
	for _, opt := range options {
		opt(b)
	}
	b.resetLocked()
	return b
}

func (b *binder) Skeleton() *model.Skeleton {
	return b.skeleton
}

func (b *binder) ApplyPose(pose *animation.Pose) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bindLocals()
	var outOfRange []int32
	for _, e := range pose.Entries() {
		if e.Bone < 0 || int(e.Bone) >= len(b.local) {
			outOfRange = append(outOfRange, e.Bone)
			continue
		}
		b.local[e.Bone] = e.Transform
	}
	b.solve()
	b.applied++

	if len(outOfRange) > 0 {
		return fmt.Errorf("%w: %v (skeleton has %d bones)", ErrBoneOutOfRange, outOfRange, len(b.local))
	}
	return nil
}

func (b *binder) Local(bone int32) (model.Transform, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if bone < 0 || int(bone) >= len(b.local) {
		return model.Transform{}, false
	}
	return b.local[bone], true
}

func (b *binder) World(bone int32) (mgl32.Mat4, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if bone < 0 || int(bone) >= len(b.world) {
		return mgl32.Mat4{}, false
	}
	return b.world[bone], true
}

func (b *binder) Skin(bone int32) (mgl32.Mat4, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if bone < 0 || int(bone) >= len(b.skin) {
		return mgl32.Mat4{}, false
	}
	return b.skin[bone], true
}

func (b *binder) SkinMatrices(dst []mgl32.Mat4) []mgl32.Mat4 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if cap(dst) < len(b.skin) {
		dst = make([]mgl32.Mat4, len(b.skin))
	}
	dst = dst[:len(b.skin)]
	copy(dst, b.skin)
	return dst
}

func (b *binder) Applied() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.applied
}

func (b *binder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
}

func (b *binder) resetLocked() {
	b.bindLocals()
	b.solve()
}

func (b *binder) bindLocals() {
	for i, bone := range b.skeleton.Bones {
		b.local[i] = bone.LocalTransform
	}
}

// solve walks bones in storage order, so parents are always resolved first.
func (b *binder) solve() {
	for i, bone := range b.skeleton.Bones {
		l := b.local[i]
		local := common.ComposeTRS(l.Translation, l.Rotation, l.Scale)
		if bone.ParentIndex < 0 {
			b.world[i] = b.root.Mul4(local)
		} else {
			b.world[i] = b.world[bone.ParentIndex].Mul4(local)
		}
		b.skin[i] = b.world[i].Mul4(mgl32.Mat4(bone.InverseBindMatrix))
	}
}
