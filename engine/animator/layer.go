package animator

import (
	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
)

// LayerMask is a set of bones a layer leaves untouched.
type LayerMask map[int32]struct{}

// NewLayerMask builds a mask that excludes the given bones.
//
// Parameters:
//   - bones: the bone indices to exclude
//
// Returns:
//   - LayerMask: the mask
func NewLayerMask(bones ...int32) LayerMask {
	m := make(LayerMask, len(bones))
	for _, b := range bones {
		m[b] = struct{}{}
	}
	return m
}

// Excludes reports whether the bone is masked out.
func (m LayerMask) Excludes(bone int32) bool {
	_, ok := m[bone]
	return ok
}

// LayerSignal is an animation signal tagged with the layer it was collected from.
type LayerSignal struct {
	Layer string
	absm.Signal
}

// Layer is one machine in an Animator's stack. Layers are applied in order: bones a
// layer shares with the layers below are blended toward it by Weight, bones only it
// animates are taken as-is, and masked bones are skipped.
type Layer struct {
	Name    string
	Machine absm.Machine
	Weight  float32
	Mask    LayerMask

	masked *animation.Pose
}

func (l *Layer) filter(pose *animation.Pose) *animation.Pose {
	if len(l.Mask) == 0 {
		return pose
	}
	if l.masked == nil {
		l.masked = animation.NewPose(pose.Len())
	}
	l.masked.Reset()
	for _, e := range pose.Entries() {
		if !l.Mask.Excludes(e.Bone) {
			l.masked.Set(e.Bone, e.Transform)
		}
	}
	return l.masked
}
