package animation

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// SampleClip writes the clip's transforms at time t into out. Channels without keys
// for a component fall back to the skeleton's bind transform, or identity when no
// skeleton is given. Bones appear in channel order.
//
// Parameters:
//   - clip: the clip to sample
//   - t: the time in seconds
//   - skeleton: optional bind pose source, may be nil
//   - out: the destination pose
func SampleClip(clip *model.AnimationClip, t float32, skeleton *model.Skeleton, out *Pose) {
	out.Reset()
	if clip == nil {
		return
	}
	for i := range clip.Channels {
		ch := &clip.Channels[i]
		base := model.IdentityTransform()
		if skeleton != nil && ch.BoneIndex >= 0 && int(ch.BoneIndex) < len(skeleton.Bones) {
			base = skeleton.Bones[ch.BoneIndex].LocalTransform
		}
		if len(ch.PositionKeys) > 0 {
			base.Translation = sampleVector(ch.PositionKeys, t)
		}
		if len(ch.RotationKeys) > 0 {
			base.Rotation = sampleQuaternion(ch.RotationKeys, t)
		}
		if len(ch.ScaleKeys) > 0 {
			base.Scale = sampleVector(ch.ScaleKeys, t)
		}
		out.Set(ch.BoneIndex, base)
	}
}

// keySpan finds the pair of keys surrounding t and the local factor between them.
func keySpan(n int, timeAt func(int) float32, t float32) (int, int, float32) {
	if n == 1 || t <= timeAt(0) {
		return 0, 0, 0
	}
	if t >= timeAt(n-1) {
		return n - 1, n - 1, 0
	}
	next := sort.Search(n, func(i int) bool { return timeAt(i) > t })
	prev := next - 1
	span := timeAt(next) - timeAt(prev)
	if span <= 0 {
		return next, next, 0
	}
	return prev, next, (t - timeAt(prev)) / span
}

func sampleVector(keys []model.VectorKeyframe, t float32) [3]float32 {
	a, b, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if a == b {
		return keys[a].Value
	}
	va, vb := mgl32.Vec3(keys[a].Value), mgl32.Vec3(keys[b].Value)
	return va.Add(vb.Sub(va).Mul(f))
}

func sampleQuaternion(keys []model.QuaternionKeyframe, t float32) [4]float32 {
	a, b, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if a == b {
		return keys[a].Value
	}
	return fromQuat(mgl32.QuatSlerp(toQuat(keys[a].Value), toQuat(keys[b].Value), f))
}
