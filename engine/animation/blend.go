package animation

import (
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// WeightedPose pairs a pose with its blend weight.
type WeightedPose struct {
	Pose   *Pose
	Weight float32
}

func toQuat(r [4]float32) mgl32.Quat {
	return mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
}

func fromQuat(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

// LerpTransform interpolates two transforms: position and scale linearly, rotation
// along the shortest arc.
//
// Parameters:
//   - a: the transform at t = 0
//   - b: the transform at t = 1
//   - t: the interpolation factor, clamped to [0, 1]
//
// Returns:
//   - model.Transform: the interpolated transform
func LerpTransform(a, b model.Transform, t float32) model.Transform {
	t = clamp01(t)
	ta, tb := mgl32.Vec3(a.Translation), mgl32.Vec3(b.Translation)
	sa, sb := mgl32.Vec3(a.Scale), mgl32.Vec3(b.Scale)
	return model.Transform{
		Translation: ta.Add(tb.Sub(ta).Mul(t)),
		Rotation:    fromQuat(mgl32.QuatSlerp(toQuat(a.Rotation), toQuat(b.Rotation), t)),
		Scale:       sa.Add(sb.Sub(sa).Mul(t)),
	}
}

// Interpolate writes the blend of a toward b by factor t into out. Bones present
// in only one input are copied unchanged. Bone order is a's order followed by
// bones that appear only in b. out may not alias a or b.
//
// Parameters:
//   - out: the destination pose
//   - a: the pose at t = 0
//   - b: the pose at t = 1
//   - t: the interpolation factor, clamped to [0, 1]
func Interpolate(out, a, b *Pose, t float32) {
	out.Reset()
	for _, e := range a.Entries() {
		if other, ok := b.Get(e.Bone); ok {
			out.Set(e.Bone, LerpTransform(e.Transform, other, t))
			continue
		}
		out.Set(e.Bone, e.Transform)
	}
	for _, e := range b.Entries() {
		if !a.Has(e.Bone) {
			out.Set(e.Bone, e.Transform)
		}
	}
}

// NormalizeWeights clamps negative and NaN weights to zero and, when the total
// exceeds one, scales every weight so they sum to one.
//
// Parameters:
//   - weights: the weights to normalize in place
//
// Returns:
//   - float32: the total weight after normalization
func NormalizeWeights(weights []float32) float32 {
	var total float32
	for i, w := range weights {
		if math32.IsNaN(w) || w < 0 {
			weights[i] = 0
			continue
		}
		total += w
	}
	if total > 1 {
		for i := range weights {
			weights[i] /= total
		}
		total = 1
	}
	return total
}

// BlendWeighted writes the weighted blend of inputs into out. Weights are
// normalized with NormalizeWeights first. For each bone, inputs that carry the bone
// contribute in input order and any weight they leave uncovered goes to the identity
// transform. Bone order follows first appearance across inputs. out may not alias
// any input.
//
// Parameters:
//   - out: the destination pose
//   - inputs: the weighted input poses
func BlendWeighted(out *Pose, inputs []WeightedPose) {
	out.Reset()
	weights := make([]float32, len(inputs))
	for i, in := range inputs {
		weights[i] = in.Weight
	}
	NormalizeWeights(weights)

	for i, in := range inputs {
		for _, e := range in.Pose.Entries() {
			if out.Has(e.Bone) {
				continue
			}
			out.Set(e.Bone, blendBone(e.Bone, inputs[i:], weights[i:]))
		}
	}
}

func blendBone(bone int32, inputs []WeightedPose, weights []float32) model.Transform {
	var (
		translation mgl32.Vec3
		scale       mgl32.Vec3
		rotation    = mgl32.QuatIdent()
		covered     float32
	)
	for i, in := range inputs {
		w := weights[i]
		t, ok := in.Pose.Get(bone)
		if !ok || w == 0 {
			continue
		}
		covered += w
		translation = translation.Add(mgl32.Vec3(t.Translation).Mul(w))
		scale = scale.Add(mgl32.Vec3(t.Scale).Mul(w))
		rotation = mgl32.QuatSlerp(rotation, toQuat(t.Rotation), w/covered)
	}

	if covered < 1 {
		scale = scale.Add(mgl32.Vec3{1, 1, 1}.Mul(1 - covered))
		rotation = mgl32.QuatSlerp(mgl32.QuatIdent(), rotation, covered)
	}

	return model.Transform{
		Translation: translation,
		Rotation:    fromQuat(rotation),
		Scale:       scale,
	}
}

func clamp01(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}
