package model

// --- Transform & Skeleton Types ---

// Transform represents a decomposed local transform used for pose blending.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns the transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones).
	// Parents always precede their children in Skeleton.Bones.
	ParentIndex int32

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	InverseBindMatrix [16]float32

	// LocalTransform is the bone's bind transform relative to its parent.
	LocalTransform Transform
}

// Skeleton represents a bone hierarchy for skeletal animation.
type Skeleton struct {
	// Bones is the array of all bones in the skeleton.
	Bones []Bone

	// RootBoneIndices are indices of bones with no parent.
	RootBoneIndices []int32

	// BoneNameToIndex maps bone names to their indices for quick lookup.
	BoneNameToIndex map[string]int32
}

// NewSkeleton builds a Skeleton from a parent-ordered bone list and fills in the
// root indices and name lookup.
//
// Parameters:
//   - bones: the bones, each parent listed before its children
//
// Returns:
//   - *Skeleton: the assembled skeleton
func NewSkeleton(bones []Bone) *Skeleton {
	s := &Skeleton{
		Bones:           bones,
		BoneNameToIndex: make(map[string]int32, len(bones)),
	}
	for i, b := range bones {
		s.BoneNameToIndex[b.Name] = int32(i)
		if b.ParentIndex < 0 {
			s.RootBoneIndices = append(s.RootBoneIndices, int32(i))
		}
	}
	return s
}

// BoneIndex looks up a bone by name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - int32: the bone index, or -1 if absent
func (s *Skeleton) BoneIndex(name string) int32 {
	if idx, ok := s.BoneNameToIndex[name]; ok {
		return idx
	}
	return -1
}

// BoneCount returns the number of bones in the skeleton.
func (s *Skeleton) BoneCount() int {
	return len(s.Bones)
}

// --- Animation Types ---

// AnimationClip represents a single animation (walk, run, attack, etc.).
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in seconds.
	Duration float32

	// TicksPerSecond is the sample rate of the animation.
	TicksPerSecond float32

	// Channels contains animation data for each animated bone, in bone order.
	Channels []AnimationChannel

	// Signals are named moments in the clip, in time order.
	Signals []AnimationSignal
}

// AnimationSignal marks a moment in a clip that gameplay code reacts to, such as a
// footstep. A playback passing Time emits the signal once.
type AnimationSignal struct {
	// Name identifies the signal.
	Name string

	// Time is the signal's position in the clip in seconds.
	Time float32

	// Disabled mutes the signal without removing it.
	Disabled bool
}

// AnimationChannel contains keyframe data for a single bone.
type AnimationChannel struct {
	// BoneIndex is the index of the bone this channel animates.
	BoneIndex int32

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// RotationKeys are keyframes for rotation (quaternion).
	RotationKeys []QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value [3]float32
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe (x, y, z, w).
	Value [4]float32
}
