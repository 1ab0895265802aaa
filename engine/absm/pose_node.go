package absm

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

// NodeHandle references a PoseNode owned by a Machine.
type NodeHandle = pool.Handle[PoseNode]

// PoseNodeKind identifies the variant a PoseNode holds.
type PoseNodeKind int

const (
	// NodePlayAnimation forwards the pose of a single animation playback.
	NodePlayAnimation PoseNodeKind = iota

	// NodeBlendAnimations blends child poses by weight.
	NodeBlendAnimations

	// NodeBlendAnimationsByIndex selects one child by an index parameter.
	NodeBlendAnimationsByIndex

	// NodeBlendSpace blends the points of a 2-D space around a sampling point.
	NodeBlendSpace
)

func (k PoseNodeKind) String() string {
	switch k {
	case NodePlayAnimation:
		return "PlayAnimation"
	case NodeBlendAnimations:
		return "BlendAnimations"
	case NodeBlendAnimationsByIndex:
		return "BlendAnimationsByIndex"
	case NodeBlendSpace:
		return "BlendSpace"
	default:
		return fmt.Sprintf("PoseNodeKind(%d)", int(k))
	}
}

// PoseWeight is a blend weight that is either a constant or read from a float parameter.
type PoseWeight struct {
	parameter string
	constant  float32
}

// ConstantWeight builds a fixed weight.
func ConstantWeight(v float32) PoseWeight {
	return PoseWeight{constant: v}
}

// ParameterWeight builds a weight read from the named float parameter. A missing or
// mistyped parameter weighs 0.
func ParameterWeight(name string) PoseWeight {
	return PoseWeight{parameter: name}
}

// Parameter returns the parameter name, or "" for a constant weight.
func (w PoseWeight) Parameter() string {
	return w.parameter
}

// Resolve returns the weight's current value.
//
// Parameters:
//   - params: the parameter container
//
// Returns:
//   - float32: the weight
func (w PoseWeight) Resolve(params *ParameterContainer) float32 {
	if w.parameter == "" {
		return w.constant
	}
	v, _ := params.GetWeight(w.parameter)
	return v
}

// BlendInput is one child of a BlendAnimations node.
type BlendInput struct {
	Node   NodeHandle
	Weight PoseWeight
}

// IndexedInput is one child of a BlendAnimationsByIndex node. BlendTime is the time in
// seconds spent blending into this input when it becomes selected; 0 switches at once.
type IndexedInput struct {
	Node      NodeHandle
	BlendTime float32
}

// PoseNode is a closed sum of pose-producing nodes. Build one with NewPlayAnimation,
// NewBlendAnimations, NewBlendAnimationsByIndex or NewBlendSpace and add it to a Machine.
// The node caches the pose of its latest evaluation.
type PoseNode struct {
	kind PoseNodeKind

	animation      animation.Handle
	blendInputs    []BlendInput
	indexInputs    []IndexedInput
	indexParameter string
	easing         ease.TweenFunc

	pose        *animation.Pose
	evaluatedAt uint64

	// index blend state
	selected     int
	settled      int
	settledValid bool
	blendElapsed float32

	spacePoints       []BlendSpacePoint
	triangles         []Triangle
	samplingParameter string
	minValues         mgl32.Vec2
	maxValues         mgl32.Vec2
	snapStep          mgl32.Vec2
	spaceWeights      []PointWeight
}

// NewPlayAnimation builds a node that outputs the pose of an animation playback.
//
// Parameters:
//   - h: the playback handle in the animation source
//
// Returns:
//   - PoseNode: the node
func NewPlayAnimation(h animation.Handle) PoseNode {
	return PoseNode{kind: NodePlayAnimation, animation: h, pose: animation.NewPose(0)}
}

// NewBlendAnimations builds a node that blends its inputs by weight in declaration order.
//
// Parameters:
//   - inputs: the weighted children
//
// Returns:
//   - PoseNode: the node
func NewBlendAnimations(inputs ...BlendInput) PoseNode {
	return PoseNode{kind: NodeBlendAnimations, blendInputs: inputs, pose: animation.NewPose(0)}
}

// NewBlendAnimationsByIndex builds a node that outputs the input selected by an index
// parameter. A float parameter is rounded to the nearest index. Selection is clamped
// to the last input; a missing parameter selects the first input.
//
// Parameters:
//   - indexParameter: the name of the index parameter
//   - inputs: the selectable children
//
// Returns:
//   - PoseNode: the node
func NewBlendAnimationsByIndex(indexParameter string, inputs ...IndexedInput) PoseNode {
	return PoseNode{
		kind:           NodeBlendAnimationsByIndex,
		indexInputs:    inputs,
		indexParameter: indexParameter,
		easing:         ease.Linear,
		pose:           animation.NewPose(0),
	}
}

// Kind returns the node variant.
func (n *PoseNode) Kind() PoseNodeKind {
	return n.kind
}

// Animation returns the playback handle of a PlayAnimation node.
func (n *PoseNode) Animation() (animation.Handle, bool) {
	return n.animation, n.kind == NodePlayAnimation
}

// SetAnimation points a PlayAnimation node at another playback.
func (n *PoseNode) SetAnimation(h animation.Handle) {
	if n.kind == NodePlayAnimation {
		n.animation = h
	}
}

// BlendInputs returns the children of a BlendAnimations node.
func (n *PoseNode) BlendInputs() []BlendInput {
	return n.blendInputs
}

// SetBlendInputs replaces the children of a BlendAnimations node.
func (n *PoseNode) SetBlendInputs(inputs ...BlendInput) {
	if n.kind == NodeBlendAnimations {
		n.blendInputs = inputs
	}
}

// IndexInputs returns the children of a BlendAnimationsByIndex node.
func (n *PoseNode) IndexInputs() []IndexedInput {
	return n.indexInputs
}

// SetIndexInputs replaces the children of a BlendAnimationsByIndex node and restarts
// its selection.
func (n *PoseNode) SetIndexInputs(inputs ...IndexedInput) {
	if n.kind == NodeBlendAnimationsByIndex {
		n.indexInputs = inputs
		n.resetBlendState()
	}
}

// IndexParameter returns the parameter name a BlendAnimationsByIndex node reads.
func (n *PoseNode) IndexParameter() string {
	return n.indexParameter
}

// SetEasing sets the curve used while a BlendAnimationsByIndex node blends between inputs.
// A nil function restores linear blending.
func (n *PoseNode) SetEasing(fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	n.easing = fn
}

// Children returns the handles of the node's direct children in declaration order.
//
// Returns:
//   - []NodeHandle: the child handles
func (n *PoseNode) Children() []NodeHandle {
	switch n.kind {
	case NodeBlendAnimations:
		out := make([]NodeHandle, len(n.blendInputs))
		for i, in := range n.blendInputs {
			out[i] = in.Node
		}
		return out
	case NodeBlendAnimationsByIndex:
		out := make([]NodeHandle, len(n.indexInputs))
		for i, in := range n.indexInputs {
			out[i] = in.Node
		}
		return out
	case NodeBlendSpace:
		out := make([]NodeHandle, len(n.spacePoints))
		for i, p := range n.spacePoints {
			out[i] = p.Node
		}
		return out
	default:
		return nil
	}
}

// Pose returns the pose of the node's latest evaluation.
func (n *PoseNode) Pose() *animation.Pose {
	return n.pose
}

func (n *PoseNode) resetBlendState() {
	n.selected = 0
	n.settledValid = false
	n.settled = 0
	n.blendElapsed = 0
	n.spaceWeights = nil
}
