package absm

import (
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
	"github.com/chewxy/math32"
)

// evaluator walks a pose graph once per tick. Nodes reached twice in the same tick
// return their cached pose; a node reached while still on the stack is a cycle.
type evaluator struct {
	nodes   *pool.Pool[PoseNode]
	params  *ParameterContainer
	source  animation.Source
	dt      float32
	tick    uint64
	onStack map[NodeHandle]struct{}
}

func (e *evaluator) evaluate(h NodeHandle) (*animation.Pose, error) {
	node, ok := e.nodes.Get(h)
	if !ok {
		return nil, nodeError("evaluate node", e.nodes, h)
	}
	if _, busy := e.onStack[h]; busy {
		return nil, configError("evaluate node", h.String(), ErrCycle)
	}
	if node.evaluatedAt == e.tick {
		return node.pose, nil
	}

	e.onStack[h] = struct{}{}
	defer delete(e.onStack, h)

	var err error
	switch node.kind {
	case NodePlayAnimation:
		err = e.playAnimation(node)
	case NodeBlendAnimations:
		err = e.blendAnimations(node)
	case NodeBlendAnimationsByIndex:
		err = e.blendByIndex(node)
	case NodeBlendSpace:
		err = e.blendSpace(node)
	default:
		err = configError("evaluate node", h.String(), ErrDanglingHandle)
	}
	if err != nil {
		return nil, err
	}

	node.evaluatedAt = e.tick
	return node.pose, nil
}

func (e *evaluator) playAnimation(node *PoseNode) error {
	if e.source == nil {
		return configError("play animation", node.animation.String(), ErrDanglingHandle)
	}
	pose, ok := e.source.Pose(node.animation)
	if !ok {
		return configError("play animation", node.animation.String(), ErrDanglingHandle)
	}
	node.pose.CopyFrom(pose)
	return nil
}

func (e *evaluator) blendAnimations(node *PoseNode) error {
	inputs := make([]animation.WeightedPose, 0, len(node.blendInputs))
	for _, in := range node.blendInputs {
		pose, err := e.evaluate(in.Node)
		if err != nil {
			return err
		}
		inputs = append(inputs, animation.WeightedPose{Pose: pose, Weight: in.Weight.Resolve(e.params)})
	}
	animation.BlendWeighted(node.pose, inputs)
	return nil
}

func (e *evaluator) blendByIndex(node *PoseNode) error {
	if len(node.indexInputs) == 0 {
		node.pose.Reset()
		return nil
	}

	index := e.selectIndex(node)
	node.selected = index
	current, err := e.evaluate(node.indexInputs[index].Node)
	if err != nil {
		return err
	}

	if !node.settledValid || node.settled >= len(node.indexInputs) {
		node.settled = index
		node.settledValid = true
		node.blendElapsed = 0
	}

	blendTime := node.indexInputs[index].BlendTime
	if node.settled == index || blendTime <= 0 {
		node.settled = index
		node.blendElapsed = 0
		node.pose.CopyFrom(current)
		return nil
	}

	previous, err := e.evaluate(node.indexInputs[node.settled].Node)
	if err != nil {
		return err
	}

	node.blendElapsed = settle(math32.Min(node.blendElapsed+e.dt, blendTime), blendTime)
	t := node.easing(node.blendElapsed, 0, 1, blendTime)
	animation.Interpolate(node.pose, previous, current, t)

	if node.blendElapsed >= blendTime {
		node.settled = index
		node.blendElapsed = 0
	}
	return nil
}

func (e *evaluator) selectIndex(node *PoseNode) int {
	last := len(node.indexInputs) - 1
	p, ok := e.params.Get(node.indexParameter)
	if !ok {
		return 0
	}
	if v, ok := p.Index(); ok {
		return min(int(v), last)
	}
	if v, ok := p.Weight(); ok && !math32.IsNaN(v) {
		return int(math32.Round(math32.Max(0, math32.Min(v, float32(last)))))
	}
	return 0
}

func (e *evaluator) blendSpace(node *PoseNode) error {
	sample, ok := e.params.GetSamplingPoint(node.samplingParameter)
	if !ok {
		node.spaceWeights = nil
		node.pose.Reset()
		return nil
	}

	weights := node.Weights(sample)
	inputs := make([]animation.WeightedPose, 0, len(weights))
	for _, w := range weights {
		pose, err := e.evaluate(node.spacePoints[w.Point].Node)
		if err != nil {
			return err
		}
		inputs = append(inputs, animation.WeightedPose{Pose: pose, Weight: w.Weight})
	}
	node.spaceWeights = weights
	animation.BlendWeighted(node.pose, inputs)
	return nil
}
