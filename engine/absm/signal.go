package absm

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
)

// SignalStrategy decides which branches of a blend contribute signals.
type SignalStrategy int

const (
	// SignalsAll collects from every branch with a positive weight and from both states
	// of an active transition.
	SignalsAll SignalStrategy = iota

	// SignalsMaxWeight collects only from the heaviest branch of each blend.
	SignalsMaxWeight

	// SignalsMinWeight collects only from the lightest branch of each blend.
	SignalsMinWeight
)

func (s SignalStrategy) String() string {
	switch s {
	case SignalsAll:
		return "all"
	case SignalsMaxWeight:
		return "max weight"
	case SignalsMinWeight:
		return "min weight"
	default:
		return fmt.Sprintf("SignalStrategy(%d)", int(s))
	}
}

// Signal is an animation signal passed during the latest tick, tagged with the playback
// that produced it.
type Signal struct {
	Animation animation.Handle
	Name      string
	Time      float32
}

func (m *machine) CollectSignals(source animation.Source, strategy SignalStrategy) []Signal {
	signals, ok := source.(animation.SignalSource)
	if !ok {
		return nil
	}
	c := &signalCollector{
		m:        m,
		signals:  signals,
		strategy: strategy,
		visited:  make(map[NodeHandle]struct{}),
	}

	if tr, ok := m.transitions.Get(m.activeTransition); ok {
		src, srcOK := m.states.Get(tr.source)
		dst, dstOK := m.states.Get(tr.dest)
		switch {
		case strategy == SignalsAll:
			if srcOK {
				c.collect(src.root)
			}
			if dstOK {
				c.collect(dst.root)
			}
		case srcOK && dstOK:
			pick := dst.root
			if (strategy == SignalsMaxWeight) == (tr.Progress() < 0.5) {
				pick = src.root
			}
			c.collect(pick)
		}
		return c.out
	}

	if s, ok := m.states.Get(m.activeState); ok {
		c.collect(s.root)
	}
	return c.out
}

type signalCollector struct {
	m        *machine
	signals  animation.SignalSource
	strategy SignalStrategy
	visited  map[NodeHandle]struct{}
	out      []Signal
}

func (c *signalCollector) collect(h NodeHandle) {
	if _, seen := c.visited[h]; seen {
		return
	}
	c.visited[h] = struct{}{}

	node, ok := c.m.nodes.Get(h)
	if !ok {
		return
	}
	switch node.kind {
	case NodePlayAnimation:
		for _, sig := range c.signals.Signals(node.animation) {
			c.out = append(c.out, Signal{Animation: node.animation, Name: sig.Name, Time: sig.Time})
		}
	case NodeBlendAnimations:
		weights := make([]float32, len(node.blendInputs))
		for i, in := range node.blendInputs {
			weights[i] = in.Weight.Resolve(c.m.params)
		}
		c.collectWeighted(weights, func(i int) NodeHandle { return node.blendInputs[i].Node })
	case NodeBlendAnimationsByIndex:
		if len(node.indexInputs) == 0 {
			return
		}
		current := min(node.selected, len(node.indexInputs)-1)
		blendTime := node.indexInputs[current].BlendTime
		if !node.settledValid || node.settled == current || node.settled >= len(node.indexInputs) || blendTime <= 0 {
			c.collect(node.indexInputs[current].Node)
			return
		}
		t := node.blendElapsed / blendTime
		weights := make([]float32, len(node.indexInputs))
		weights[node.settled] = 1 - t
		weights[current] = t
		c.collectWeighted(weights, func(i int) NodeHandle { return node.indexInputs[i].Node })
	case NodeBlendSpace:
		weights := make([]float32, len(node.spacePoints))
		for _, w := range node.spaceWeights {
			if w.Point < len(weights) {
				weights[w.Point] = w.Weight
			}
		}
		c.collectWeighted(weights, func(i int) NodeHandle { return node.spacePoints[i].Node })
	}
}

// collectWeighted visits the branches with a positive weight, or only the heaviest or
// lightest of them. Ties go to the earlier branch.
func (c *signalCollector) collectWeighted(weights []float32, child func(i int) NodeHandle) {
	pick := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		switch c.strategy {
		case SignalsAll:
			c.collect(child(i))
		case SignalsMaxWeight:
			if pick < 0 || w > weights[pick] {
				pick = i
			}
		case SignalsMinWeight:
			if pick < 0 || w < weights[pick] {
				pick = i
			}
		}
	}
	if pick >= 0 {
		c.collect(child(pick))
	}
}
