package absm

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
)

// Machine is an animation blending state machine. It owns pools of pose nodes, states
// and transitions, a parameter container and an event queue, and turns them into one
// pose per Tick.
//
// A Machine is not safe for concurrent use. Structural edits (adding or removing
// nodes, states and transitions) must happen between ticks.
type Machine interface {
	// Name returns the machine's identifier used in log messages.
	Name() string

	// SetName sets the machine's identifier.
	SetName(name string)

	// AddNode adds a pose node to the graph.
	//
	// Parameters:
	//   - node: the node, built with NewPlayAnimation, NewBlendAnimations, NewBlendAnimationsByIndex
	//     or NewBlendSpace
	//
	// Returns:
	//   - NodeHandle: the node's handle
	AddNode(node PoseNode) NodeHandle

	// RemoveNode frees a pose node. Handles to it become stale; states and nodes still
	// referencing it fail evaluation until they are re-pointed.
	//
	// Parameters:
	//   - h: the node handle
	//
	// Returns:
	//   - bool: false if the handle was not live
	RemoveNode(h NodeHandle) bool

	// Node borrows a pose node for inspection or editing between ticks.
	//
	// Parameters:
	//   - h: the node handle
	//
	// Returns:
	//   - *PoseNode: the node, nil if the handle is not live
	//   - bool: false if the handle is not live
	Node(h NodeHandle) (*PoseNode, bool)

	// Nodes returns every live node handle in pool order.
	Nodes() []NodeHandle

	// AddState adds a state. The first state added becomes the entry state.
	//
	// Parameters:
	//   - state: the state, built with NewState
	//
	// Returns:
	//   - StateHandle: the state's handle
	AddState(state State) StateHandle

	// RemoveState frees a state. If it was active, the next Tick reports a stale handle
	// until Reset is called. Transitions referencing it are left for the caller to remove.
	//
	// Parameters:
	//   - h: the state handle
	//
	// Returns:
	//   - bool: false if the handle was not live
	RemoveState(h StateHandle) bool

	// State borrows a state for inspection or editing between ticks.
	//
	// Parameters:
	//   - h: the state handle
	//
	// Returns:
	//   - *State: the state, nil if the handle is not live
	//   - bool: false if the handle is not live
	State(h StateHandle) (*State, bool)

	// States returns every live state handle in pool order.
	States() []StateHandle

	// FindState looks up the first state with the given name in pool order.
	//
	// Parameters:
	//   - name: the state name
	//
	// Returns:
	//   - StateHandle: the state's handle
	//   - bool: false if no state has that name
	FindState(name string) (StateHandle, bool)

	// EntryState returns the state activated on the first tick and after Reset.
	EntryState() StateHandle

	// SetEntryState changes the entry state.
	//
	// Parameters:
	//   - h: the new entry state
	SetEntryState(h StateHandle)

	// AddTransition adds a transition between two live states.
	//
	// Parameters:
	//   - t: the transition, built with NewTransition
	//
	// Returns:
	//   - TransitionHandle: the transition's handle
	//   - error: a configuration error for a negative duration or a dead endpoint
	AddTransition(t Transition) (TransitionHandle, error)

	// RemoveTransition frees a transition. If it was active, the next Tick reports a
	// stale handle until Reset is called.
	//
	// Parameters:
	//   - h: the transition handle
	//
	// Returns:
	//   - bool: false if the handle was not live
	RemoveTransition(h TransitionHandle) bool

	// Transition borrows a transition for inspection or editing between ticks.
	//
	// Parameters:
	//   - h: the transition handle
	//
	// Returns:
	//   - *Transition: the transition, nil if the handle is not live
	//   - bool: false if the handle is not live
	Transition(h TransitionHandle) (*Transition, bool)

	// Transitions returns every live transition handle in pool order.
	Transitions() []TransitionHandle

	// FindTransition looks up the first transition with the given name in pool order.
	//
	// Parameters:
	//   - name: the transition name
	//
	// Returns:
	//   - TransitionHandle: the transition's handle
	//   - bool: false if no transition has that name
	FindTransition(name string) (TransitionHandle, bool)

	// ActiveState returns the current state. ok is false before the first tick,
	// after Reset and while the machine is empty.
	ActiveState() (StateHandle, bool)

	// ActiveTransition returns the running transition, if any.
	ActiveTransition() (TransitionHandle, bool)

	// Parameters returns the machine's parameter container.
	Parameters() *ParameterContainer

	// SetParameter inserts or overwrites a parameter.
	//
	// Parameters:
	//   - name: the parameter name
	//   - p: the value
	SetParameter(name string, p Parameter)

	// Events returns the machine's event queue.
	Events() *EventQueue

	// PopEvent removes the oldest queued event.
	//
	// Returns:
	//   - Event: the event
	//   - bool: false if the queue is empty
	PopEvent() (Event, bool)

	// Tick runs one update: transition arbitration, pose graph evaluation, blending and
	// transition advance, in that order. The animation source must already have been
	// advanced for this tick.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds, must be >= 0
	//   - source: the animation source PlayAnimation nodes read from
	//
	// Returns:
	//   - *animation.Pose: the final pose, owned by the machine and valid until the next Tick
	//   - error: ErrNotConfigured for an empty machine, a *TickError for a broken one
	Tick(dt float32, source animation.Source) (*animation.Pose, error)

	// Evaluate evaluates a single pose node outside of Tick, e.g. for previews.
	// Index blends are not advanced.
	//
	// Parameters:
	//   - h: the node to evaluate
	//   - source: the animation source
	//
	// Returns:
	//   - *animation.Pose: the node's pose
	//   - error: a *TickError for dangling handles or cycles
	Evaluate(h NodeHandle, source animation.Source) (*animation.Pose, error)

	// CollectSignals walks the active state, or both states of the active transition,
	// and gathers the signals their playbacks passed during the latest Tick. Blend
	// weights from that Tick decide which branches contribute under the strategy.
	//
	// Parameters:
	//   - source: the animation source the latest Tick read from
	//   - strategy: which blend branches contribute
	//
	// Returns:
	//   - []Signal: the collected signals, nil if the source carries no signals
	CollectSignals(source animation.Source, strategy SignalStrategy) []Signal

	// Pose returns the final pose of the latest successful Tick.
	Pose() *animation.Pose

	// Validate checks every state root, transition and node child for dead handles,
	// invalid durations and cycles without ticking.
	//
	// Returns:
	//   - error: the first problem found as a *TickError, or nil
	Validate() error

	// Reset clears the active state and transition, rewinds every transition and index
	// blend and empties the event queue. The next Tick re-enters the entry state.
	Reset()

	// Debug reports whether debug logging is enabled.
	Debug() bool

	// SetDebug enables or disables logging of state and transition changes.
	SetDebug(enabled bool)
}

type machine struct {
	name   string
	logger *slog.Logger
	debug  bool

	nodes       *pool.Pool[PoseNode]
	states      *pool.Pool[State]
	transitions *pool.Pool[Transition]

	entry            StateHandle
	activeState      StateHandle
	activeTransition TransitionHandle

	params        *ParameterContainer
	events        *EventQueue
	eventCapacity int
	defaultEasing ease.TweenFunc

	pose *animation.Pose
	tick uint64
}

var _ Machine = &machine{}

// NewMachine creates an empty Machine with the provided options.
//
// Parameters:
//   - options: functional options for machine configuration
//
// Returns:
//   - Machine: the newly created machine
func NewMachine(options ...MachineBuilderOption) Machine {
	m := &machine{
		name:          "machine",
		logger:        slog.New(slog.DiscardHandler),
		nodes:         pool.NewPool[PoseNode](),
		states:        pool.NewPool[State](),
		transitions:   pool.NewPool[Transition](),
		params:        NewParameterContainer(),
		eventCapacity: DefaultEventCapacity,
		pose:          animation.NewPose(0),
	}
	for _, opt := range options {
		opt(m)
	}
	m.events = NewEventQueue(m.eventCapacity)
	return m
}

func (m *machine) Name() string {
	return m.name
}

func (m *machine) SetName(name string) {
	m.name = name
}

func (m *machine) AddNode(node PoseNode) NodeHandle {
	node.pose = animation.NewPose(node.pose.Len())
	node.evaluatedAt = 0
	node.resetBlendState()
	switch node.kind {
	case NodeBlendAnimationsByIndex:
		node.SetEasing(node.easing)
	case NodeBlendSpace:
		node.spacePoints = slices.Clone(node.spacePoints)
		node.triangles = triangulate(node.spacePoints)
	}
	return m.nodes.Spawn(node)
}

func (m *machine) RemoveNode(h NodeHandle) bool {
	_, ok := m.nodes.Free(h)
	return ok
}

func (m *machine) Node(h NodeHandle) (*PoseNode, bool) {
	return m.nodes.Get(h)
}

func (m *machine) Nodes() []NodeHandle {
	return m.nodes.Handles()
}

func (m *machine) AddState(state State) StateHandle {
	h := m.states.Spawn(state)
	if !m.states.IsValid(m.entry) {
		m.entry = h
	}
	return h
}

func (m *machine) RemoveState(h StateHandle) bool {
	_, ok := m.states.Free(h)
	return ok
}

func (m *machine) State(h StateHandle) (*State, bool) {
	return m.states.Get(h)
}

func (m *machine) States() []StateHandle {
	return m.states.Handles()
}

func (m *machine) FindState(name string) (StateHandle, bool) {
	var found StateHandle
	m.states.Each(func(h StateHandle, s *State) bool {
		if s.name == name {
			found = h
			return false
		}
		return true
	})
	return found, !found.IsNone()
}

func (m *machine) EntryState() StateHandle {
	return m.entry
}

func (m *machine) SetEntryState(h StateHandle) {
	m.entry = h
}

func (m *machine) AddTransition(t Transition) (TransitionHandle, error) {
	if err := t.validate(); err != nil {
		return TransitionHandle{}, configError("add transition", t.name, err)
	}
	if !m.states.IsValid(t.source) {
		return TransitionHandle{}, configError("add transition", fmt.Sprintf("%s source %s", t.name, t.source), ErrDanglingHandle)
	}
	if !m.states.IsValid(t.dest) {
		return TransitionHandle{}, configError("add transition", fmt.Sprintf("%s dest %s", t.name, t.dest), ErrDanglingHandle)
	}
	t.rewind()
	if !t.eased && m.defaultEasing != nil {
		t.easing = m.defaultEasing
		t.tween = nil
	}
	if t.tween == nil {
		t.rebuildTween()
	}
	return m.transitions.Spawn(t), nil
}

func (m *machine) RemoveTransition(h TransitionHandle) bool {
	_, ok := m.transitions.Free(h)
	return ok
}

func (m *machine) Transition(h TransitionHandle) (*Transition, bool) {
	return m.transitions.Get(h)
}

func (m *machine) Transitions() []TransitionHandle {
	return m.transitions.Handles()
}

func (m *machine) FindTransition(name string) (TransitionHandle, bool) {
	var found TransitionHandle
	m.transitions.Each(func(h TransitionHandle, t *Transition) bool {
		if t.name == name {
			found = h
			return false
		}
		return true
	})
	return found, !found.IsNone()
}

func (m *machine) ActiveState() (StateHandle, bool) {
	return m.activeState, !m.activeState.IsNone()
}

func (m *machine) ActiveTransition() (TransitionHandle, bool) {
	return m.activeTransition, !m.activeTransition.IsNone()
}

func (m *machine) Parameters() *ParameterContainer {
	return m.params
}

func (m *machine) SetParameter(name string, p Parameter) {
	m.params.Set(name, p)
}

func (m *machine) Events() *EventQueue {
	return m.events
}

func (m *machine) PopEvent() (Event, bool) {
	return m.events.Pop()
}

func (m *machine) Pose() *animation.Pose {
	return m.pose
}

func (m *machine) Debug() bool {
	return m.debug
}

func (m *machine) SetDebug(enabled bool) {
	m.debug = enabled
}

func (m *machine) Reset() {
	m.activeState = StateHandle{}
	m.activeTransition = TransitionHandle{}
	m.transitions.Each(func(_ TransitionHandle, t *Transition) bool {
		t.rewind()
		return true
	})
	m.nodes.Each(func(_ NodeHandle, n *PoseNode) bool {
		n.resetBlendState()
		return true
	})
	m.events.Clear()
	m.pose.Reset()
	m.logDebug("reset")
}

func (m *machine) Evaluate(h NodeHandle, source animation.Source) (*animation.Pose, error) {
	m.tick++
	return m.newEvaluator(0, source).evaluate(h)
}

func (m *machine) Tick(dt float32, source animation.Source) (*animation.Pose, error) {
	if m.states.Len() == 0 {
		return nil, ErrNotConfigured
	}
	if dt < 0 || math32.IsNaN(dt) {
		return nil, configError("tick", fmt.Sprintf("dt=%g", dt), ErrInvalidDelta)
	}

	if m.activeState.IsNone() {
		if err := m.activate(); err != nil {
			return nil, err
		}
	}

	tr, err := m.checkActive()
	if err != nil {
		return nil, err
	}

	// 1. arbitration
	if tr == nil {
		if tr, err = m.arbitrate(source); err != nil {
			return nil, err
		}
	}

	// 2. evaluation
	m.tick++
	ev := m.newEvaluator(dt, source)
	active, _ := m.states.Get(m.activeState)
	srcPose, err := ev.evaluate(active.root)
	if err != nil {
		return nil, err
	}

	// 3. blending
	if tr == nil {
		m.pose.CopyFrom(srcPose)
		return m.pose, nil
	}

	dest, _ := m.states.Get(tr.dest)
	dstPose, err := ev.evaluate(dest.root)
	if err != nil {
		return nil, err
	}
	if tr.duration == 0 {
		m.pose.CopyFrom(dstPose)
	} else {
		animation.Interpolate(m.pose, srcPose, dstPose, tr.Progress())
	}

	// 4. advance
	tr.advance(dt)
	if tr.IsDone() {
		m.complete(tr)
	}
	return m.pose, nil
}

func (m *machine) newEvaluator(dt float32, source animation.Source) *evaluator {
	return &evaluator{
		nodes:   m.nodes,
		params:  m.params,
		source:  source,
		dt:      dt,
		tick:    m.tick,
		onStack: make(map[NodeHandle]struct{}),
	}
}

func (m *machine) activate() error {
	h := m.entry
	if !m.states.IsValid(h) {
		handles := m.states.Handles()
		if len(handles) == 0 {
			return ErrNotConfigured
		}
		h = handles[0]
	}
	m.activeState = h
	m.events.Push(Event{Kind: EventStateEnter, State: h})
	m.logDebug("entered state", "state", m.stateName(h))
	return nil
}

// checkActive verifies that the active state and transition survived any structural
// edits since the previous tick.
func (m *machine) checkActive() (*Transition, error) {
	if !m.states.IsValid(m.activeState) {
		return nil, staleError("tick", "active state "+m.activeState.String())
	}
	if m.activeTransition.IsNone() {
		return nil, nil
	}
	tr, ok := m.transitions.Get(m.activeTransition)
	if !ok {
		return nil, staleError("tick", "active transition "+m.activeTransition.String())
	}
	if !m.states.IsValid(tr.source) {
		return nil, staleError("tick", fmt.Sprintf("transition %s source %s", tr.name, tr.source))
	}
	if !m.states.IsValid(tr.dest) {
		return nil, staleError("tick", fmt.Sprintf("transition %s dest %s", tr.name, tr.dest))
	}
	if err := tr.validate(); err != nil {
		return nil, configError("tick", "transition "+tr.name, err)
	}
	return tr, nil
}

// arbitrate starts the first outgoing transition of the active state, in pool order,
// whose condition holds.
func (m *machine) arbitrate(source animation.Source) (*Transition, error) {
	var (
		selected *Transition
		err      error
	)
	m.transitions.Each(func(h TransitionHandle, t *Transition) bool {
		if t.source != m.activeState || t.dest == m.activeState {
			return true
		}
		if !t.Ready(m.params, source) {
			return true
		}
		if !m.states.IsValid(t.dest) {
			err = configError("start transition", fmt.Sprintf("%s dest %s", t.name, t.dest), ErrDanglingHandle)
			return false
		}
		if verr := t.validate(); verr != nil {
			err = configError("start transition", t.name, verr)
			return false
		}
		t.begin()
		selected = t
		m.activeTransition = h
		m.events.Push(Event{Kind: EventActiveTransitionChanged, Transition: h})
		m.logDebug("transition started",
			"transition", t.name,
			"from", m.stateName(t.source),
			"to", m.stateName(t.dest),
		)
		return false
	})
	return selected, err
}

func (m *machine) complete(tr *Transition) {
	prev := m.activeState
	m.activeState = tr.dest
	m.activeTransition = TransitionHandle{}

	m.events.Push(Event{Kind: EventStateLeave, State: prev})
	m.events.Push(Event{Kind: EventStateEnter, State: tr.dest})
	m.events.Push(Event{Kind: EventActiveStateChanged, Prev: prev, New: tr.dest})
	m.events.Push(Event{Kind: EventActiveTransitionChanged})
	m.logDebug("transition completed",
		"transition", tr.name,
		"from", m.stateName(prev),
		"to", m.stateName(tr.dest),
	)
}

func (m *machine) stateName(h StateHandle) string {
	if s, ok := m.states.Get(h); ok {
		return s.name
	}
	return h.String()
}

func (m *machine) logDebug(msg string, args ...any) {
	if !m.debug {
		return
	}
	m.logger.Info(fmt.Sprintf("absm[%s]: %s", m.name, msg), args...)
}
