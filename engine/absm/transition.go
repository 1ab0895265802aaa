package absm

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TransitionHandle references a Transition owned by a Machine.
type TransitionHandle = pool.Handle[Transition]

// TransitionPhase is the lifecycle position of a Transition.
type TransitionPhase int

const (
	// TransitionIdle waits for arbitration to select it.
	TransitionIdle TransitionPhase = iota

	// TransitionRunning is blending source into destination.
	TransitionRunning

	// TransitionCompleted has reached its duration.
	TransitionCompleted
)

func (p TransitionPhase) String() string {
	switch p {
	case TransitionIdle:
		return "idle"
	case TransitionRunning:
		return "running"
	case TransitionCompleted:
		return "completed"
	default:
		return fmt.Sprintf("TransitionPhase(%d)", int(p))
	}
}

// Transition is a timed blend between two states, gated by a condition.
type Transition struct {
	name      string
	source    StateHandle
	dest      StateHandle
	duration  float32
	elapsed   float32
	condition Condition
	invert    bool
	easing    ease.TweenFunc
	eased     bool
	tween     *gween.Tween
	phase     TransitionPhase
}

// TransitionBuilderOption is a functional option for configuring a Transition via NewTransition.
type TransitionBuilderOption func(*Transition)

// WithCondition is an option builder that replaces the rule condition with an expression tree.
//
// Parameters:
//   - c: the condition
//
// Returns:
//   - TransitionBuilderOption: a function that applies the condition option to a transition
func WithCondition(c Condition) TransitionBuilderOption {
	return func(t *Transition) {
		t.condition = c
	}
}

// WithInvert is an option builder that negates the transition's condition.
//
// Parameters:
//   - invert: true to fire when the condition is false
//
// Returns:
//   - TransitionBuilderOption: a function that applies the invert option to a transition
func WithInvert(invert bool) TransitionBuilderOption {
	return func(t *Transition) {
		t.invert = invert
	}
}

// WithEasing is an option builder that sets the curve applied to the transition's progress.
//
// Parameters:
//   - fn: the easing function, nil for linear
//
// Returns:
//   - TransitionBuilderOption: a function that applies the easing option to a transition
func WithEasing(fn ease.TweenFunc) TransitionBuilderOption {
	return func(t *Transition) {
		t.easing = fn
		t.eased = fn != nil
	}
}

// NewTransition builds a transition from source to dest that fires while the named rule
// parameter is true. A duration of 0 switches states on the tick the transition starts.
//
// Parameters:
//   - name: the transition name
//   - source: the state the transition leaves
//   - dest: the state the transition enters
//   - duration: the blend time in seconds
//   - rule: the name of the rule parameter gating the transition
//   - options: functional options for the transition
//
// Returns:
//   - Transition: the transition, ready to add to a Machine
func NewTransition(name string, source, dest StateHandle, duration float32, rule string, options ...TransitionBuilderOption) Transition {
	t := Transition{
		name:      name,
		source:    source,
		dest:      dest,
		duration:  duration,
		condition: Param(rule),
		easing:    ease.Linear,
	}
	for _, opt := range options {
		opt(&t)
	}
	if t.easing == nil {
		t.easing = ease.Linear
	}
	t.rebuildTween()
	return t
}

// Name returns the transition name.
func (t *Transition) Name() string {
	return t.name
}

// SetName renames the transition.
func (t *Transition) SetName(name string) {
	t.name = name
}

// Source returns the state the transition leaves.
func (t *Transition) Source() StateHandle {
	return t.source
}

// Dest returns the state the transition enters.
func (t *Transition) Dest() StateHandle {
	return t.dest
}

// Duration returns the blend time in seconds.
func (t *Transition) Duration() float32 {
	return t.duration
}

// SetDuration changes the blend time. Shortening a running transition below its elapsed
// time makes the next Tick fail with ErrInconsistentTransition.
func (t *Transition) SetDuration(duration float32) {
	t.duration = duration
	t.rebuildTween()
}

// Elapsed returns the time spent blending since the transition started.
func (t *Transition) Elapsed() float32 {
	return t.elapsed
}

// Phase returns where the transition is in its lifecycle.
func (t *Transition) Phase() TransitionPhase {
	return t.phase
}

// Condition returns the condition gating the transition.
func (t *Transition) Condition() Condition {
	return t.condition
}

// SetCondition replaces the condition gating the transition.
func (t *Transition) SetCondition(c Condition) {
	t.condition = c
}

// Invert reports whether the condition is negated.
func (t *Transition) Invert() bool {
	return t.invert
}

// SetInvert sets whether the condition is negated.
func (t *Transition) SetInvert(invert bool) {
	t.invert = invert
}

// SetEasing sets the curve applied to the progress. A nil function restores linear
// progress. The machine default easing no longer applies afterwards.
func (t *Transition) SetEasing(fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	t.easing = fn
	t.eased = true
	t.rebuildTween()
}

// Progress returns the eased blend factor in [0, 1]. Zero-length transitions report 1.
func (t *Transition) Progress() float32 {
	if t.duration <= 0 {
		return 1
	}
	if t.tween == nil {
		t.rebuildTween()
	}
	p, _ := t.tween.Set(t.elapsed)
	return p
}

// IsDone reports whether the elapsed time has reached the duration.
func (t *Transition) IsDone() bool {
	return t.elapsed >= t.duration
}

// Ready evaluates the condition, inverted when requested.
//
// Parameters:
//   - params: the parameter container
//   - source: the animation source for AnimationEnded leaves
//
// Returns:
//   - bool: true if the transition may start
func (t *Transition) Ready(params *ParameterContainer, source animation.Source) bool {
	return t.condition.Evaluate(params, source) != t.invert
}

func (t *Transition) validate() error {
	if math32.IsNaN(t.duration) || t.duration < 0 {
		return ErrInvalidDuration
	}
	if math32.IsNaN(t.elapsed) || t.elapsed < 0 || t.elapsed > t.duration {
		return ErrInconsistentTransition
	}
	return nil
}

func (t *Transition) begin() {
	t.elapsed = 0
	t.phase = TransitionRunning
}

func (t *Transition) advance(dt float32) {
	t.elapsed = settle(math32.Min(t.elapsed+dt, t.duration), t.duration)
	if t.IsDone() {
		t.phase = TransitionCompleted
	}
}

// completionTolerance is the relative gap below which an elapsed time counts as having
// reached its total, so fixed steps such as 1/60 s that do not sum exactly still finish.
const completionTolerance = 1e-5

// settle snaps elapsed onto total once it is within completionTolerance of it.
func settle(elapsed, total float32) float32 {
	if total-elapsed <= completionTolerance*math32.Max(total, 1) {
		return total
	}
	return elapsed
}

func (t *Transition) rewind() {
	t.elapsed = 0
	t.phase = TransitionIdle
}

func (t *Transition) rebuildTween() {
	fn := t.easing
	if fn == nil {
		fn = ease.Linear
	}
	t.tween = gween.New(0, 1, t.duration, fn)
}
