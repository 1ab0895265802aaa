package animator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
)

// EventHandler receives machine events drained after each Update.
type EventHandler func(layer string, e absm.Event)

// Animator hosts the state machines that animate one model instance. Each Update
// advances the animation player once, ticks every layer's machine against it,
// combines the layer poses and hands the result to the pose consumer.
// Distinct Animators may be updated concurrently.
type Animator interface {
	// Name returns the animator's identifier.
	Name() string

	// Model returns the model this animator plays, or nil.
	Model() model.Model

	// Player returns the animation source shared by every layer.
	//
	// Returns:
	//   - animation.Player: the player
	Player() animation.Player

	// AddLayer appends a layer on top of the stack.
	//
	// Parameters:
	//   - layer: the layer (Machine must not be nil)
	//
	// Returns:
	//   - int: the layer's index
	AddLayer(layer Layer) int

	// RemoveLayer removes a layer by index.
	//
	// Parameters:
	//   - index: the layer index
	//
	// Returns:
	//   - bool: false if the index is out of range
	RemoveLayer(index int) bool

	// Layer borrows a layer by index.
	//
	// Parameters:
	//   - index: the layer index
	//
	// Returns:
	//   - *Layer: the layer, or nil if the index is out of range
	Layer(index int) *Layer

	// FindLayer looks up a layer by name.
	//
	// Parameters:
	//   - name: the layer name
	//
	// Returns:
	//   - int: the layer index, or -1 if not found
	FindLayer(name string) int

	// LayerCount returns the number of layers.
	LayerCount() int

	// Machine returns the base layer's machine, or nil if there are no layers.
	Machine() absm.Machine

	// SetConsumer sets where the final pose goes after each Update.
	//
	// Parameters:
	//   - c: the pose consumer, nil to keep the pose internal
	SetConsumer(c animation.PoseConsumer)

	// SetEventHandler sets the callback that drains machine events after each Update.
	// Without a handler, events stay queued on each machine.
	//
	// Parameters:
	//   - fn: the handler
	SetEventHandler(fn EventHandler)

	// Enabled reports whether Update does any work.
	Enabled() bool

	// SetEnabled pauses or resumes the animator.
	SetEnabled(enabled bool)

	// Update advances the player by dt and ticks every layer.
	// A layer whose machine has no states is skipped. When auto-reset is on, a layer that
	// fails with a stale handle is reset and ticked again once.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	//
	// Returns:
	//   - error: the joined errors of every failing layer and of the consumer
	Update(dt float32) error

	// Pose returns the combined pose of the latest Update.
	Pose() *animation.Pose

	// Signals collects the animation signals passed during the latest Update from every
	// layer with a positive weight, bottom layer first.
	//
	// Parameters:
	//   - strategy: which blend branches contribute within each layer
	//
	// Returns:
	//   - []LayerSignal: the collected signals
	Signals(strategy absm.SignalStrategy) []LayerSignal
}

type animator struct {
	mu        *sync.Mutex
	name      string
	mdl       model.Model
	player    animation.Player
	layers    []*Layer
	consumer  animation.PoseConsumer
	onEvent   EventHandler
	enabled   bool
	autoReset bool
	logger    *slog.Logger

	pose    *animation.Pose
	scratch *animation.Pose
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator with the provided options.
// Without WithPlayer or WithModel the animator gets an empty player.
//
// Parameters:
//   - options: functional options for animator configuration
//
// Returns:
//   - Animator: the newly created animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		mu:        &sync.Mutex{},
		enabled:   true,
		autoReset: true,
		logger:    slog.New(slog.DiscardHandler),
		pose:      animation.NewPose(0),
		scratch:   animation.NewPose(0),
	}
	for _, opt := range options {
		opt(a)
	}
	if a.player == nil {
		a.player = animation.NewPlayer()
	}
	return a
}

func (a *animator) Name() string {
	return a.name
}

func (a *animator) Model() model.Model {
	return a.mdl
}

func (a *animator) Player() animation.Player {
	return a.player
}

func (a *animator) AddLayer(layer Layer) int {
	if layer.Machine == nil {
		panic("animator: AddLayer requires a non-nil Machine")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.layers = append(a.layers, &layer)
	return len(a.layers) - 1
}

func (a *animator) RemoveLayer(index int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.layers) {
		return false
	}
	a.layers = append(a.layers[:index], a.layers[index+1:]...)
	return true
}

func (a *animator) Layer(index int) *Layer {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.layers) {
		return nil
	}
	return a.layers[index]
}

func (a *animator) FindLayer(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, l := range a.layers {
		if l.Name == name {
			return i
		}
	}
	return -1
}

func (a *animator) LayerCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.layers)
}

func (a *animator) Machine() absm.Machine {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.layers) == 0 {
		return nil
	}
	return a.layers[0].Machine
}

func (a *animator) SetConsumer(c animation.PoseConsumer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.consumer = c
}

func (a *animator) SetEventHandler(fn EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onEvent = fn
}

func (a *animator) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

func (a *animator) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

func (a *animator) Pose() *animation.Pose {
	return a.pose
}

func (a *animator) Signals(strategy absm.SignalStrategy) []LayerSignal {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []LayerSignal
	for _, layer := range a.layers {
		if layer.Weight <= 0 {
			continue
		}
		for _, sig := range layer.Machine.CollectSignals(a.player, strategy) {
			out = append(out, LayerSignal{Layer: layer.Name, Signal: sig})
		}
	}
	return out
}

func (a *animator) Update(dt float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return nil
	}

	a.player.Advance(dt)
	a.pose.Reset()

	var errs []error
	for _, layer := range a.layers {
		pose, err := a.tickLayer(layer, dt)
		if a.onEvent != nil {
			for {
				e, ok := layer.Machine.PopEvent()
				if !ok {
					break
				}
				a.onEvent(layer.Name, e)
			}
		}
		if errors.Is(err, absm.ErrNotConfigured) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to tick layer %q of animator %q: %w", layer.Name, a.name, err))
			continue
		}

		animation.Interpolate(a.scratch, a.pose, layer.filter(pose), layer.Weight)
		a.pose, a.scratch = a.scratch, a.pose
	}

	if a.consumer != nil && len(errs) == 0 {
		if err := a.consumer.ApplyPose(a.pose); err != nil {
			errs = append(errs, fmt.Errorf("failed to apply pose of animator %q: %w", a.name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *animator) tickLayer(layer *Layer, dt float32) (*animation.Pose, error) {
	pose, err := layer.Machine.Tick(dt, a.player)
	if err == nil || !a.autoReset || !absm.IsStale(err) {
		return pose, err
	}
	a.logger.Warn("animator: resetting layer after structural edit",
		"animator", a.name,
		"layer", layer.Name,
		"error", err,
	)
	layer.Machine.Reset()
	return layer.Machine.Tick(dt, a.player)
}
