package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithName is an option builder that sets the Animator's name.
//
// Parameters:
//   - name: the animator name
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the name option to an animator
func WithName(name string) AnimatorBuilderOption {
	return func(a *animator) {
		a.name = name
	}
}

// WithModel is an option builder that assigns a Model to the Animator and creates a
// player with a playback for each of the model's clips.
// A player set later with WithPlayer replaces this one.
//
// Parameters:
//   - m: the Model to animate
//   - loop: whether the model's clips loop
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the model option to an animator
func WithModel(m model.Model, loop bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.mdl = m
		a.player = animation.NewPlayer(animation.WithModel(m, loop))
	}
}

// WithPlayer is an option builder that sets the animation source shared by all layers.
//
// Parameters:
//   - p: the player
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the player option to an animator
func WithPlayer(p animation.Player) AnimatorBuilderOption {
	return func(a *animator) {
		if p != nil {
			a.player = p
		}
	}
}

// WithMachine is an option builder that appends a full-weight, unmasked layer.
//
// Parameters:
//   - name: the layer name
//   - m: the layer's state machine
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the layer option to an animator
func WithMachine(name string, m absm.Machine) AnimatorBuilderOption {
	return WithLayer(Layer{Name: name, Machine: m, Weight: 1})
}

// WithLayer is an option builder that appends a layer to the stack.
//
// Parameters:
//   - layer: the layer to append
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the layer option to an animator
func WithLayer(layer Layer) AnimatorBuilderOption {
	return func(a *animator) {
		a.AddLayer(layer)
	}
}

// WithConsumer is an option builder that sets where the final pose is delivered.
//
// Parameters:
//   - c: the pose consumer
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the consumer option to an animator
func WithConsumer(c animation.PoseConsumer) AnimatorBuilderOption {
	return func(a *animator) {
		a.consumer = c
	}
}

// WithEventHandler is an option builder that sets the callback receiving drained machine events.
//
// Parameters:
//   - fn: the event handler
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the handler option to an animator
func WithEventHandler(fn EventHandler) AnimatorBuilderOption {
	return func(a *animator) {
		a.onEvent = fn
	}
}

// WithAutoReset is an option builder that controls whether a layer failing with a stale
// handle is reset and ticked again. Enabled by default.
//
// Parameters:
//   - enabled: true to reset stale layers automatically
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the auto-reset option to an animator
func WithAutoReset(enabled bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.autoReset = enabled
	}
}

// WithLogger is an option builder that sets the logger used for recoverable failures.
//
// Parameters:
//   - logger: the logger, nil keeps the discard logger
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger option to an animator
func WithLogger(logger *slog.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}
