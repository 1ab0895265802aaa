package game_object

import (
	"github.com/Carmen-Shannon/oxy-absm/engine/animator"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/Carmen-Shannon/oxy-absm/engine/skeleton"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithName sets the name of the GameObject.
//
// Parameters:
//   - name: a human-readable name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is updated by its scene.
//
// Parameters:
//   - enabled: true to update the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the Model for this GameObject.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithAnimator sets the Animator that drives this GameObject.
//
// Parameters:
//   - anim: the Animator to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Animator
func WithAnimator(anim animator.Animator) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.animator = anim
	}
}

// WithBinder sets the Binder that receives this GameObject's poses.
//
// Parameters:
//   - b: the skeleton Binder
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Binder
func WithBinder(b skeleton.Binder) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.binder = b
	}
}

// WithPosition sets the initial position of the GameObject.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Translation = [3]float32{x, y, z}
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Scale = [3]float32{sx, sy, sz}
	}
}
