package game_object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-absm/common"
	"github.com/Carmen-Shannon/oxy-absm/engine/animator"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/Carmen-Shannon/oxy-absm/engine/skeleton"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	mu        *sync.RWMutex
	id        uint64
	name      string
	enabled   atomic.Bool
	mdl       model.Model
	animator  animator.Animator
	binder    skeleton.Binder
	transform model.Transform
}

// GameObject defines the interface for a scene entity that pairs a Model with the
// Animator driving it and the Binder receiving its poses.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Name returns the object's name.
	Name() string

	// Enabled returns whether the scene updates this object.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the scene updates this object.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Animator returns the Animator associated with this object.
	//
	// Returns:
	//   - animator.Animator: the associated Animator, or nil
	Animator() animator.Animator

	// SetAnimator sets the Animator associated with this object. If the object has a
	// Binder, the Animator's poses are routed to it.
	//
	// Parameters:
	//   - anim: the Animator to associate
	SetAnimator(anim animator.Animator)

	// Binder returns the skeleton Binder receiving this object's poses, or nil.
	Binder() skeleton.Binder

	// Transform returns the object's placement in the scene.
	//
	// Returns:
	//   - model.Transform: translation, rotation and scale
	Transform() model.Transform

	// SetPosition sets the object's translation.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the object's rotation quaternion.
	//
	// Parameters:
	//   - rotation: the rotation as (x, y, z, w)
	SetRotation(rotation [4]float32)

	// SetScale sets the object's per-axis scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// ModelMatrix composes the object's transform into a matrix.
	//
	// Returns:
	//   - mgl32.Mat4: translation * rotation * scale
	ModelMatrix() mgl32.Mat4

	// Update advances the object's Animator by dt. Disabled objects and objects
	// without an Animator are skipped.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	//
	// Returns:
	//   - error: the Animator's error, annotated with the object ID
	Update(dt float32) error
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects start enabled. A skinned Model without an explicit Binder gets one bound to
// the Model's skeleton.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:        &sync.RWMutex{},
		transform: model.IdentityTransform(),
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.binder == nil && obj.mdl != nil && obj.mdl.Skinned() {
		obj.binder = skeleton.NewBinder(obj.mdl.Skeleton())
	}
	obj.wire()
	return obj
}

func (g *gameObject) wire() {
	if g.animator != nil && g.binder != nil {
		g.animator.SetConsumer(g.binder)
	}
}

func (g *gameObject) ID() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Animator() animator.Animator {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.animator
}

func (g *gameObject) SetAnimator(anim animator.Animator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.animator = anim
	g.wire()
}

func (g *gameObject) Binder() skeleton.Binder {
	return g.binder
}

func (g *gameObject) Transform() model.Transform {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transform
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Translation = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rotation [4]float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Rotation = rotation
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Scale = [3]float32{sx, sy, sz}
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	t := g.Transform()
	return common.ComposeTRS(t.Translation, t.Rotation, t.Scale)
}

func (g *gameObject) Update(dt float32) error {
	if !g.Enabled() {
		return nil
	}
	anim := g.Animator()
	if anim == nil {
		return nil
	}
	if err := anim.Update(dt); err != nil {
		return fmt.Errorf("game object %d (%s): %w", g.ID(), g.name, err)
	}
	return nil
}
