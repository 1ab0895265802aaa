package ecs

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animator"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// AnimatorData is the component payload binding an entity to its Animator.
type AnimatorData struct {
	Animator animator.Animator
}

// AnimatorComponent attaches an Animator to an entity.
var AnimatorComponent = donburi.NewComponentType[AnimatorData]()

// MachineEvent is a machine event tagged with the entity and layer that produced it.
type MachineEvent struct {
	Entity donburi.Entity
	Layer  string
	Event  absm.Event
}

// MachineEventType is the world event bus for machine events. Subscribe to it and call
// ProcessEvents to consume what AnimationSystem publishes.
var MachineEventType = events.NewEventType[MachineEvent]()

// SignalEvent is an animation signal an entity's Animator passed during the latest update.
type SignalEvent struct {
	Entity donburi.Entity
	Layer  string
	Signal absm.Signal
}

// SignalEventType is the world event bus for animation signals.
var SignalEventType = events.NewEventType[SignalEvent]()

// UpdateErrorEvent reports an entity whose Animator failed to update.
type UpdateErrorEvent struct {
	Entity donburi.Entity
	Err    error
}

// UpdateErrorEventType is the world event bus for failed animator updates.
var UpdateErrorEventType = events.NewEventType[UpdateErrorEvent]()

// AddAnimator creates an entity carrying the given Animator.
//
// Parameters:
//   - world: the world to create the entity in
//   - a: the animator (must not be nil)
//
// Returns:
//   - donburi.Entity: the new entity
func AddAnimator(world donburi.World, a animator.Animator) donburi.Entity {
	if a == nil {
		panic("ecs: AddAnimator requires a non-nil Animator")
	}
	entity := world.Create(AnimatorComponent)
	AnimatorComponent.SetValue(world.Entry(entity), AnimatorData{Animator: a})
	return entity
}

// AnimatorOf returns the Animator attached to an entity.
//
// Parameters:
//   - world: the world holding the entity
//   - entity: the entity
//
// Returns:
//   - animator.Animator: the animator
//   - bool: false if the entity is gone or has no animator
func AnimatorOf(world donburi.World, entity donburi.Entity) (animator.Animator, bool) {
	if !world.Valid(entity) {
		return nil, false
	}
	entry := world.Entry(entity)
	if !entry.HasComponent(AnimatorComponent) {
		return nil, false
	}
	a := AnimatorComponent.Get(entry).Animator
	return a, a != nil
}

// AnimationSystem updates every entity's Animator and republishes the machine events
// it produced on the world's event bus.
type AnimationSystem struct {
	query    *donburi.Query
	logger   *slog.Logger
	strategy absm.SignalStrategy
}

// NewAnimationSystem creates an AnimationSystem.
//
// Parameters:
//   - options: functional options for system configuration
//
// Returns:
//   - *AnimationSystem: the new system
func NewAnimationSystem(options ...AnimationSystemBuilderOption) *AnimationSystem {
	s := &AnimationSystem{
		query:    donburi.NewQuery(filter.Contains(AnimatorComponent)),
		logger:   slog.New(slog.DiscardHandler),
		strategy: absm.SignalsMaxWeight,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Update advances each Animator by dt, then drains every layer's event queue onto
// MachineEventType and publishes the passed animation signals on SignalEventType. Failures are published on UpdateErrorEventType and also returned.
// Published events are delivered on the next ProcessEvents call.
//
// Parameters:
//   - world: the world to update
//   - dt: the elapsed time in seconds
//
// Returns:
//   - error: the joined errors of every failing entity
func (s *AnimationSystem) Update(world donburi.World, dt float32) error {
	var errs []error
	s.query.Each(world, func(entry *donburi.Entry) {
		a := AnimatorComponent.Get(entry).Animator
		if a == nil {
			return
		}
		entity := entry.Entity()

		if err := a.Update(dt); err != nil {
			s.logger.Warn("ecs: animator update failed", "entity", entity, "error", err)
			UpdateErrorEventType.Publish(world, UpdateErrorEvent{Entity: entity, Err: err})
			errs = append(errs, fmt.Errorf("entity %v: %w", entity, err))
		}

		for i := range a.LayerCount() {
			layer := a.Layer(i)
			if layer == nil {
				continue
			}
			for {
				e, ok := layer.Machine.PopEvent()
				if !ok {
					break
				}
				MachineEventType.Publish(world, MachineEvent{Entity: entity, Layer: layer.Name, Event: e})
			}
		}

		for _, sig := range a.Signals(s.strategy) {
			SignalEventType.Publish(world, SignalEvent{Entity: entity, Layer: sig.Layer, Signal: sig.Signal})
		}
	})
	return errors.Join(errs...)
}
