package animation

import "github.com/Carmen-Shannon/oxy-absm/engine/model"

// PlayerBuilderOption is a functional option for configuring a Player during construction.
type PlayerBuilderOption func(*player)

// WithSkeleton is an option builder that sets the skeleton whose bind transforms fill
// in channel components a clip does not animate.
//
// Parameters:
//   - skeleton: the bind pose skeleton
//
// Returns:
//   - PlayerBuilderOption: a function that applies the skeleton option to a player
func WithSkeleton(skeleton *model.Skeleton) PlayerBuilderOption {
	return func(p *player) {
		p.skeleton = skeleton
	}
}

// WithDefaultSpeed is an option builder that sets the speed new playbacks start with.
//
// Parameters:
//   - speed: the initial speed multiplier
//
// Returns:
//   - PlayerBuilderOption: a function that applies the speed option to a player
func WithDefaultSpeed(speed float32) PlayerBuilderOption {
	return func(p *player) {
		p.speed = speed
	}
}

// WithModel is an option builder that adopts a model's skeleton and starts a
// playback for every clip it carries. Clips can be located afterwards with Find.
//
// Parameters:
//   - m: the model to play
//   - loop: whether the playbacks loop
//
// Returns:
//   - PlayerBuilderOption: a function that applies the model option to a player
func WithModel(m model.Model, loop bool) PlayerBuilderOption {
	return func(p *player) {
		if m == nil {
			return
		}
		if p.skeleton == nil {
			p.skeleton = m.Skeleton()
		}
		for _, clip := range m.Animations() {
			p.playbacks.Spawn(newPlayback(clip, p.speed, loop))
		}
	}
}
