package animation

import (
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
)

// Handle references a clip playback owned by an animation Source.
type Handle = pool.Handle[Playback]

// Source is the animation collaborator consulted while a pose graph evaluates.
// Playback time is advanced once per tick, before any pose is read.
type Source interface {
	// Pose returns the pose the referenced playback currently produces.
	//
	// Parameters:
	//   - h: the playback handle
	//
	// Returns:
	//   - *Pose: the current pose, owned by the source
	//   - bool: false if the handle does not refer to a live playback
	Pose(h Handle) (*Pose, bool)

	// Ended reports whether a non-looping playback has reached the end of its clip.
	//
	// Parameters:
	//   - h: the playback handle
	//
	// Returns:
	//   - bool: true if the playback has ended, false if looping, running or missing
	Ended(h Handle) bool

	// Advance moves every enabled playback forward by dt seconds.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	Advance(dt float32)
}

// SignalSource is implemented by sources whose clips carry signals.
type SignalSource interface {
	// Signals returns the signals a playback passed during the latest Advance, in clip order.
	//
	// Parameters:
	//   - h: the playback handle
	//
	// Returns:
	//   - []model.AnimationSignal: the passed signals, empty for a stale handle
	Signals(h Handle) []model.AnimationSignal
}

// PoseConsumer receives the final pose produced each tick, e.g. to bind it onto a skeleton.
type PoseConsumer interface {
	// ApplyPose consumes a pose. The pose is only valid for the duration of the call.
	//
	// Parameters:
	//   - pose: the final pose for this tick
	//
	// Returns:
	//   - error: error if the pose could not be applied
	ApplyPose(pose *Pose) error
}
