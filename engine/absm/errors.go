package absm

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
)

var (
	// ErrNotConfigured is returned by Tick when the machine has no states.
	ErrNotConfigured = errors.New("absm: machine has no states")

	// ErrStaleHandle marks a handle whose pool slot was freed after it was issued.
	ErrStaleHandle = errors.New("stale handle")

	// ErrDanglingHandle marks a handle that never referred to a live entity of this machine.
	ErrDanglingHandle = errors.New("dangling handle")

	// ErrCycle marks a pose node reached again while it is still being evaluated.
	ErrCycle = errors.New("cycle in pose graph")

	// ErrInvalidDuration marks a transition with a negative or NaN duration.
	ErrInvalidDuration = errors.New("invalid transition duration")

	// ErrInconsistentTransition marks a transition whose elapsed time lies outside [0, duration].
	ErrInconsistentTransition = errors.New("transition elapsed time out of range")

	// ErrInvalidDelta marks a negative or NaN tick delta.
	ErrInvalidDelta = errors.New("invalid tick delta")
)

// ErrorKind classifies a TickError.
type ErrorKind int

const (
	// KindConfiguration covers malformed graphs: dangling handles, cycles and bad durations.
	// It is not corrected automatically.
	KindConfiguration ErrorKind = iota

	// KindStaleHandle covers handles freed by a structural edit since the last tick.
	// The machine recovers after Reset.
	KindStaleHandle
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindStaleHandle:
		return "stale handle"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// TickError is returned by Tick, Evaluate and Validate when a configured machine is broken.
type TickError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op names the step that failed, e.g. "evaluate node".
	Op string

	// Ref describes the offending handle or name.
	Ref string

	// Err is the underlying sentinel.
	Err error
}

func (e *TickError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("absm: %s: %s error: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("absm: %s %s: %s error: %v", e.Op, e.Ref, e.Kind, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

// IsStale reports whether err is a recoverable stale-handle error that a Reset clears.
//
// Parameters:
//   - err: the error to inspect
//
// Returns:
//   - bool: true if the error is a stale-handle TickError
func IsStale(err error) bool {
	var te *TickError
	return errors.As(err, &te) && te.Kind == KindStaleHandle
}

func configError(op, ref string, err error) *TickError {
	return &TickError{Kind: KindConfiguration, Op: op, Ref: ref, Err: err}
}

func staleError(op, ref string) *TickError {
	return &TickError{Kind: KindStaleHandle, Op: op, Ref: ref, Err: ErrStaleHandle}
}

// nodeError classifies a dead node handle: freed since it was issued is stale,
// anything else is dangling.
func nodeError(op string, nodes *pool.Pool[PoseNode], h NodeHandle) *TickError {
	if nodes.IsStale(h) {
		return staleError(op, h.String())
	}
	return configError(op, h.String(), ErrDanglingHandle)
}
