package ecs

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
)

// AnimationSystemBuilderOption is a functional option for configuring an AnimationSystem.
type AnimationSystemBuilderOption func(*AnimationSystem)

// WithLogger is an option builder that sets the logger for failed updates.
//
// Parameters:
//   - logger: the logger, nil keeps the discard logger
//
// Returns:
//   - AnimationSystemBuilderOption: a function that applies the logger option to a system
func WithLogger(logger *slog.Logger) AnimationSystemBuilderOption {
	return func(s *AnimationSystem) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSignalStrategy is an option builder that sets which blend branches contribute the
// signals published on SignalEventType. The default is absm.SignalsMaxWeight.
//
// Parameters:
//   - strategy: the signal strategy
//
// Returns:
//   - AnimationSystemBuilderOption: a function that applies the strategy option to a system
func WithSignalStrategy(strategy absm.SignalStrategy) AnimationSystemBuilderOption {
	return func(s *AnimationSystem) {
		s.strategy = strategy
	}
}
