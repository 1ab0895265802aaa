package absm

import (
	"log/slog"

	"github.com/tanema/gween/ease"
)

// MachineBuilderOption is a functional option for configuring a Machine via NewMachine.
type MachineBuilderOption func(*machine)

// WithName is an option builder that sets the machine's identifier used in log messages.
//
// Parameters:
//   - name: the machine name
//
// Returns:
//   - MachineBuilderOption: a function that applies the name option to a machine
func WithName(name string) MachineBuilderOption {
	return func(m *machine) {
		m.name = name
	}
}

// WithEventCapacity is an option builder that sets how many events the queue holds
// before new events are dropped. Values below 1 keep the default of 2048.
//
// Parameters:
//   - capacity: the event queue capacity
//
// Returns:
//   - MachineBuilderOption: a function that applies the capacity option to a machine
func WithEventCapacity(capacity int) MachineBuilderOption {
	return func(m *machine) {
		if capacity < 1 {
			capacity = DefaultEventCapacity
		}
		m.eventCapacity = capacity
	}
}

// WithLogger is an option builder that sets the logger debug messages are written to.
// Without it the machine logs nowhere.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - MachineBuilderOption: a function that applies the logger option to a machine
func WithLogger(logger *slog.Logger) MachineBuilderOption {
	return func(m *machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDebug is an option builder that enables logging of state and transition changes.
//
// Parameters:
//   - enabled: true to log
//
// Returns:
//   - MachineBuilderOption: a function that applies the debug option to a machine
func WithDebug(enabled bool) MachineBuilderOption {
	return func(m *machine) {
		m.debug = enabled
	}
}

// WithParameters is an option builder that seeds the parameter container.
//
// Parameters:
//   - params: the initial parameters by name
//
// Returns:
//   - MachineBuilderOption: a function that applies the parameters option to a machine
func WithParameters(params map[string]Parameter) MachineBuilderOption {
	return func(m *machine) {
		for name, p := range params {
			m.params.Set(name, p)
		}
	}
}

// WithDefaultEasing is an option builder that sets the progress curve for transitions
// added without their own easing.
//
// Parameters:
//   - fn: the easing function, nil keeps linear progress
//
// Returns:
//   - MachineBuilderOption: a function that applies the easing option to a machine
func WithDefaultEasing(fn ease.TweenFunc) MachineBuilderOption {
	return func(m *machine) {
		m.defaultEasing = fn
	}
}
