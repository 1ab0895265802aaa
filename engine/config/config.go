package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-absm/common"
	"github.com/Carmen-Shannon/oxy-absm/engine"
	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animator"
	"github.com/Carmen-Shannon/oxy-absm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-absm/engine/scene"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete engine configuration.
type Config struct {
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Machine  MachineConfig  `toml:"machine" yaml:"machine"`
	Animator AnimatorConfig `toml:"animator" yaml:"animator"`
}

// EngineConfig configures the tick loop.
type EngineConfig struct {
	// TickRate is the number of ticks per second.
	TickRate float64 `toml:"tick_rate" yaml:"tick_rate"`

	// FixedStep reports the nominal interval as each tick's delta time.
	FixedStep bool `toml:"fixed_step" yaml:"fixed_step"`

	// Profiling enables periodic tick and memory statistics.
	Profiling bool `toml:"profiling" yaml:"profiling"`

	// ProfilerInterval is a Go duration string such as "1s" or "500ms".
	ProfilerInterval string `toml:"profiler_interval" yaml:"profiler_interval"`
}

// SceneConfig configures scenes created from this config.
type SceneConfig struct {
	// ComputeWorkers is the animator fan-out width; 0 picks one less than the CPU count.
	ComputeWorkers int `toml:"compute_workers" yaml:"compute_workers"`

	// Active marks new scenes as updated by the engine.
	Active bool `toml:"active" yaml:"active"`
}

// MachineConfig configures state machines created from this config.
type MachineConfig struct {
	// EventCapacity bounds each machine's event queue.
	EventCapacity int `toml:"event_capacity" yaml:"event_capacity"`

	// Debug enables per-machine transition logging.
	Debug bool `toml:"debug" yaml:"debug"`

	// Easing names the progress curve for transitions without their own, see absm.Easing.
	Easing string `toml:"easing" yaml:"easing"`
}

// AnimatorConfig configures animators created from this config.
type AnimatorConfig struct {
	// AutoReset resets a layer whose machine reports a stale handle.
	AutoReset bool `toml:"auto_reset" yaml:"auto_reset"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - *Config: the default configuration
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate:         60,
			ProfilerInterval: "1s",
		},
		Scene: SceneConfig{
			Active: true,
		},
		Machine: MachineConfig{
			EventCapacity: absm.DefaultEventCapacity,
			Easing:        "linear",
		},
		Animator: AnimatorConfig{
			AutoReset: true,
		},
	}
}

// Load reads and validates a config file, choosing the backend by extension.
// Keys the file omits keep their defaults.
//
// Parameters:
//   - path: the config file path (.toml, .yaml or .yml)
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates config data in the given format over the defaults.
//
// Parameters:
//   - data: the encoded configuration
//   - format: the encoding
//
// Returns:
//   - *Config: the parsed configuration
//   - error: error if the data cannot be parsed or validated
func Parse(data []byte, format Format) (*Config, error) {
	backend, err := backendFor(format)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := backend.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s config: %w", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration in the given format.
//
// Parameters:
//   - format: the encoding
//
// Returns:
//   - []byte: the encoded configuration
//   - error: error if encoding fails
func (c *Config) Marshal(format Format) ([]byte, error) {
	backend, err := backendFor(format)
	if err != nil {
		return nil, err
	}
	return backend.Encode(c)
}

// Validate reports every invalid field at once.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalidConfig for each bad field
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field string, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...)))
	}

	if c.Engine.TickRate <= 0 {
		invalid("engine.tick_rate", "must be positive, got %g", c.Engine.TickRate)
	}
	if d, err := time.ParseDuration(c.Engine.ProfilerInterval); err != nil {
		invalid("engine.profiler_interval", "%v", err)
	} else if d <= 0 {
		invalid("engine.profiler_interval", "must be positive, got %s", d)
	}
	if c.Scene.ComputeWorkers < 0 {
		invalid("scene.compute_workers", "must not be negative, got %d", c.Scene.ComputeWorkers)
	}
	if c.Machine.EventCapacity < 1 {
		invalid("machine.event_capacity", "must be at least 1, got %d", c.Machine.EventCapacity)
	}
	if _, err := absm.Easing(c.Machine.Easing); err != nil {
		errs = append(errs, fmt.Errorf("%w: machine.easing: %w", ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}

// ProfilerInterval returns the parsed profiler interval, or one second if it does not parse.
func (c *Config) ProfilerInterval() time.Duration {
	d, err := time.ParseDuration(c.Engine.ProfilerInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// ComputeWorkers resolves the scene worker count, replacing 0 with one less than the CPU count.
func (c *Config) ComputeWorkers() int {
	return common.Coalesce(c.Scene.ComputeWorkers, max(runtime.NumCPU()-1, 1))
}

// EngineOptions converts the engine section into builder options.
//
// Parameters:
//   - logger: the logger for the engine and its profiler, may be nil
//
// Returns:
//   - []engine.EngineBuilderOption: the options
func (c *Config) EngineOptions(logger *slog.Logger) []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithTickRate(c.Engine.TickRate),
		engine.WithFixedStep(c.Engine.FixedStep),
		engine.WithProfiling(c.Engine.Profiling),
		engine.WithLogger(logger),
		engine.WithProfiler(profiler.NewProfiler(
			profiler.WithInterval(c.ProfilerInterval()),
			profiler.WithLogger(logger),
		)),
	}
}

// SceneOptions converts the scene section into builder options.
//
// Parameters:
//   - logger: the scene logger, may be nil
//
// Returns:
//   - []scene.SceneBuilderOption: the options
func (c *Config) SceneOptions(logger *slog.Logger) []scene.SceneBuilderOption {
	return []scene.SceneBuilderOption{
		scene.WithActive(c.Scene.Active),
		scene.WithComputeWorkers(c.ComputeWorkers()),
		scene.WithLogger(logger),
	}
}

// MachineOptions converts the machine section into builder options.
//
// Parameters:
//   - logger: the machine logger, may be nil
//
// Returns:
//   - []absm.MachineBuilderOption: the options
func (c *Config) MachineOptions(logger *slog.Logger) []absm.MachineBuilderOption {
	opts := []absm.MachineBuilderOption{
		absm.WithEventCapacity(c.Machine.EventCapacity),
		absm.WithDebug(c.Machine.Debug),
		absm.WithLogger(logger),
	}
	if fn, err := absm.Easing(c.Machine.Easing); err == nil {
		opts = append(opts, absm.WithDefaultEasing(fn))
	}
	return opts
}

// AnimatorOptions converts the animator section into builder options.
//
// Parameters:
//   - logger: the animator logger, may be nil
//
// Returns:
//   - []animator.AnimatorBuilderOption: the options
func (c *Config) AnimatorOptions(logger *slog.Logger) []animator.AnimatorBuilderOption {
	return []animator.AnimatorBuilderOption{
		animator.WithAutoReset(c.Animator.AutoReset),
		animator.WithLogger(logger),
	}
}
