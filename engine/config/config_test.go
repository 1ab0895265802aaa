package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-absm/engine"
	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animator"
	"github.com/Carmen-Shannon/oxy-absm/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60.0, cfg.Engine.TickRate)
	assert.Equal(t, absm.DefaultEventCapacity, cfg.Machine.EventCapacity)
	assert.True(t, cfg.Animator.AutoReset)
	assert.Equal(t, time.Second, cfg.ProfilerInterval())
	assert.Equal(t, max(runtime.NumCPU()-1, 1), cfg.ComputeWorkers())
}

func TestParse_TOMLKeepsDefaultsForMissingKeys(t *testing.T) {
	data := []byte(`
[engine]
tick_rate = 30
profiling = true

[machine]
event_capacity = 16
easing = "in-out-quad"
`)
	cfg, err := Parse(data, FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Engine.TickRate)
	assert.True(t, cfg.Engine.Profiling)
	assert.Equal(t, "1s", cfg.Engine.ProfilerInterval)
	assert.Equal(t, 16, cfg.Machine.EventCapacity)
	assert.True(t, cfg.Animator.AutoReset)
	assert.True(t, cfg.Scene.Active)
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
engine:
  fixed_step: true
  profiler_interval: 250ms
scene:
  compute_workers: 3
animator:
  auto_reset: false
`)
	cfg, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	assert.True(t, cfg.Engine.FixedStep)
	assert.Equal(t, 250*time.Millisecond, cfg.ProfilerInterval())
	assert.Equal(t, 3, cfg.ComputeWorkers())
	assert.False(t, cfg.Animator.AutoReset)
	assert.Equal(t, 60.0, cfg.Engine.TickRate)
}

func TestParse_EmptyYAMLIsDefault(t *testing.T) {
	cfg, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownKeysAreRejected(t *testing.T) {
	_, err := Parse([]byte("[engine]\ntick_rat = 30\n"), FormatTOML)
	assert.Error(t, err)

	_, err = Parse([]byte("machine:\n  capacity: 4\n"), FormatYAML)
	assert.Error(t, err)
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Engine.TickRate = 0
	cfg.Engine.ProfilerInterval = "soon"
	cfg.Scene.ComputeWorkers = -2
	cfg.Machine.EventCapacity = 0
	cfg.Machine.Easing = "wobble"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, absm.ErrUnknownEasing)
	for _, field := range []string{"engine.tick_rate", "engine.profiler_interval", "scene.compute_workers", "machine.event_capacity", "machine.easing"} {
		assert.Contains(t, err.Error(), field)
	}

	cfg = Default()
	cfg.Engine.ProfilerInterval = "-1s"
	assert.ErrorContains(t, cfg.Validate(), "engine.profiler_interval")
}

func TestLoad_PicksBackendByExtension(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[scene]\nactive = false\n"), 0o644))
	cfg, err := Load(tomlPath)
	require.NoError(t, err)
	assert.False(t, cfg.Scene.Active)

	ymlPath := filepath.Join(dir, "engine.yml")
	require.NoError(t, os.WriteFile(ymlPath, []byte("machine:\n  debug: true\n"), 0o644))
	cfg, err = Load(ymlPath)
	require.NoError(t, err)
	assert.True(t, cfg.Machine.Debug)

	_, err = Load(filepath.Join(dir, "engine.json"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("engine:\n  tick_rate: -5\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMarshal_ReloadsInBothFormats(t *testing.T) {
	cfg := Default()
	cfg.Engine.TickRate = 120
	cfg.Machine.Easing = "outcubic"

	for _, format := range []Format{FormatTOML, FormatYAML} {
		data, err := cfg.Marshal(format)
		require.NoError(t, err, format)
		back, err := Parse(data, format)
		require.NoError(t, err, format)
		assert.Equal(t, cfg, back, format)
	}

	_, err := cfg.Marshal(Format(9))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("a/b/C.TOML")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	f, err = FormatFromPath("x.yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	assert.Equal(t, "yaml", f.String())

	_, err = FormatFromPath("x")
	assert.Error(t, err)
}

func TestConfig_OptionsConfigureComponents(t *testing.T) {
	cfg := Default()
	cfg.Engine.TickRate = 30
	cfg.Scene.ComputeWorkers = 2
	cfg.Machine.EventCapacity = 8

	e := engine.NewEngine(cfg.EngineOptions(nil)...)
	assert.Equal(t, time.Second/30, e.TickRate())

	s := scene.NewScene("level", cfg.SceneOptions(nil)...)
	defer s.Close()
	assert.Equal(t, 2, s.ComputeWorkers())
	assert.True(t, s.Active())

	m := absm.NewMachine(cfg.MachineOptions(nil)...)
	assert.Equal(t, 8, m.Events().Cap())

	a := animator.NewAnimator(cfg.AnimatorOptions(nil)...)
	assert.NotNil(t, a.Player())
}
