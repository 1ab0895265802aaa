package profiler

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestProfiler_ReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(clock.now),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	for range 9 {
		clock.t = clock.t.Add(100 * time.Millisecond)
		assert.False(t, p.Tick(2*time.Millisecond, nil))
	}
	clock.t = clock.t.Add(100 * time.Millisecond)
	require.True(t, p.Tick(6*time.Millisecond, errors.New("boom")))

	s := p.Last()
	assert.InDelta(t, 10, s.TicksPerSecond, 1e-9)
	assert.Equal(t, 2400*time.Microsecond, s.AvgTick)
	assert.Equal(t, 6*time.Millisecond, s.MaxTick)
	assert.Equal(t, 1, s.Errors)

	out := buf.String()
	assert.Contains(t, out, "msg=profiler")
	assert.Contains(t, out, "tps=10")
	assert.Contains(t, out, "errors=1")
	assert.Contains(t, out, "heap_mb=")
}

func TestProfiler_WindowResets(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithInterval(time.Second), WithClock(clock.now))

	clock.t = clock.t.Add(time.Second)
	require.True(t, p.Tick(time.Millisecond, errors.New("x")))

	clock.t = clock.t.Add(2 * time.Second)
	require.True(t, p.Tick(3*time.Millisecond, nil))
	s := p.Last()
	assert.Zero(t, s.Errors)
	assert.InDelta(t, 0.5, s.TicksPerSecond, 1e-9)
	assert.Equal(t, 3*time.Millisecond, s.AvgTick)
}

func TestProfiler_InvalidOptionsKeepDefaults(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithLogger(nil), WithClock(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.now)
}
