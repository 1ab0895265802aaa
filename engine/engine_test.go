package engine

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/animator"
	"github.com/Carmen-Shannon/oxy-absm/engine/game_object"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/Carmen-Shannon/oxy-absm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-absm/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) consumer(name string) animation.PoseConsumer {
	return consumerFunc(func(*animation.Pose) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.order = append(r.order, name)
		return nil
	})
}

type consumerFunc func(*animation.Pose) error

func (f consumerFunc) ApplyPose(p *animation.Pose) error { return f(p) }

func sceneWith(t *testing.T, name string, active bool, consumer animation.PoseConsumer) scene.Scene {
	t.Helper()
	player := animation.NewPlayer()
	h := player.AddClip(&model.AnimationClip{Name: "idle", Duration: 1}, true)
	m := absm.NewMachine()
	m.AddState(absm.NewState("idle", m.AddNode(absm.NewPlayAnimation(h))))
	a := animator.NewAnimator(animator.WithPlayer(player), animator.WithMachine("base", m), animator.WithConsumer(consumer))

	s := scene.NewScene(name, scene.WithActive(active), scene.WithComputeWorkers(1),
		scene.WithObjects(game_object.NewGameObject(game_object.WithAnimator(a))))
	t.Cleanup(s.Close)
	return s
}

func brokenScene(t *testing.T, name string) scene.Scene {
	t.Helper()
	m := absm.NewMachine()
	m.AddState(absm.NewState("broken", absm.NodeHandle{}))
	a := animator.NewAnimator(animator.WithMachine("base", m))
	s := scene.NewScene(name, scene.WithActive(true), scene.WithComputeWorkers(1),
		scene.WithObjects(game_object.NewGameObject(game_object.WithAnimator(a))))
	t.Cleanup(s.Close)
	return s
}

func TestEngine_StepUpdatesActiveScenesInKeyOrder(t *testing.T) {
	rec := &recorder{}
	var ticks []float32
	e := NewEngine(
		WithScene(2, sceneWith(t, "foreground", true, rec.consumer("foreground"))),
		WithScene(-1, sceneWith(t, "background", true, rec.consumer("background"))),
		WithScene(1, sceneWith(t, "hidden", false, rec.consumer("hidden"))),
		WithTickCallback(func(dt float32) { ticks = append(ticks, dt) }),
	)

	require.NoError(t, e.Step(0.25))
	assert.Equal(t, []string{"background", "foreground"}, rec.order)
	assert.Equal(t, []float32{0.25}, ticks)
}

func TestEngine_StepJoinsSceneErrors(t *testing.T) {
	rec := &recorder{}
	e := NewEngine()
	e.AddScene(0, brokenScene(t, "broken"))
	e.AddScene(1, sceneWith(t, "healthy", true, rec.consumer("healthy")))

	err := e.Step(0.1)
	require.Error(t, err)
	assert.ErrorIs(t, err, absm.ErrDanglingHandle)
	assert.Contains(t, err.Error(), `scene "broken"`)
	assert.Equal(t, []string{"healthy"}, rec.order)
}

func TestEngine_SceneRegistry(t *testing.T) {
	e := NewEngine()
	s := sceneWith(t, "a", true, consumerFunc(func(*animation.Pose) error { return nil }))
	e.AddScene(3, s)
	assert.Same(t, s, e.Scene(3))
	assert.Len(t, e.Scenes(), 1)

	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
	assert.Empty(t, e.Scenes())
}

func TestEngine_RunStopsOnQuit(t *testing.T) {
	var n atomic.Int32
	var e Engine
	e = NewEngine(WithTickRate(500), WithFixedStep(true), WithTickCallback(func(dt float32) {
		assert.InDelta(t, 0.002, dt, 1e-6)
		if n.Add(1) == 3 {
			e.Quit()
		}
	}))

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after Quit")
	}
	assert.GreaterOrEqual(t, n.Load(), int32(3))
	assert.False(t, e.Running())
	e.Quit()
}

func TestEngine_RunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	e := NewEngine(WithTickRate(500), WithTickCallback(func(float32) {
		if n.Add(1) == 2 {
			cancel()
		}
	}))

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, n.Load(), int32(2))
}

func TestEngine_RunReportsFailedTicks(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, w: &buf}, nil))

	errs := make(chan error, 16)
	e := NewEngine(WithTickRate(500), WithLogger(logger), WithProfiling(true),
		WithProfiler(profiler.NewProfiler(profiler.WithInterval(time.Millisecond), profiler.WithLogger(logger))),
		WithScene(0, brokenScene(t, "broken")))
	e.SetErrorCallback(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-errs
		<-errs
		cancel()
	}()
	_ = e.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "engine: tick failed")
	assert.Contains(t, buf.String(), "msg=profiler")
}

func TestEngine_TickRate(t *testing.T) {
	e := NewEngine(WithTickRate(0))
	assert.Equal(t, time.Second/60, e.TickRate())

	e.SetTickRate(120)
	assert.Equal(t, time.Second/120, e.TickRate())

	e.EnableProfiler()
	e.DisableProfiler()
	e.Close()
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
