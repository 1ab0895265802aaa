package animator

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-absm/engine/absm"
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

// holdClip poses each bone at (x, 0, 0) for the clip's whole length.
func holdClip(name string, x float32, bones ...int32) *model.AnimationClip {
	clip := &model.AnimationClip{Name: name, Duration: 1}
	for _, b := range bones {
		clip.Channels = append(clip.Channels, model.AnimationChannel{
			BoneIndex:    b,
			PositionKeys: []model.VectorKeyframe{{Time: 0, Value: [3]float32{x, 0, 0}}},
		})
	}
	return clip
}

func boneX(t *testing.T, pose *animation.Pose, bone int32) float32 {
	t.Helper()
	tr, ok := pose.Get(bone)
	require.True(t, ok, "bone %d missing from pose", bone)
	return tr.Translation[0]
}

// singleState builds a machine with one state playing clip.
func singleState(player animation.Player, clip *model.AnimationClip) absm.Machine {
	m := absm.NewMachine()
	n := m.AddNode(absm.NewPlayAnimation(player.AddClip(clip, true)))
	m.AddState(absm.NewState(clip.Name, n))
	return m
}

type locomotion struct {
	m     absm.Machine
	idle  absm.StateHandle
	run   absm.StateHandle
	toRun absm.TransitionHandle
}

func newLocomotion(t *testing.T, player animation.Player) *locomotion {
	t.Helper()
	m := absm.NewMachine()
	idleNode := m.AddNode(absm.NewPlayAnimation(player.AddClip(holdClip("idle", 0, 0), true)))
	runNode := m.AddNode(absm.NewPlayAnimation(player.AddClip(holdClip("run", 10, 0), true)))
	idle := m.AddState(absm.NewState("idle", idleNode))
	run := m.AddState(absm.NewState("run", runNode))
	toRun, err := m.AddTransition(absm.NewTransition("idle->run", idle, run, 1, "Run"))
	require.NoError(t, err)
	return &locomotion{m: m, idle: idle, run: run, toRun: toRun}
}

type capturingConsumer struct {
	calls int
	last  *animation.Pose
	err   error
}

func (c *capturingConsumer) ApplyPose(p *animation.Pose) error {
	c.calls++
	c.last = p.Clone()
	return c.err
}

func TestAnimator_UpdateDrivesMachineThroughTransition(t *testing.T) {
	player := animation.NewPlayer()
	l := newLocomotion(t, player)
	consumer := &capturingConsumer{}
	a := NewAnimator(WithName("hero"), WithPlayer(player), WithMachine("base", l.m), WithConsumer(consumer))

	require.NoError(t, a.Update(0.5))
	assert.InDelta(t, 0, boneX(t, a.Pose(), 0), eps)

	l.m.SetParameter("Run", absm.Rule(true))
	require.NoError(t, a.Update(0.5))
	assert.InDelta(t, 0, boneX(t, a.Pose(), 0), eps)
	require.NoError(t, a.Update(0.5))
	assert.InDelta(t, 5, boneX(t, a.Pose(), 0), eps)
	require.NoError(t, a.Update(0.5))
	assert.InDelta(t, 10, boneX(t, a.Pose(), 0), eps)

	active, ok := l.m.ActiveState()
	require.True(t, ok)
	assert.Equal(t, l.run, active)

	assert.Equal(t, 4, consumer.calls)
	assert.InDelta(t, 10, boneX(t, consumer.last, 0), eps)
}

func TestAnimator_UpdateAdvancesPlayerOnce(t *testing.T) {
	player := animation.NewPlayer()
	base := singleState(player, holdClip("a", 1, 0))
	overlay := singleState(player, holdClip("b", 2, 0))
	a := NewAnimator(WithPlayer(player), WithMachine("base", base), WithMachine("overlay", overlay))

	require.NoError(t, a.Update(0.25))

	h, ok := player.Find("a")
	require.True(t, ok)
	tm, ok := player.Time(h)
	require.True(t, ok)
	assert.InDelta(t, 0.25, tm, eps)
}

func TestAnimator_LayerWeightBlendsSharedBones(t *testing.T) {
	player := animation.NewPlayer()
	base := singleState(player, holdClip("base", 0, 0, 1))
	overlay := singleState(player, holdClip("overlay", 10, 0, 2))
	a := NewAnimator(
		WithPlayer(player),
		WithMachine("base", base),
		WithLayer(Layer{Name: "overlay", Machine: overlay, Weight: 0.5}),
	)

	require.NoError(t, a.Update(0.1))
	pose := a.Pose()
	assert.InDelta(t, 5, boneX(t, pose, 0), eps, "shared bone blends by weight")
	assert.InDelta(t, 0, boneX(t, pose, 1), eps, "base-only bone is kept")
	assert.InDelta(t, 10, boneX(t, pose, 2), eps, "overlay-only bone is taken as-is")
}

func TestAnimator_LayerMaskSkipsBones(t *testing.T) {
	player := animation.NewPlayer()
	base := singleState(player, holdClip("base", 0, 0, 1))
	overlay := singleState(player, holdClip("overlay", 10, 0, 1))
	a := NewAnimator(
		WithPlayer(player),
		WithMachine("base", base),
		WithLayer(Layer{Name: "upper", Machine: overlay, Weight: 1, Mask: NewLayerMask(0)}),
	)

	require.NoError(t, a.Update(0.1))
	assert.InDelta(t, 0, boneX(t, a.Pose(), 0), eps)
	assert.InDelta(t, 10, boneX(t, a.Pose(), 1), eps)
}

func TestAnimator_EventHandlerDrainsQueues(t *testing.T) {
	player := animation.NewPlayer()
	l := newLocomotion(t, player)

	type seen struct {
		layer string
		kind  absm.EventKind
	}
	var got []seen
	a := NewAnimator(WithPlayer(player), WithMachine("base", l.m), WithEventHandler(func(layer string, e absm.Event) {
		got = append(got, seen{layer, e.Kind})
	}))

	require.NoError(t, a.Update(0.1))
	assert.Equal(t, []seen{{"base", absm.EventStateEnter}}, got)
	assert.Zero(t, l.m.Events().Len())
}

func TestAnimator_EventsStayQueuedWithoutHandler(t *testing.T) {
	player := animation.NewPlayer()
	l := newLocomotion(t, player)
	a := NewAnimator(WithPlayer(player), WithMachine("base", l.m))

	require.NoError(t, a.Update(0.1))
	e, ok := l.m.PopEvent()
	require.True(t, ok)
	assert.Equal(t, absm.EventStateEnter, e.Kind)
	assert.Equal(t, l.idle, e.State)
}

func TestAnimator_AutoResetRecoversStaleLayer(t *testing.T) {
	player := animation.NewPlayer()
	l := newLocomotion(t, player)
	var buf bytes.Buffer
	a := NewAnimator(
		WithName("hero"),
		WithPlayer(player),
		WithMachine("base", l.m),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	l.m.SetParameter("Run", absm.Rule(true))
	require.NoError(t, a.Update(0.1))
	require.NoError(t, a.Update(0.1))
	require.True(t, l.m.RemoveTransition(l.toRun))

	require.NoError(t, a.Update(0.1))
	active, ok := l.m.ActiveState()
	require.True(t, ok)
	assert.Equal(t, l.idle, active)
	assert.Contains(t, buf.String(), "resetting layer")
	assert.Contains(t, buf.String(), "layer=base")
}

func TestAnimator_StaleLayerErrorsWithoutAutoReset(t *testing.T) {
	player := animation.NewPlayer()
	l := newLocomotion(t, player)
	consumer := &capturingConsumer{}
	a := NewAnimator(WithPlayer(player), WithMachine("base", l.m), WithAutoReset(false), WithConsumer(consumer))

	l.m.SetParameter("Run", absm.Rule(true))
	require.NoError(t, a.Update(0.1))
	require.NoError(t, a.Update(0.1))
	require.True(t, l.m.RemoveTransition(l.toRun))

	err := a.Update(0.1)
	require.Error(t, err)
	assert.True(t, absm.IsStale(err))
	assert.Contains(t, err.Error(), `layer "base"`)
	assert.Equal(t, 2, consumer.calls, "pose is not delivered on failure")
}

func TestAnimator_EmptyMachineLayerIsSkipped(t *testing.T) {
	player := animation.NewPlayer()
	base := singleState(player, holdClip("base", 3, 0))
	a := NewAnimator(WithPlayer(player), WithMachine("base", base), WithMachine("empty", absm.NewMachine()))

	require.NoError(t, a.Update(0.1))
	assert.InDelta(t, 3, boneX(t, a.Pose(), 0), eps)
}

func TestAnimator_ConsumerErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	player := animation.NewPlayer()
	a := NewAnimator(
		WithName("hero"),
		WithPlayer(player),
		WithMachine("base", singleState(player, holdClip("base", 0, 0))),
		WithConsumer(&capturingConsumer{err: sentinel}),
	)

	err := a.Update(0.1)
	require.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), `animator "hero"`)
}

func TestAnimator_DisabledSkipsUpdate(t *testing.T) {
	player := animation.NewPlayer()
	base := singleState(player, holdClip("base", 0, 0))
	consumer := &capturingConsumer{}
	a := NewAnimator(WithPlayer(player), WithMachine("base", base), WithConsumer(consumer))

	a.SetEnabled(false)
	assert.False(t, a.Enabled())
	require.NoError(t, a.Update(0.5))
	assert.Zero(t, consumer.calls)
	_, ok := base.ActiveState()
	assert.False(t, ok)
}

func TestAnimator_LayerManagement(t *testing.T) {
	a := NewAnimator()
	assert.Nil(t, a.Machine())
	assert.Nil(t, a.Layer(0))

	base, upper := absm.NewMachine(), absm.NewMachine()
	assert.Equal(t, 0, a.AddLayer(Layer{Name: "base", Machine: base, Weight: 1}))
	assert.Equal(t, 1, a.AddLayer(Layer{Name: "upper", Machine: upper, Weight: 1}))

	assert.Equal(t, 2, a.LayerCount())
	assert.Equal(t, 1, a.FindLayer("upper"))
	assert.Equal(t, -1, a.FindLayer("missing"))
	assert.Same(t, base, a.Machine())

	assert.True(t, a.RemoveLayer(0))
	assert.False(t, a.RemoveLayer(5))
	assert.Same(t, upper, a.Machine())
	assert.Equal(t, "upper", a.Layer(0).Name)

	assert.Panics(t, func() { a.AddLayer(Layer{Name: "nil"}) })
}

func TestAnimator_WithModelBuildsPlayer(t *testing.T) {
	m := model.NewModel(model.WithName("hero"), model.WithAnimations(holdClip("idle", 0, 0), holdClip("run", 10, 0)))
	a := NewAnimator(WithModel(m, true))

	assert.Same(t, m, a.Model())
	assert.Equal(t, 2, a.Player().Count())
	_, ok := a.Player().Find("run")
	assert.True(t, ok)
}

func TestAnimator_SignalsFromWeightedLayers(t *testing.T) {
	player := animation.NewPlayer()
	step := holdClip("walk", 1, 0)
	step.Signals = []model.AnimationSignal{{Name: "footstep", Time: 0.5}}
	wave := holdClip("wave", 2, 1)
	wave.Signals = []model.AnimationSignal{{Name: "wave", Time: 0.5}}

	a := NewAnimator(WithPlayer(player))
	a.AddLayer(Layer{Name: "base", Machine: singleState(player, step), Weight: 1})
	upper := a.AddLayer(Layer{Name: "upper", Machine: singleState(player, wave), Weight: 1})

	require.NoError(t, a.Update(0.25))
	assert.Empty(t, a.Signals(absm.SignalsAll))

	require.NoError(t, a.Update(0.25))
	sigs := a.Signals(absm.SignalsMaxWeight)
	require.Len(t, sigs, 2)
	assert.Equal(t, "base", sigs[0].Layer)
	assert.Equal(t, "footstep", sigs[0].Name)
	assert.Equal(t, "upper", sigs[1].Layer)
	assert.Equal(t, "wave", sigs[1].Name)

	a.Layer(upper).Weight = 0
	require.NoError(t, a.Update(1))
	sigs = a.Signals(absm.SignalsAll)
	require.Len(t, sigs, 1, "zero-weight layers are silent")
	assert.Equal(t, "base", sigs[0].Layer)
}
