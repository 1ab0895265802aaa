package absm

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

// holdClip poses bone 0 at (x, 0, 0) for its whole length.
func holdClip(name string, x float32) *model.AnimationClip {
	return &model.AnimationClip{
		Name:     name,
		Duration: 1,
		Channels: []model.AnimationChannel{{
			BoneIndex:    0,
			PositionKeys: []model.VectorKeyframe{{Time: 0, Value: [3]float32{x, 0, 0}}},
		}},
	}
}

func boneX(t *testing.T, pose *animation.Pose) float32 {
	t.Helper()
	require.NotNil(t, pose)
	tr, ok := pose.Get(0)
	require.True(t, ok, "bone 0 missing from pose")
	return tr.Translation[0]
}

type locomotion struct {
	m       Machine
	player  animation.Player
	idle    StateHandle
	run     StateHandle
	toRun   TransitionHandle
	runNode NodeHandle
}

// newLocomotion builds idle (x=0) and run (x=10) states joined by a transition gated on "Run".
func newLocomotion(t *testing.T, duration float32, options ...MachineBuilderOption) *locomotion {
	t.Helper()
	player := animation.NewPlayer()
	m := NewMachine(options...)

	idleNode := m.AddNode(NewPlayAnimation(player.AddClip(holdClip("idle", 0), true)))
	runNode := m.AddNode(NewPlayAnimation(player.AddClip(holdClip("run", 10), true)))
	idle := m.AddState(NewState("idle", idleNode))
	run := m.AddState(NewState("run", runNode))

	toRun, err := m.AddTransition(NewTransition("idle->run", idle, run, duration, "Run"))
	require.NoError(t, err)

	return &locomotion{m: m, player: player, idle: idle, run: run, toRun: toRun, runNode: runNode}
}

func (l *locomotion) tick(t *testing.T, dt float32) *animation.Pose {
	t.Helper()
	l.player.Advance(dt)
	pose, err := l.m.Tick(dt, l.player)
	require.NoError(t, err)
	return pose
}
