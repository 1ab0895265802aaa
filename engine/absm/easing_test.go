package absm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestEasing_Lookup(t *testing.T) {
	for _, name := range []string{"InOutQuad", "in-out-quad", "in_out_quad", "inoutquad"} {
		fn, err := Easing(name)
		require.NoError(t, err, name)
		assert.InDelta(t, ease.InOutQuad(0.25, 0, 1, 1), fn(0.25, 0, 1, 1), 1e-6, name)
	}

	fn, err := Easing("")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, fn(0.3, 0, 1, 1), 1e-6)

	_, err = Easing("wobble")
	assert.ErrorIs(t, err, ErrUnknownEasing)

	names := EasingNames()
	assert.Contains(t, names, "linear")
	assert.IsIncreasing(t, names)
}

func TestMachine_DefaultEasingAppliesToPlainTransitions(t *testing.T) {
	l := newLocomotion(t, 1, WithDefaultEasing(ease.InQuad))
	tr, ok := l.m.Transition(l.toRun)
	require.True(t, ok)
	tr.elapsed = 0.5
	assert.InDelta(t, 0.25, tr.Progress(), eps)

	m := NewMachine(WithDefaultEasing(ease.InQuad))
	a := m.AddState(NewState("a", NodeHandle{}))
	b := m.AddState(NewState("b", NodeHandle{}))
	h, err := m.AddTransition(NewTransition("a->b", a, b, 1, "go", WithEasing(ease.Linear)))
	require.NoError(t, err)
	own, _ := m.Transition(h)
	own.elapsed = 0.5
	assert.InDelta(t, 0.5, own.Progress(), eps, "explicit easing wins")
}
