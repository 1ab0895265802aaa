package absm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tanema/gween/ease"
)

func TestTransition_ProgressClampsAtDuration(t *testing.T) {
	tr := NewTransition("t", StateHandle{}, StateHandle{}, 1, "Run")
	assert.Equal(t, TransitionIdle, tr.Phase())

	tr.begin()
	assert.Equal(t, TransitionRunning, tr.Phase())
	assert.InDelta(t, 0, tr.Progress(), eps)

	tr.advance(0.5)
	assert.InDelta(t, 0.5, tr.Progress(), eps)
	assert.False(t, tr.IsDone())

	tr.advance(0.75)
	assert.Equal(t, float32(1), tr.Elapsed())
	assert.Equal(t, float32(1), tr.Progress())
	assert.True(t, tr.IsDone())
	assert.Equal(t, TransitionCompleted, tr.Phase())
}

func TestTransition_FixedStepsReachDuration(t *testing.T) {
	tr := NewTransition("t", StateHandle{}, StateHandle{}, 1, "Run")
	tr.begin()
	for range 59 {
		tr.advance(1.0 / 60)
	}
	assert.False(t, tr.IsDone())

	tr.advance(1.0 / 60)
	assert.True(t, tr.IsDone())
	assert.Equal(t, float32(1), tr.Elapsed())
	assert.Equal(t, float32(1), tr.Progress())
}

func TestTransition_Easing(t *testing.T) {
	tr := NewTransition("t", StateHandle{}, StateHandle{}, 2, "Run", WithEasing(ease.InQuad))
	tr.begin()
	tr.advance(1)
	assert.InDelta(t, 0.25, tr.Progress(), eps)

	tr.SetEasing(nil)
	assert.InDelta(t, 0.5, tr.Progress(), eps)
}

func TestTransition_ZeroDurationIsDoneImmediately(t *testing.T) {
	tr := NewTransition("t", StateHandle{}, StateHandle{}, 0, "Run")
	tr.begin()
	assert.Equal(t, float32(1), tr.Progress())
	tr.advance(0.5)
	assert.True(t, tr.IsDone())
	assert.Equal(t, float32(0), tr.Elapsed())
	assert.NoError(t, tr.validate())
}

func TestTransition_Validate(t *testing.T) {
	neg := NewTransition("t", StateHandle{}, StateHandle{}, -1, "Run")
	assert.ErrorIs(t, neg.validate(), ErrInvalidDuration)

	shrunk := NewTransition("t", StateHandle{}, StateHandle{}, 1, "Run")
	shrunk.begin()
	shrunk.advance(0.75)
	shrunk.SetDuration(0.5)
	assert.ErrorIs(t, shrunk.validate(), ErrInconsistentTransition)
}

func TestTransition_ReadyHonoursInvert(t *testing.T) {
	params := NewParameterContainer()
	params.Set("Grounded", Rule(false))

	tr := NewTransition("fall", StateHandle{}, StateHandle{}, 1, "Grounded", WithInvert(true))
	assert.True(t, tr.Ready(params, nil))

	params.Set("Grounded", Rule(true))
	assert.False(t, tr.Ready(params, nil))

	tr.SetCondition(Or(Param("Grounded"), Param("Swimming")))
	tr.SetInvert(false)
	assert.True(t, tr.Ready(params, nil))
}
