package absm

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/stretchr/testify/assert"
)

func TestCondition_Evaluate(t *testing.T) {
	params := NewParameterContainer()
	params.Set("a", Rule(true))
	params.Set("b", Rule(false))
	params.Set("w", Float(1))

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"param true", Param("a"), true},
		{"param false", Param("b"), false},
		{"missing param", Param("nope"), false},
		{"mistyped param", Param("w"), false},
		{"zero condition", Condition{}, false},
		{"and", And(Param("a"), Param("b")), false},
		{"or", Or(Param("a"), Param("b")), true},
		{"xor", Xor(Param("a"), Param("a")), false},
		{"not", Not(Param("b")), true},
		{"nested", And(Param("a"), Not(Or(Param("b"), Param("nope")))), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Evaluate(params, nil))
		})
	}
}

func TestCondition_AnimationEnded(t *testing.T) {
	player := animation.NewPlayer()
	h := player.AddClip(holdClip("attack", 0), false)
	cond := AnimationEnded(h)

	assert.False(t, cond.Evaluate(nil, player))
	assert.False(t, cond.Evaluate(nil, nil))

	player.Advance(2)
	assert.True(t, cond.Evaluate(nil, player))
	assert.Equal(t, ConditionAnimationEnded, cond.Kind())
}

func TestCondition_String(t *testing.T) {
	c := And(Param("Run"), Not(Param("Crouch")))
	assert.Equal(t, "(Run && !Crouch)", c.String())
	assert.Equal(t, "Run", Param("Run").ParameterName())
}
