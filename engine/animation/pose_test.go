package animation

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func translated(x, y, z float32) model.Transform {
	t := model.IdentityTransform()
	t.Translation = [3]float32{x, y, z}
	return t
}

func TestPose_SetKeepsFirstInsertionOrder(t *testing.T) {
	p := NewPose(0)
	p.Set(3, translated(1, 0, 0))
	p.Set(1, translated(2, 0, 0))
	p.Set(3, translated(5, 0, 0))

	assert.Equal(t, []int32{3, 1}, p.Bones())
	got, ok := p.Get(3)
	require.True(t, ok)
	assert.Equal(t, float32(5), got.Translation[0])
}

func TestPose_MissingBone(t *testing.T) {
	p := NewPose(0)
	_, ok := p.Get(7)
	assert.False(t, ok)
	assert.False(t, p.Has(7))

	var nilPose *Pose
	assert.Equal(t, 0, nilPose.Len())
	assert.Nil(t, nilPose.Entries())
}

func TestPose_CloneIsIndependent(t *testing.T) {
	p := NewPose(2)
	p.Set(0, translated(1, 1, 1))
	c := p.Clone()
	c.Set(0, translated(9, 9, 9))
	c.Set(1, translated(2, 2, 2))

	orig, _ := p.Get(0)
	assert.Equal(t, float32(1), orig.Translation[0])
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 2, c.Len())
}

func TestPose_ResetKeepsUsable(t *testing.T) {
	p := NewPose(1)
	p.Set(0, translated(1, 0, 0))
	p.Reset()
	assert.Equal(t, 0, p.Len())
	p.Set(4, translated(1, 0, 0))
	assert.Equal(t, []int32{4}, p.Bones())
}
