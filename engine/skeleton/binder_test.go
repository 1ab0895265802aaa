package skeleton

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-absm/common"
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func at(x, y, z float32) model.Transform {
	t := model.IdentityTransform()
	t.Translation = [3]float32{x, y, z}
	return t
}

// chain builds root -> child, each offset one unit up, with matching inverse bind matrices.
func chain(t *testing.T) *model.Skeleton {
	t.Helper()
	bones := []model.Bone{
		{Name: "root", ParentIndex: -1, LocalTransform: at(0, 1, 0)},
		{Name: "child", ParentIndex: 0, LocalTransform: at(0, 1, 0)},
	}
	bindWorld := []mgl32.Mat4{mgl32.Translate3D(0, 1, 0), mgl32.Translate3D(0, 2, 0)}
	for i := range bones {
		inv, ok := common.Invert4(bindWorld[i])
		require.True(t, ok)
		bones[i].InverseBindMatrix = [16]float32(inv)
	}
	return model.NewSkeleton(bones)
}

func translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

func TestBinder_BindPoseGivesIdentitySkin(t *testing.T) {
	b := NewBinder(chain(t))
	for bone := int32(0); bone < 2; bone++ {
		skin, ok := b.Skin(bone)
		require.True(t, ok)
		assert.True(t, common.ApproxEqual4(mgl32.Ident4(), skin, eps), "bone %d", bone)
	}
	w, ok := b.World(1)
	require.True(t, ok)
	assert.InDelta(t, 2, translation(w).Y(), eps)
}

func TestBinder_ApplyPosePropagatesToChildren(t *testing.T) {
	b := NewBinder(chain(t))
	pose := animation.NewPose(1)
	pose.Set(0, at(1, 1, 0))

	require.NoError(t, b.ApplyPose(pose))
	assert.Equal(t, uint64(1), b.Applied())

	w, _ := b.World(1)
	assert.InDelta(t, 1, translation(w).X(), eps)
	assert.InDelta(t, 2, translation(w).Y(), eps)

	skin, _ := b.Skin(0)
	assert.True(t, common.ApproxEqual4(mgl32.Translate3D(1, 0, 0), skin, eps))

	local, ok := b.Local(1)
	require.True(t, ok)
	assert.Equal(t, at(0, 1, 0), local, "bones missing from the pose keep the bind transform")
}

func TestBinder_RotationRotatesChildOffset(t *testing.T) {
	b := NewBinder(chain(t))
	root := at(0, 1, 0)
	root.Rotation = [4]float32{0, 0, 0.70710678, 0.70710678}
	pose := animation.NewPose(1)
	pose.Set(0, root)

	require.NoError(t, b.ApplyPose(pose))
	w, _ := b.World(1)
	assert.InDelta(t, -1, translation(w).X(), eps)
	assert.InDelta(t, 1, translation(w).Y(), eps)
}

func TestBinder_EachPoseStartsFromBind(t *testing.T) {
	b := NewBinder(chain(t))
	first := animation.NewPose(1)
	first.Set(1, at(5, 0, 0))
	require.NoError(t, b.ApplyPose(first))

	require.NoError(t, b.ApplyPose(animation.NewPose(0)))
	local, _ := b.Local(1)
	assert.Equal(t, at(0, 1, 0), local)
}

func TestBinder_OutOfRangeBonesAreReported(t *testing.T) {
	b := NewBinder(chain(t))
	pose := animation.NewPose(2)
	pose.Set(0, at(3, 1, 0))
	pose.Set(7, at(0, 0, 0))

	err := b.ApplyPose(pose)
	require.ErrorIs(t, err, ErrBoneOutOfRange)

	local, _ := b.Local(0)
	assert.Equal(t, at(3, 1, 0), local, "valid bones are still applied")
}

func TestBinder_RootTransform(t *testing.T) {
	b := NewBinder(chain(t), WithRootTransform(mgl32.Translate3D(10, 0, 0)))
	w, _ := b.World(1)
	assert.InDelta(t, 10, translation(w).X(), eps)
}

func TestBinder_SkinMatricesAndReset(t *testing.T) {
	b := NewBinder(chain(t))
	pose := animation.NewPose(1)
	pose.Set(1, at(0, 3, 0))
	require.NoError(t, b.ApplyPose(pose))

	dst := b.SkinMatrices(nil)
	require.Len(t, dst, 2)
	assert.True(t, common.ApproxEqual4(mgl32.Translate3D(0, 2, 0), dst[1], eps))

	b.Reset()
	dst = b.SkinMatrices(dst)
	assert.True(t, common.ApproxEqual4(mgl32.Ident4(), dst[1], eps))

	_, ok := b.World(-1)
	assert.False(t, ok)
}

func TestNewBinder_Panics(t *testing.T) {
	assert.Panics(t, func() { NewBinder(nil) })
	assert.Panics(t, func() {
		NewBinder(&model.Skeleton{Bones: []model.Bone{{ParentIndex: 0}}})
	})
}
