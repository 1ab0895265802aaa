package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// singularEpsilon is the determinant magnitude below which a matrix is treated as singular.
const singularEpsilon = 1e-12

// ComposeTRS builds the column-major matrix translation * rotation * scale.
// A zero-length rotation is treated as the identity.
//
// Parameters:
//   - translation: the translation vector
//   - rotation: the rotation quaternion as (x, y, z, w)
//   - scale: the per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeTRS(translation [3]float32, rotation [4]float32, scale [3]float32) mgl32.Mat4 {
	q := NormalizeQuat(rotation)
	m := q.Mat4()
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] *= scale[col]
		}
	}
	m[12], m[13], m[14] = translation[0], translation[1], translation[2]
	return m
}

// NormalizeQuat converts an (x, y, z, w) rotation into a unit mgl32.Quat.
// Zero-length and NaN rotations become the identity.
//
// Parameters:
//   - rotation: the rotation as (x, y, z, w)
//
// Returns:
//   - mgl32.Quat: the normalized quaternion
func NormalizeQuat(rotation [4]float32) mgl32.Quat {
	q := mgl32.Quat{W: rotation[3], V: mgl32.Vec3{rotation[0], rotation[1], rotation[2]}}
	l := q.Len()
	if l == 0 || math32.IsNaN(l) {
		return mgl32.QuatIdent()
	}
	return q.Scale(1 / l)
}

// Invert4 computes the inverse of a 4x4 column-major matrix.
// If the matrix is singular the identity is returned along with false.
//
// Parameters:
//   - m: source matrix
//
// Returns:
//   - mgl32.Mat4: the inverse, or the identity if m is singular
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(m mgl32.Mat4) (mgl32.Mat4, bool) {
	if math32.Abs(m.Det()) < singularEpsilon {
		return mgl32.Ident4(), false
	}
	return m.Inv(), true
}

// ApproxEqual4 reports whether two matrices match element-wise within eps.
//
// Parameters:
//   - a: the first matrix
//   - b: the second matrix
//   - eps: the per-element tolerance
//
// Returns:
//   - bool: true if every element differs by at most eps
func ApproxEqual4(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
