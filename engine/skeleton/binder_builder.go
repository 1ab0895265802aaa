package skeleton

import "github.com/go-gl/mathgl/mgl32"

// BinderBuilderOption is a functional option for configuring a Binder during construction.
type BinderBuilderOption func(*binder)

// WithRootTransform is an option builder that places the skeleton's root bones under a model matrix.
//
// Parameters:
//   - m: the matrix applied above every root bone
//
// Returns:
//   - BinderBuilderOption: a function that applies the root transform option to a binder
func WithRootTransform(m mgl32.Mat4) BinderBuilderOption {
	return func(b *binder) {
		b.root = m
	}
}
