package scene

import "github.com/go-gl/mathgl/mgl32"

// TransformComponent places a node relative to its parent. The matrix is
// translation * rotation * scale.
type TransformComponent struct {
	translation mgl32.Vec3
	scale       mgl32.Vec3
	rotation    mgl32.Quat

	matrix mgl32.Mat4
	dirty  bool
}

var _ Component = (*TransformComponent)(nil)

// NewTransformComponent returns the identity transform.
func NewTransformComponent() *TransformComponent {
	return &TransformComponent{
		scale:    mgl32.Vec3{1, 1, 1},
		rotation: mgl32.QuatIdent(),
		matrix:   mgl32.Ident4(),
	}
}

// Type implements Component.
func (t *TransformComponent) Type() ComponentType { return ComponentTransform }

// Update implements Component.
func (t *TransformComponent) Update(float64) {}

// Render implements Component. The node applies the transform; the
// component stages nothing.
func (t *TransformComponent) Render(Renderer) error { return nil }

// SetTranslation sets the translation.
func (t *TransformComponent) SetTranslation(v mgl32.Vec3) {
	t.translation = v
	t.dirty = true
}

// Translation returns the translation.
func (t *TransformComponent) Translation() mgl32.Vec3 { return t.translation }

// SetScale sets the per-axis scale.
func (t *TransformComponent) SetScale(v mgl32.Vec3) {
	t.scale = v
	t.dirty = true
}

// Scale returns the per-axis scale.
func (t *TransformComponent) Scale() mgl32.Vec3 { return t.scale }

// SetRotation sets the rotation.
func (t *TransformComponent) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.dirty = true
}

// Rotate applies a rotation of angle radians about axis after the current
// rotation.
func (t *TransformComponent) Rotate(angle float32, axis mgl32.Vec3) {
	t.SetRotation(mgl32.QuatRotate(angle, axis.Normalize()).Mul(t.rotation))
}

// Rotation returns the rotation.
func (t *TransformComponent) Rotation() mgl32.Quat { return t.rotation }

// Matrix returns the model matrix.
func (t *TransformComponent) Matrix() mgl32.Mat4 {
	if t.dirty {
		tr := mgl32.Translate3D(t.translation[0], t.translation[1], t.translation[2])
		sc := mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2])
		t.matrix = tr.Mul4(t.rotation.Mat4()).Mul4(sc)
		t.dirty = false
	}
	return t.matrix
}
