package scene

import "github.com/go-gl/mathgl/mgl32"

// Camera holds a view and a projection.
type Camera struct {
	eye, center, up mgl32.Vec3
	projection      mgl32.Mat4
}

// NewPerspectiveCamera returns a camera at the origin looking down -Z with
// a perspective projection. fovY is in degrees.
func NewPerspectiveCamera(fovY, aspect, near, far float32) *Camera {
	c := newCamera()
	c.SetPerspective(fovY, aspect, near, far)
	return c
}

// NewOrthoCamera returns a camera at the origin looking down -Z with an
// orthographic projection.
func NewOrthoCamera(left, right, bottom, top, near, far float32) *Camera {
	c := newCamera()
	c.SetOrtho(left, right, bottom, top, near, far)
	return c
}

func newCamera() *Camera {
	return &Camera{
		center:     mgl32.Vec3{0, 0, -1},
		up:         mgl32.Vec3{0, 1, 0},
		projection: mgl32.Ident4(),
	}
}

// SetPerspective sets a perspective projection. fovY is in degrees.
func (c *Camera) SetPerspective(fovY, aspect, near, far float32) {
	c.projection = mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far)
}

// SetOrtho sets an orthographic projection.
func (c *Camera) SetOrtho(left, right, bottom, top, near, far float32) {
	c.projection = mgl32.Ortho(left, right, bottom, top, near, far)
}

// LookAt places the camera at eye looking at center.
func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	c.eye, c.center, c.up = eye, center, up
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 { return c.eye }

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.eye, c.center, c.up)
}

// Projection returns the projection matrix.
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }

// Apply pushes the camera into r.
func (c *Camera) Apply(r Renderer) {
	r.SetCamera(c.View(), c.projection)
}
