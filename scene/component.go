package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/mesh"
)

// Renderer is the part of the render service that scene nodes stage into.
// It is satisfied by *render.Service.
type Renderer interface {
	// AddMesh stages a mesh into the open batch.
	AddMesh(m *mesh.Mesh, numInstances int) error

	// SetWorldTransform sets the transform applied to subsequently staged
	// meshes.
	SetWorldTransform(m mgl32.Mat4)

	// WorldTransform returns the current world transform.
	WorldTransform() mgl32.Mat4

	// SetCamera sets the view and projection used by every pass.
	SetCamera(view, projection mgl32.Mat4)
}

// ComponentType identifies the kind of a component. A node holds at most
// one component of each type.
type ComponentType uint32

// Built-in component types. Custom components use values from
// ComponentUser up.
const (
	ComponentRender ComponentType = iota + 1
	ComponentTransform
	ComponentUser ComponentType = 1 << 16
)

// String returns the component type name.
func (t ComponentType) String() string {
	switch t {
	case ComponentRender:
		return "Render"
	case ComponentTransform:
		return "Transform"
	default:
		if t >= ComponentUser {
			return "User"
		}
		return "Unknown"
	}
}

// Component is behavior attached to a node.
type Component interface {
	// Type returns the component type.
	Type() ComponentType

	// Update advances the component by dt seconds.
	Update(dt float64)

	// Render stages the component's geometry. It is called with the node's
	// world transform already applied.
	Render(r Renderer) error
}
