package scene

import (
	"errors"
	"slices"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/mesh"
	"github.com/gogpu/g3d/render"
)

// RenderComponent holds the static meshes of a node.
//
// Added meshes are queued as pending. Render stages every pending mesh once
// and drains the queue, so a mesh is not staged again until it is re-added
// or Invalidate starts a new cycle.
type RenderComponent struct {
	meshes    []*mesh.Mesh
	pending   []*mesh.Mesh
	instances int
}

var _ Component = (*RenderComponent)(nil)

// NewRenderComponent returns an empty render component.
func NewRenderComponent() *RenderComponent {
	return &RenderComponent{}
}

// Type implements Component.
func (c *RenderComponent) Type() ComponentType { return ComponentRender }

// Update implements Component.
func (c *RenderComponent) Update(float64) {}

// SetInstances sets the instance count requested for every staged mesh.
// Values below 2 draw each mesh once unless the mesh itself is instanced.
func (c *RenderComponent) SetInstances(n int) { c.instances = n }

// AddStaticMesh adds m and queues it for staging. A nil mesh is ignored.
func (c *RenderComponent) AddStaticMesh(m *mesh.Mesh) {
	if m == nil {
		return
	}
	c.meshes = append(c.meshes, m)
	c.pending = append(c.pending, m)
}

// AddStaticMeshArray adds every non-nil mesh of ms. An empty slice is
// ignored.
func (c *RenderComponent) AddStaticMeshArray(ms []*mesh.Mesh) {
	for _, m := range ms {
		c.AddStaticMesh(m)
	}
}

// Meshes returns every mesh ever added, in order.
func (c *RenderComponent) Meshes() []*mesh.Mesh {
	return slices.Clone(c.meshes)
}

// Pending returns the number of meshes waiting to be staged.
func (c *RenderComponent) Pending() int { return len(c.pending) }

// Invalidate queues every mesh for staging again.
func (c *RenderComponent) Invalidate() {
	c.pending = append(c.pending[:0], c.meshes...)
}

// Render implements Component. Every pending mesh is staged once. Meshes
// the renderer skips leave the queue with it; meshes refused for any other
// reason, such as a missing pass or batch, stay pending for the next
// Render.
func (c *RenderComponent) Render(r Renderer) error {
	if len(c.pending) == 0 {
		return nil
	}
	var errs []error
	kept := c.pending[:0]
	for _, m := range c.pending {
		err := r.AddMesh(m, c.instances)
		if err == nil {
			continue
		}
		errs = append(errs, err)
		if !errors.Is(err, render.ErrMeshSkipped) {
			kept = append(kept, m)
		}
	}
	g3d.Logger().Debug("scene: staged meshes",
		"count", len(c.pending), "failed", len(errs), "kept", len(kept))
	clear(c.pending[len(kept):])
	c.pending = kept
	return errors.Join(errs...)
}
