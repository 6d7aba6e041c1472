package scene

import (
	"errors"
	"slices"
)

// Entity is a named root node carrying a render and a transform
// component.
type Entity struct {
	*Node
	render    *RenderComponent
	transform *TransformComponent
}

// NewEntity returns an active entity with empty render and identity
// transform components.
func NewEntity(name string) *Entity {
	e := &Entity{
		Node:      NewNode(name),
		render:    NewRenderComponent(),
		transform: NewTransformComponent(),
	}
	e.AddComponent(e.transform)
	e.AddComponent(e.render)
	return e
}

// RenderComponent returns the entity's render component.
func (e *Entity) RenderComponent() *RenderComponent { return e.render }

// TransformComponent returns the entity's transform component.
func (e *Entity) TransformComponent() *TransformComponent { return e.transform }

// World is a set of entities viewed through one camera.
type World struct {
	entities []*Entity
	camera   *Camera
}

// NewWorld returns an empty world without a camera.
func NewWorld() *World {
	return &World{}
}

// AddEntity adds e. Nil entities are ignored.
func (w *World) AddEntity(e *Entity) {
	if e == nil {
		return
	}
	w.entities = append(w.entities, e)
}

// RemoveEntity removes the first entity named name and reports whether one
// was found.
func (w *World) RemoveEntity(name string) bool {
	i := slices.IndexFunc(w.entities, func(e *Entity) bool { return e.Name() == name })
	if i < 0 {
		return false
	}
	w.entities = slices.Delete(w.entities, i, i+1)
	return true
}

// Entity returns the first entity named name, or nil.
func (w *World) Entity(name string) *Entity {
	for _, e := range w.entities {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Entities returns the entities in insertion order.
func (w *World) Entities() []*Entity {
	return slices.Clone(w.entities)
}

// SetCamera sets the active camera.
func (w *World) SetCamera(c *Camera) { w.camera = c }

// Camera returns the active camera, or nil.
func (w *World) Camera() *Camera { return w.camera }

// Update advances every active entity.
func (w *World) Update(dt float64) {
	for _, e := range w.entities {
		e.Update(dt)
	}
}

// Render applies the camera, if any, and renders every active entity.
func (w *World) Render(r Renderer) error {
	if w.camera != nil {
		w.camera.Apply(r)
	}
	var errs []error
	for _, e := range w.entities {
		if err := e.Render(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Invalidate queues every mesh of every entity for staging again.
func (w *World) Invalidate() {
	for _, e := range w.entities {
		e.render.Invalidate()
	}
}
