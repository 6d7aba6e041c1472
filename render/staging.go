// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/command"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/gpubuffer"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/mesh"
)

// Reasons wrapped by ErrMeshSkipped.
var (
	ErrNilMesh       = errors.New("nil mesh")
	ErrNoGroups      = errors.New("no primitive groups")
	ErrNoVertexData  = errors.New("no vertex data")
	ErrNoIndexData   = errors.New("no index data")
	ErrStaleMaterial = errors.New("stale material handle")
)

// meshResources are the backend objects created for one mesh, and the
// mesh state they were last built from.
type meshResources struct {
	vb *gpubuffer.Buffer
	ib *gpubuffer.Buffer
	va backend.VertexArrayID

	vertexBytes int
	indexBytes  int
	groups      int
	revision    uint64
}

func (r *meshResources) mark(m *mesh.Mesh) {
	r.vertexBytes = m.VertexBuffer().Size()
	r.indexBytes = m.IndexBuffer().Size()
	r.groups = m.NumPrimitiveGroups()
	r.revision = m.Revision()
}

func (r *meshResources) current(m *mesh.Mesh) bool {
	return r.vertexBytes == m.VertexBuffer().Size() &&
		r.indexBytes == m.IndexBuffer().Size() &&
		r.groups == m.NumPrimitiveGroups() &&
		r.revision == m.Revision()
}

// materialShader is the backend shader compiled for a shader material.
type materialShader struct {
	sum uint64
	id  backend.ShaderID
}

func bufferKey(m *mesh.Mesh, suffix string) string {
	return fmt.Sprintf("%s.%d.%s", m.Name(), m.ID(), suffix)
}

func meshName(m *mesh.Mesh) string {
	if m == nil {
		return "<nil>"
	}
	return m.Name()
}

// AddMesh stages m into the active pass. numInstances above 1, or an
// instance count set on the mesh, stages one instanced draw.
//
// A mesh that cannot be staged is logged and reported as an error wrapping
// ErrMeshSkipped; nothing is queued for it and the batch stays usable.
func (s *Service) AddMesh(m *mesh.Mesh, numInstances int) error {
	if s.active == noPass {
		return ErrNoActivePass
	}
	if !s.inBatch {
		return ErrNoActiveBatch
	}

	cmds, err := s.stage(m, numInstances)
	if err != nil {
		s.stats.Skipped++
		g3d.Logger().Warn("render: mesh skipped",
			"mesh", meshName(m), "pass", s.active, "batch", s.batch, "err", err)
		return fmt.Errorf("%w: %s: %w", ErrMeshSkipped, meshName(m), err)
	}

	s.queues[s.active].Push(cmds...)
	s.stats.Staged++
	s.stats.Commands += uint64(len(cmds))
	g3d.Logger().Debug("render: mesh staged",
		"mesh", m.Name(), "pass", s.active, "batch", s.batch, "commands", len(cmds))
	return nil
}

// AddMeshes stages every mesh in order. Skipped meshes do not stop the
// rest; their errors are joined.
func (s *Service) AddMeshes(ms []*mesh.Mesh, numInstances int) error {
	if s.active == noPass {
		return ErrNoActivePass
	}
	if !s.inBatch {
		return ErrNoActiveBatch
	}
	var errs []error
	for _, m := range ms {
		if err := s.AddMesh(m, numInstances); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// stage builds the commands for one mesh. It mutates the bound material
// only once every resource has resolved.
func (s *Service) stage(m *mesh.Mesh, numInstances int) ([]command.Command, error) {
	switch {
	case m == nil:
		return nil, ErrNilMesh
	case s.backend == nil:
		return nil, ErrNilBackend
	case m.NumPrimitiveGroups() == 0:
		return nil, ErrNoGroups
	case m.VertexBuffer().Size() == 0:
		return nil, ErrNoVertexData
	case m.IndexBuffer().Size() == 0:
		return nil, ErrNoIndexData
	}
	if err := m.ValidateGroups(); err != nil {
		return nil, err
	}

	res, err := s.resources(m)
	if err != nil {
		return nil, err
	}
	handle, binding, err := s.resolveMaterial(m)
	if err != nil {
		return nil, err
	}

	var cmds []command.Command
	if !s.bound.valid || s.bound.handle != handle || s.bound.shader != binding.Shader {
		cmds = append(cmds, command.SetMaterial{Material: handle, Name: binding.Label, Binding: binding})
	}

	model := s.world
	if m.IsLocal() {
		model = s.world.Mul4(m.ModelMatrix())
	}
	hasModel := m.IsLocal() || s.hasWorld

	instances := max(numInstances, m.Instances())
	if instances > 1 {
		cmds = append(cmds, command.DrawInstancedPrimitives{
			MeshID:      m.ID(),
			VertexArray: res.va,
			Groups:      m.PrimitiveGroups(),
			Instances:   instances,
			Model:       model,
			HasModel:    hasModel,
		})
	} else {
		for i, g := range m.PrimitiveGroups() {
			cmds = append(cmds, command.DrawPrimitives{
				MeshID:      m.ID(),
				VertexArray: res.va,
				Group:       i,
				Primitive:   g,
				Model:       model,
				HasModel:    hasModel,
			})
		}
	}

	s.bound = boundMaterial{valid: true, handle: handle, shader: binding.Shader}
	return cmds, nil
}

// resources returns the buffers and vertex array of m, creating them on
// first sight and bringing them up to date when the mesh has changed since.
// A failed creation leaves nothing registered.
func (s *Service) resources(m *mesh.Mesh) (*meshResources, error) {
	if r, ok := s.meshes[m.ID()]; ok {
		if err := s.sync(m, r); err != nil {
			return nil, err
		}
		return r, nil
	}
	vb, err := s.buffers.CreateBuffer(bufferKey(m, "vb"), m.VertexBuffer())
	if err != nil {
		return nil, err
	}
	ib, err := s.buffers.CreateBuffer(bufferKey(m, "ib"), m.IndexBuffer())
	if err != nil {
		s.buffers.ReleaseBuffer(vb)
		return nil, err
	}
	va, err := s.backend.CreateVertexArray(vertexArrayDesc(m, vb, ib))
	if err != nil {
		s.buffers.ReleaseBuffer(vb)
		s.buffers.ReleaseBuffer(ib)
		return nil, fmt.Errorf("vertex array: %w", err)
	}
	r := &meshResources{vb: vb, ib: ib, va: va}
	r.mark(m)
	s.meshes[m.ID()] = r
	return r, nil
}

// sync uploads what changed in m since r was built. Appended bytes go
// through AppendToBuffer; replaced or shrunk payloads are uploaded whole.
// The vertex array is rebuilt whenever anything changed.
func (s *Service) sync(m *mesh.Mesh, r *meshResources) error {
	if r.current(m) {
		return nil
	}
	replaced := r.revision != m.Revision()
	vertices, indices := m.VertexBuffer().Data, m.IndexBuffer().Data
	if err := s.upload(r.vb, r.vertexBytes, vertices, replaced); err != nil {
		return err
	}
	r.vertexBytes = len(vertices)
	if err := s.upload(r.ib, r.indexBytes, indices, replaced); err != nil {
		return err
	}
	r.indexBytes = len(indices)

	va, err := s.backend.CreateVertexArray(vertexArrayDesc(m, r.vb, r.ib))
	if err != nil {
		return fmt.Errorf("vertex array: %w", err)
	}
	s.retireVertexArray(r.va)
	r.va = va
	r.mark(m)
	g3d.Logger().Debug("render: mesh resources synced",
		"mesh", m.Name(), "vertexBytes", r.vertexBytes, "indexBytes", r.indexBytes, "groups", r.groups)
	return nil
}

func (s *Service) upload(buf *gpubuffer.Buffer, uploaded int, data []byte, replaced bool) error {
	switch {
	case replaced || len(data) < uploaded:
		return s.buffers.UpdateBuffer(buf, data)
	case len(data) > uploaded:
		return s.buffers.AppendToBuffer(buf, data[uploaded:])
	}
	return nil
}

func vertexArrayDesc(m *mesh.Mesh, vb, ib *gpubuffer.Buffer) backend.VertexArrayDesc {
	return backend.VertexArrayDesc{
		Label:        fmt.Sprintf("%s.%d.va", m.Name(), m.ID()),
		Layout:       m.VertexType().Layout(),
		VertexBuffer: vb.Handle,
		IndexBuffer:  ib.Handle,
		IndexType:    m.IndexType(),
		Groups:       m.PrimitiveGroups(),
		Vertices:     m.VertexBuffer().Data,
		Indices:      m.IndexBuffer().Data,
	}
}

// resolveMaterial maps the mesh material to backend resources. The zero
// handle selects the default material.
func (s *Service) resolveMaterial(m *mesh.Mesh) (material.Handle, backend.MaterialBinding, error) {
	h := m.Material()
	if h.IsZero() {
		h = s.defaultMaterial
	}
	mat := s.library.Get(h)
	if mat == nil {
		return h, backend.MaterialBinding{}, fmt.Errorf("%w: %v", ErrStaleMaterial, h)
	}

	sid, err := s.shaderFor(h, mat, m.VertexType())
	if err != nil {
		return h, backend.MaterialBinding{}, err
	}
	tids, err := s.texturesFor(mat)
	if err != nil {
		return h, backend.MaterialBinding{}, err
	}
	return h, backend.MaterialBinding{
		Label:      mat.Name,
		Type:       mat.Type,
		Shader:     sid,
		Textures:   tids,
		Colors:     mat.Colors,
		Parameters: slices.Clone(mat.Parameters),
	}, nil
}

// shaderFor returns the backend shader of the material h. Shader materials
// are compiled per handle and recompiled when their source changes. Flat
// materials and shader materials without a shader share the builtin shader
// of the vertex type.
func (s *Service) shaderFor(h material.Handle, mat *material.Material, vt geometry.VertexType) (backend.ShaderID, error) {
	if mat.Type != material.TypeShader || mat.Shader == nil {
		return s.builtinShader(vt)
	}
	sum := shaderSum(mat.Shader)
	if e, ok := s.matShaders[h]; ok {
		if e.sum == sum {
			return e.id, nil
		}
		s.retireShader(e.id)
		delete(s.matShaders, h)
	}
	s.pruneShaders()

	label := "mat" + mat.Name
	id, err := s.backend.CreateShader(label, mat.Shader)
	if err != nil {
		return backend.InvalidID, fmt.Errorf("shader %q: %w", label, err)
	}
	s.matShaders[h] = materialShader{sum: sum, id: id}
	return id, nil
}

func (s *Service) builtinShader(vt geometry.VertexType) (backend.ShaderID, error) {
	key := "flat" + vt.String()
	if id, ok := s.shaders[key]; ok {
		return id, nil
	}
	id, err := s.backend.CreateShader(key, BuiltinShader(vt))
	if err != nil {
		return backend.InvalidID, fmt.Errorf("shader %q: %w", key, err)
	}
	s.shaders[key] = id
	return id, nil
}

// pruneShaders retires the shaders of materials released from the library.
func (s *Service) pruneShaders() {
	for h, e := range s.matShaders {
		if s.library.Get(h) == nil {
			s.retireShader(e.id)
			delete(s.matShaders, h)
		}
	}
}

// ReleaseMaterial releases the material h from the library together with
// its backend shader. The default material cannot be released.
func (s *Service) ReleaseMaterial(h material.Handle) bool {
	if h == s.defaultMaterial {
		return false
	}
	if e, ok := s.matShaders[h]; ok {
		s.retireShader(e.id)
		delete(s.matShaders, h)
	}
	return s.library.Release(h)
}

// texturesFor uploads the textures of mat once each. Invalid textures and
// materials without textures use the default texture.
func (s *Service) texturesFor(mat *material.Material) ([]backend.TextureID, error) {
	if len(mat.Textures) == 0 {
		id, err := s.texture(nil)
		if err != nil {
			return nil, err
		}
		return []backend.TextureID{id}, nil
	}
	ids := make([]backend.TextureID, 0, len(mat.Textures))
	for _, t := range mat.Textures {
		if !t.Valid() {
			g3d.Logger().Debug("render: invalid texture replaced by default", "material", mat.Name)
			t = nil
		}
		id, err := s.texture(t)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) texture(t *material.Texture) (backend.TextureID, error) {
	if t == nil {
		t = material.DefaultTexture()
	}
	key := "tex" + t.Name
	if id, ok := s.textures[key]; ok {
		return id, nil
	}
	id, err := s.backend.CreateTexture(key, t)
	if err != nil {
		return backend.InvalidID, fmt.Errorf("texture %q: %w", t.Name, err)
	}
	s.textures[key] = id
	return id, nil
}

// UpdateMesh uploads the current contents of a staged mesh and rebuilds
// its vertex array. Meshes that were never staged are ignored.
func (s *Service) UpdateMesh(m *mesh.Mesh) error {
	if m == nil {
		return ErrNilMesh
	}
	r, ok := s.meshes[m.ID()]
	if !ok {
		return nil
	}
	if err := s.buffers.UpdateBuffer(r.vb, m.VertexBuffer().Data); err != nil {
		return err
	}
	if err := s.buffers.UpdateBuffer(r.ib, m.IndexBuffer().Data); err != nil {
		return err
	}
	va, err := s.backend.CreateVertexArray(vertexArrayDesc(m, r.vb, r.ib))
	if err != nil {
		return fmt.Errorf("vertex array: %w", err)
	}
	s.retireVertexArray(r.va)
	r.va = va
	r.mark(m)
	return nil
}

// ReleaseMesh destroys the backend objects of m. When commands referencing
// the mesh are still queued, its vertex array lives until the next Frame
// has dispatched them.
func (s *Service) ReleaseMesh(m *mesh.Mesh) {
	if m == nil {
		return
	}
	if r, ok := s.meshes[m.ID()]; ok {
		s.releaseResources(r)
		delete(s.meshes, m.ID())
	}
}

func (s *Service) releaseResources(r *meshResources) {
	s.retireVertexArray(r.va)
	s.buffers.ReleaseBuffer(r.vb)
	s.buffers.ReleaseBuffer(r.ib)
}
