// Package mesh provides the drawable unit of geometry: a vertex buffer, an
// index buffer, primitive groups into that index buffer, a material handle
// and a model matrix.
package mesh

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
)

// ErrGroupOutOfRange is returned by ValidateGroups for a primitive group
// that reaches past the end of the index buffer.
var ErrGroupOutOfRange = errors.New("mesh: primitive group out of range")

var nextID atomic.Uint64

// Mesh owns its buffers and primitive groups. The material is referenced
// by handle and owned by a material.Library.
//
// Mesh is not safe for concurrent mutation.
type Mesh struct {
	name       string
	id         uint64
	vertexType geometry.VertexType
	indexType  geometry.IndexType

	vb       *geometry.BufferData
	ib       *geometry.BufferData
	groups   []geometry.PrimitiveGroup
	revision uint64

	material  material.Handle
	model     mgl32.Mat4
	local     bool
	instances int
}

// New creates an empty mesh with a process-unique id.
func New(name string, vertexType geometry.VertexType, indexType geometry.IndexType) *Mesh {
	return &Mesh{
		name:       name,
		id:         nextID.Add(1),
		vertexType: vertexType,
		indexType:  indexType,
		model:      mgl32.Ident4(),
	}
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// ID returns the numeric mesh id.
func (m *Mesh) ID() uint64 { return m.id }

// VertexType returns the vertex layout selector.
func (m *Mesh) VertexType() geometry.VertexType { return m.vertexType }

// IndexType returns the index width.
func (m *Mesh) IndexType() geometry.IndexType { return m.indexType }

// VertexBuffer returns the vertex buffer, or nil when none was created.
func (m *Mesh) VertexBuffer() *geometry.BufferData { return m.vb }

// IndexBuffer returns the index buffer, or nil when none was created.
func (m *Mesh) IndexBuffer() *geometry.BufferData { return m.ib }

// CreateVertexBuffer stores data in the vertex buffer. The buffer is
// allocated on first use; later calls append.
func (m *Mesh) CreateVertexBuffer(data []byte, access geometry.AccessType) {
	if m.vb == nil {
		m.vb = geometry.Alloc(geometry.BufferVertex, 0, access)
	}
	m.vb.Attach(data)
}

// CreateIndexBuffer stores data in the index buffer. The buffer is
// allocated on first use; later calls append.
func (m *Mesh) CreateIndexBuffer(data []byte, access geometry.AccessType) {
	if m.ib == nil {
		m.ib = geometry.Alloc(geometry.BufferIndex, 0, access)
	}
	m.ib.Attach(data)
}

// AttachVertices appends vertex bytes, allocating a read-only buffer first
// when the mesh has none.
func (m *Mesh) AttachVertices(data []byte) {
	m.CreateVertexBuffer(data, geometry.ReadOnly)
}

// AttachIndices appends index bytes, allocating a read-only buffer first
// when the mesh has none.
func (m *Mesh) AttachIndices(data []byte) {
	m.CreateIndexBuffer(data, geometry.ReadOnly)
}

// ReplaceVertices overwrites the vertex payload.
func (m *Mesh) ReplaceVertices(data []byte) {
	if m.vb == nil {
		m.vb = geometry.Alloc(geometry.BufferVertex, 0, geometry.ReadOnly)
	}
	m.vb.CopyFrom(data)
	m.revision++
}

// ReplaceIndices overwrites the index payload.
func (m *Mesh) ReplaceIndices(data []byte) {
	if m.ib == nil {
		m.ib = geometry.Alloc(geometry.BufferIndex, 0, geometry.ReadOnly)
	}
	m.ib.CopyFrom(data)
	m.revision++
}

// Revision counts overwrites of the vertex or index payload. Appends leave
// it unchanged.
func (m *Mesh) Revision() uint64 { return m.revision }

// NumVertices returns the number of whole vertices in the vertex buffer.
func (m *Mesh) NumVertices() int {
	stride := m.vertexType.Layout().SizeInBytes()
	if stride == 0 {
		return 0
	}
	return m.vb.Size() / stride
}

// NumIndices returns the number of whole indices in the index buffer.
func (m *Mesh) NumIndices() int {
	return geometry.NumIndices(m.ib, m.indexType)
}

// AddPrimitiveGroup appends a group. The group is not validated against
// the current index buffer.
func (m *Mesh) AddPrimitiveGroup(g geometry.PrimitiveGroup) {
	m.groups = append(m.groups, g)
}

// AddPrimitiveGroups appends groups in order.
func (m *Mesh) AddPrimitiveGroups(gs ...geometry.PrimitiveGroup) {
	m.groups = append(m.groups, gs...)
}

// NumPrimitiveGroups returns the number of groups.
func (m *Mesh) NumPrimitiveGroups() int { return len(m.groups) }

// PrimitiveGroupAt returns the i-th group, or nil when i is out of range.
// The returned pointer aliases the mesh's storage.
func (m *Mesh) PrimitiveGroupAt(i int) *geometry.PrimitiveGroup {
	if i < 0 || i >= len(m.groups) {
		return nil
	}
	return &m.groups[i]
}

// PrimitiveGroups returns a copy of the group list.
func (m *Mesh) PrimitiveGroups() []geometry.PrimitiveGroup {
	out := make([]geometry.PrimitiveGroup, len(m.groups))
	copy(out, m.groups)
	return out
}

// ValidateGroups reports the first group that does not fit the index buffer.
func (m *Mesh) ValidateGroups() error {
	n := m.NumIndices()
	for i, g := range m.groups {
		if !g.Fits(n) {
			return fmt.Errorf("%w: group %d %v exceeds %d indices", ErrGroupOutOfRange, i, g, n)
		}
	}
	return nil
}

// SetMaterial sets the material handle.
func (m *Mesh) SetMaterial(h material.Handle) { m.material = h }

// Material returns the material handle. The zero handle means no material.
func (m *Mesh) Material() material.Handle { return m.material }

// SetModelMatrix sets the model matrix. A local matrix is applied on top
// of the owning node's transform when the mesh is drawn.
func (m *Mesh) SetModelMatrix(local bool, model mgl32.Mat4) {
	m.local = local
	m.model = model
}

// ModelMatrix returns the model matrix.
func (m *Mesh) ModelMatrix() mgl32.Mat4 { return m.model }

// IsLocal reports whether the model matrix is local to the mesh.
func (m *Mesh) IsLocal() bool { return m.local }

// SetInstances sets the number of instances drawn per submission.
// Values above 1 mark the mesh for instanced rendering.
func (m *Mesh) SetInstances(n int) { m.instances = n }

// Instances returns the instance count set with SetInstances.
func (m *Mesh) Instances() int { return m.instances }

// String implements fmt.Stringer.
func (m *Mesh) String() string {
	return fmt.Sprintf("mesh %q (id %d, %d groups)", m.name, m.id, len(m.groups))
}
