// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/pass"
)

// InvalidID is the zero value of every resource id.
const InvalidID = 0

// BufferID identifies a backend buffer.
type BufferID uint64

// ShaderID identifies a backend shader.
type ShaderID uint64

// TextureID identifies a backend texture.
type TextureID uint64

// VertexArrayID identifies a vertex array: a vertex buffer, an optional
// index buffer and the layout that reads them.
type VertexArrayID uint64

// BufferDesc describes a buffer to create.
type BufferDesc struct {
	Label  string
	Type   geometry.BufferType
	Access geometry.AccessType
	Data   []byte
}

// VertexArrayDesc describes a vertex array to create.
//
// Vertices and Indices carry CPU copies of the buffer contents for backends
// that rewrite geometry (for example to expand byte indices or fans).
type VertexArrayDesc struct {
	Label        string
	Layout       *geometry.VertexLayout
	VertexBuffer BufferID
	IndexBuffer  BufferID
	IndexType    geometry.IndexType
	Groups       []geometry.PrimitiveGroup
	Vertices     []byte
	Indices      []byte
}

// MaterialBinding is a material resolved to backend resources.
type MaterialBinding struct {
	Label      string
	Type       material.Type
	Shader     ShaderID
	Textures   []TextureID
	Colors     [material.NumColorSlots]mgl32.Vec4
	Parameters []material.Parameter
}

// TransformBlock holds the matrices of one draw.
type TransformBlock struct {
	Projection mgl32.Mat4
	View       mgl32.Mat4
	Model      mgl32.Mat4
	MVP        mgl32.Mat4
}

// NewTransformBlock returns a block with identity matrices.
func NewTransformBlock() TransformBlock {
	id := mgl32.Ident4()
	return TransformBlock{Projection: id, View: id, Model: id, MVP: id}
}

// Update recomputes MVP from the other matrices.
func (t *TransformBlock) Update() {
	t.MVP = t.Projection.Mul4(t.View).Mul4(t.Model)
}

// PassDesc describes a pass being started.
type PassDesc struct {
	ID         int
	Name       string
	Target     pass.RenderTarget
	States     pass.States
	Projection mgl32.Mat4
	View       mgl32.Mat4
}

// DrawCall draws groups of a vertex array. Instances is at least 1.
type DrawCall struct {
	MeshID      uint64
	VertexArray VertexArrayID
	Groups      []geometry.PrimitiveGroup
	Instances   int
	Model       mgl32.Mat4
}

// String implements fmt.Stringer.
func (d DrawCall) String() string {
	return fmt.Sprintf("draw(mesh %d, va %d, %d groups, %d instances)", d.MeshID, d.VertexArray, len(d.Groups), d.Instances)
}
