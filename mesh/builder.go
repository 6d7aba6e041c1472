package mesh

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/geometry"
)

var builderSeq atomic.Uint64

// Builder creates procedural meshes in the RenderVert layout with
// uint16 indices and one triangle-list group.
type Builder struct {
	color  mgl32.Vec3
	access geometry.AccessType
	name   string
}

// NewBuilder returns a builder producing white, read-only meshes.
func NewBuilder() *Builder {
	return &Builder{
		color:  mgl32.Vec3{1, 1, 1},
		access: geometry.ReadOnly,
	}
}

// WithColor sets the vertex color of subsequent meshes.
func (b *Builder) WithColor(c mgl32.Vec3) *Builder {
	b.color = c
	return b
}

// WithAccess sets the buffer access type of subsequent meshes.
func (b *Builder) WithAccess(a geometry.AccessType) *Builder {
	b.access = a
	return b
}

// WithName sets the name of the next mesh. Unnamed meshes get a
// generated name.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) nextName(kind string) string {
	if b.name != "" {
		n := b.name
		b.name = ""
		return n
	}
	return fmt.Sprintf("%s%d", kind, builderSeq.Add(1))
}

func (b *Builder) build(kind string, verts []geometry.RenderVert, indices []uint16) *Mesh {
	m := New(b.nextName(kind), geometry.RenderVertex, geometry.UnsignedShort)
	m.CreateVertexBuffer(geometry.PackRenderVerts(verts), b.access)
	m.CreateIndexBuffer(geometry.EncodeIndices16(indices), b.access)
	m.AddPrimitiveGroup(geometry.NewPrimitiveGroup(geometry.UnsignedShort, len(indices), geometry.TriangleList, 0))
	return m
}

// Triangle returns a unit triangle in the XY plane.
func (b *Builder) Triangle() *Mesh {
	n := mgl32.Vec3{0, 0, 1}
	verts := []geometry.RenderVert{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, Color0: b.color, Tex0: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, Color0: b.color, Tex0: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0, 0.5, 0}, Normal: n, Color0: b.color, Tex0: mgl32.Vec2{0.5, 1}},
	}
	return b.build("triangle", verts, []uint16{0, 1, 2})
}

// Quad returns a w by h rectangle in the XY plane with its lower-left
// corner at (x, y).
func (b *Builder) Quad(x, y, w, h float32) *Mesh {
	verts, indices := b.quadVerts(x, y, w, h, mgl32.Vec4{0, 0, 1, 1}, 0)
	return b.build("quad", verts, indices)
}

// quadVerts returns four vertices and six indices for a rectangle whose
// texture coordinates span uv (u0, v0, u1, v1). base offsets the indices.
func (b *Builder) quadVerts(x, y, w, h float32, uv mgl32.Vec4, base uint16) ([]geometry.RenderVert, []uint16) {
	n := mgl32.Vec3{0, 0, 1}
	verts := []geometry.RenderVert{
		{Position: mgl32.Vec3{x, y, 0}, Normal: n, Color0: b.color, Tex0: mgl32.Vec2{uv[0], uv[3]}},
		{Position: mgl32.Vec3{x + w, y, 0}, Normal: n, Color0: b.color, Tex0: mgl32.Vec2{uv[2], uv[3]}},
		{Position: mgl32.Vec3{x + w, y + h, 0}, Normal: n, Color0: b.color, Tex0: mgl32.Vec2{uv[2], uv[1]}},
		{Position: mgl32.Vec3{x, y + h, 0}, Normal: n, Color0: b.color, Tex0: mgl32.Vec2{uv[0], uv[1]}},
	}
	indices := []uint16{base, base + 1, base + 2, base, base + 2, base + 3}
	return verts, indices
}

// Quads returns one mesh holding a textured rectangle per rect. Each rect
// is (x, y, w, h) and each uv is (u0, v0, u1, v1).
func (b *Builder) Quads(rects, uvs []mgl32.Vec4) *Mesh {
	verts := make([]geometry.RenderVert, 0, 4*len(rects))
	indices := make([]uint16, 0, 6*len(rects))
	for i, r := range rects {
		uv := mgl32.Vec4{0, 0, 1, 1}
		if i < len(uvs) {
			uv = uvs[i]
		}
		v, idx := b.quadVerts(r[0], r[1], r[2], r[3], uv, uint16(len(verts))) //nolint:gosec // bounded by uint16 index type
		verts = append(verts, v...)
		indices = append(indices, idx...)
	}
	return b.build("quads", verts, indices)
}

// Cube returns an axis-aligned cube centered on the origin.
func (b *Builder) Cube(size float32) *Mesh {
	s := size / 2
	faces := []struct {
		normal mgl32.Vec3
		corner [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{s, -s, -s}, {-s, -s, -s}, {-s, s, -s}, {s, s, -s}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{s, -s, s}, {s, -s, -s}, {s, s, -s}, {s, s, s}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {-s, -s, s}, {-s, s, s}, {-s, s, -s}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-s, s, s}, {s, s, s}, {s, s, -s}, {-s, s, -s}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {s, -s, -s}, {s, -s, s}, {-s, -s, s}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	verts := make([]geometry.RenderVert, 0, 24)
	indices := make([]uint16, 0, 36)
	for _, f := range faces {
		base := uint16(len(verts)) //nolint:gosec // 24 vertices
		for i, p := range f.corner {
			verts = append(verts, geometry.RenderVert{Position: p, Normal: f.normal, Color0: b.color, Tex0: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return b.build("cube", verts, indices)
}

// Instanced returns a cube marked for instanced rendering with n instances.
func (b *Builder) Instanced(size float32, n int) *Mesh {
	m := b.Cube(size)
	m.SetInstances(n)
	return m
}
