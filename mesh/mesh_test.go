package mesh

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
)

func TestNew_UniqueIDs(t *testing.T) {
	a := New("a", geometry.RenderVertex, geometry.UnsignedShort)
	b := New("b", geometry.RenderVertex, geometry.UnsignedShort)
	if a.ID() == b.ID() {
		t.Errorf("ids collide: %d", a.ID())
	}
	if a.ModelMatrix() != mgl32.Ident4() {
		t.Error("default model matrix is not identity")
	}
}

func TestAttach_AllocatesThenAppends(t *testing.T) {
	m := New("stream", geometry.RenderVertex, geometry.UnsignedShort)
	if m.VertexBuffer() != nil || m.IndexBuffer() != nil {
		t.Fatal("new mesh has buffers")
	}

	m.AttachVertices([]byte{1, 2})
	m.AttachVertices([]byte{3})
	if got := m.VertexBuffer().Data; len(got) != 3 || got[2] != 3 {
		t.Errorf("vertex data = %v, want [1 2 3]", got)
	}

	m.AttachIndices(geometry.EncodeIndices16([]uint16{0, 1}))
	m.AttachIndices(geometry.EncodeIndices16([]uint16{2}))
	if m.NumIndices() != 3 {
		t.Errorf("NumIndices() = %d, want 3", m.NumIndices())
	}
	if m.VertexBuffer().Size() != 3 {
		t.Error("AttachIndices touched the vertex buffer")
	}

	if m.Revision() != 0 {
		t.Errorf("Revision() after appends = %d, want 0", m.Revision())
	}

	m.ReplaceIndices(geometry.EncodeIndices16([]uint16{5}))
	if m.NumIndices() != 1 {
		t.Errorf("after ReplaceIndices NumIndices() = %d, want 1", m.NumIndices())
	}
	m.ReplaceVertices([]byte{9})
	if m.Revision() != 2 {
		t.Errorf("Revision() after two replaces = %d, want 2", m.Revision())
	}
}

// PrimitiveGroupAt returns nil past the end regardless of the order in
// which groups and buffers were added.
func TestPrimitiveGroupAt_Bounds(t *testing.T) {
	orders := []struct {
		name        string
		groupsFirst bool
		numGroups   int
	}{
		{"groups before buffers", true, 3},
		{"buffers before groups", false, 2},
		{"no groups", false, 0},
	}
	for _, tt := range orders {
		t.Run(tt.name, func(t *testing.T) {
			m := New("m", geometry.RenderVertex, geometry.UnsignedShort)
			addGroups := func() {
				for i := 0; i < tt.numGroups; i++ {
					m.AddPrimitiveGroup(geometry.NewPrimitiveGroup(geometry.UnsignedShort, 3, geometry.TriangleList, 3*i))
				}
			}
			if tt.groupsFirst {
				addGroups()
			}
			m.AttachIndices(geometry.EncodeIndices16(make([]uint16, 9)))
			if !tt.groupsFirst {
				addGroups()
			}

			if m.NumPrimitiveGroups() != tt.numGroups {
				t.Fatalf("NumPrimitiveGroups() = %d, want %d", m.NumPrimitiveGroups(), tt.numGroups)
			}
			for i := 0; i < tt.numGroups; i++ {
				g := m.PrimitiveGroupAt(i)
				if g == nil || g.Start != 3*i {
					t.Errorf("PrimitiveGroupAt(%d) = %v, want start %d", i, g, 3*i)
				}
			}
			for _, i := range []int{tt.numGroups, tt.numGroups + 1, -1} {
				if g := m.PrimitiveGroupAt(i); g != nil {
					t.Errorf("PrimitiveGroupAt(%d) = %v, want nil", i, g)
				}
			}
		})
	}
}

func TestValidateGroups(t *testing.T) {
	m := New("m", geometry.RenderVertex, geometry.UnsignedShort)
	m.AttachIndices(geometry.EncodeIndices16([]uint16{0, 1, 2}))
	m.AddPrimitiveGroups(
		geometry.NewPrimitiveGroup(geometry.UnsignedShort, 3, geometry.TriangleList, 0),
	)
	if err := m.ValidateGroups(); err != nil {
		t.Errorf("ValidateGroups() = %v, want nil", err)
	}
	m.AddPrimitiveGroup(geometry.NewPrimitiveGroup(geometry.UnsignedShort, 3, geometry.TriangleList, 2))
	if err := m.ValidateGroups(); !errors.Is(err, ErrGroupOutOfRange) {
		t.Errorf("ValidateGroups() = %v, want ErrGroupOutOfRange", err)
	}
}

func TestMaterialAndModel(t *testing.T) {
	lib := material.NewLibrary()
	h := lib.Create("m", material.TypeShader)
	m := New("m", geometry.ColorVertex, geometry.UnsignedByte)
	m.SetMaterial(h)
	if m.Material() != h {
		t.Errorf("Material() = %v, want %v", m.Material(), h)
	}
	tr := mgl32.Translate3D(1, 2, 3)
	m.SetModelMatrix(true, tr)
	if !m.IsLocal() || m.ModelMatrix() != tr {
		t.Error("SetModelMatrix(true, T) not stored")
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder().WithColor(mgl32.Vec3{1, 0, 0})

	tri := b.Triangle()
	if tri.NumVertices() != 3 || tri.NumIndices() != 3 || tri.NumPrimitiveGroups() != 1 {
		t.Errorf("Triangle() = %d verts, %d indices, %d groups; want 3/3/1",
			tri.NumVertices(), tri.NumIndices(), tri.NumPrimitiveGroups())
	}
	verts := geometry.UnpackRenderVerts(tri.VertexBuffer().Data)
	if verts[0].Color0 != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("vertex color = %v, want red", verts[0].Color0)
	}

	cube := b.WithName("box").Cube(2)
	if cube.Name() != "box" {
		t.Errorf("Name() = %q, want box", cube.Name())
	}
	if cube.NumVertices() != 24 || cube.NumIndices() != 36 {
		t.Errorf("Cube() = %d verts, %d indices; want 24/36", cube.NumVertices(), cube.NumIndices())
	}
	if err := cube.ValidateGroups(); err != nil {
		t.Errorf("Cube().ValidateGroups() = %v", err)
	}

	q := b.Quads([]mgl32.Vec4{{0, 0, 1, 1}, {1, 0, 1, 1}}, nil)
	if q.NumVertices() != 8 || q.NumIndices() != 12 {
		t.Errorf("Quads(2) = %d verts, %d indices; want 8/12", q.NumVertices(), q.NumIndices())
	}
	idx := geometry.DecodeIndices(q.IndexBuffer(), geometry.UnsignedShort)
	if idx[6] != 4 {
		t.Errorf("second quad first index = %d, want 4", idx[6])
	}

	if inst := b.Instanced(1, 16); inst.Instances() != 16 {
		t.Errorf("Instanced().Instances() = %d, want 16", inst.Instances())
	}
}
