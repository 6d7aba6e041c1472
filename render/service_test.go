// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/command"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/gpubuffer"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/mesh"
	"github.com/gogpu/g3d/pass"
	"github.com/gogpu/g3d/profiling"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *backend.HeadlessBackend) {
	t.Helper()
	b := backend.NewHeadlessBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	svc, err := New(b, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(svc.Close)
	return svc, b
}

func begin(t *testing.T, svc *Service, id int) {
	t.Helper()
	if err := svc.BeginPass(id); err != nil {
		t.Fatalf("BeginPass(%d) error = %v", id, err)
	}
	if err := svc.BeginRenderBatch("test"); err != nil {
		t.Fatalf("BeginRenderBatch() error = %v", err)
	}
}

func end(t *testing.T, svc *Service) {
	t.Helper()
	if err := svc.EndRenderBatch(); err != nil {
		t.Fatalf("EndRenderBatch() error = %v", err)
	}
	if err := svc.EndPass(); err != nil {
		t.Fatalf("EndPass() error = %v", err)
	}
}

func triangleMesh() *mesh.Mesh {
	m := mesh.New("tri", geometry.RenderVertex, geometry.UnsignedShort)
	m.CreateVertexBuffer(geometry.PackRenderVerts(make([]geometry.RenderVert, 3)), geometry.ReadOnly)
	m.CreateIndexBuffer(geometry.EncodeIndices16([]uint16{0, 1, 2}), geometry.ReadOnly)
	m.AddPrimitiveGroup(geometry.NewPrimitiveGroup(geometry.UnsignedShort, 3, geometry.TriangleList, 0))
	return m
}

func TestNewNilBackend(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilBackend) {
		t.Errorf("New(nil) error = %v, want %v", err, ErrNilBackend)
	}
}

func TestStageSingleTriangle(t *testing.T) {
	svc, _ := newTestService(t)
	m := triangleMesh()

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(m, 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)

	q := svc.Queue(pass.RenderPassID)
	if got := q.CountKind(command.KindDrawPrimitives); got != 1 {
		t.Fatalf("DrawPrimitives count = %d, want 1", got)
	}
	if got := q.CountKind(command.KindDrawInstancedPrimitives); got != 0 {
		t.Errorf("DrawInstancedPrimitives count = %d, want 0", got)
	}
	var draw command.DrawPrimitives
	for _, c := range q.Commands() {
		if d, ok := c.(command.DrawPrimitives); ok {
			draw = d
		}
	}
	want := geometry.NewPrimitiveGroup(geometry.UnsignedShort, 3, geometry.TriangleList, 0)
	if draw.Primitive != want {
		t.Errorf("draw.Primitive = %v, want %v", draw.Primitive, want)
	}
	if draw.MeshID != m.ID() || draw.Group != 0 {
		t.Errorf("draw = %v, want mesh %d group 0", draw, m.ID())
	}
}

func TestMaterialBindPrecedesDraws(t *testing.T) {
	svc, b := newTestService(t)
	lib := svc.Library()
	matA := lib.Create("A", material.TypeFlat)
	matB := lib.Create("B", material.TypeFlat)

	m1 := triangleMesh()
	m1.SetMaterial(matA)
	m2 := triangleMesh()
	m2.SetMaterial(matB)

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMeshes([]*mesh.Mesh{m1, m2}, 1); err != nil {
		t.Fatalf("AddMeshes() error = %v", err)
	}
	end(t, svc)

	var kinds []string
	for _, c := range svc.Queue(pass.RenderPassID).Commands() {
		switch c := c.(type) {
		case command.SetMaterial:
			kinds = append(kinds, "bind:"+c.Name)
		case command.DrawPrimitives:
			kinds = append(kinds, "draw")
		}
	}
	want := []string{"bind:A", "draw", "bind:B", "draw"}
	if !slices.Equal(kinds, want) {
		t.Fatalf("queue = %v, want %v", kinds, want)
	}

	b.Reset()
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	var ops []string
	for _, c := range b.Calls() {
		switch c.Op {
		case backend.OpBindMaterial:
			ops = append(ops, "bind:"+c.Label)
		case backend.OpDraw:
			ops = append(ops, "draw")
		}
	}
	if !slices.Equal(ops, want) {
		t.Errorf("dispatch = %v, want %v", ops, want)
	}
	if got := svc.Stats().DispatchErrors; got != 0 {
		t.Errorf("DispatchErrors = %d, want 0", got)
	}
}

func TestSameMaterialBindsOncePerBatch(t *testing.T) {
	svc, _ := newTestService(t)

	begin(t, svc, pass.RenderPassID)
	for range 3 {
		if err := svc.AddMesh(triangleMesh(), 1); err != nil {
			t.Fatalf("AddMesh() error = %v", err)
		}
	}
	end(t, svc)
	begin(t, svc, pass.RenderPassID+1)
	if err := svc.AddMesh(triangleMesh(), 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)

	if got := svc.Queue(pass.RenderPassID).CountKind(command.KindSetMaterial); got != 1 {
		t.Errorf("main pass SetMaterial count = %d, want 1", got)
	}
	if got := svc.Queue(pass.UIPassID).CountKind(command.KindSetMaterial); got != 1 {
		t.Errorf("UI pass SetMaterial count = %d, want 1", got)
	}
}

func TestSkippedMeshes(t *testing.T) {
	svc, _ := newTestService(t)

	noGroups := mesh.New("empty", geometry.RenderVertex, geometry.UnsignedShort)
	noGroups.CreateVertexBuffer(make([]byte, geometry.RenderVertSize), geometry.ReadOnly)
	noGroups.CreateIndexBuffer(geometry.EncodeIndices16([]uint16{0}), geometry.ReadOnly)

	noIndices := mesh.New("noib", geometry.RenderVertex, geometry.UnsignedShort)
	noIndices.CreateVertexBuffer(make([]byte, geometry.RenderVertSize), geometry.ReadOnly)
	noIndices.AddPrimitiveGroup(geometry.NewPrimitiveGroup(geometry.UnsignedShort, 1, geometry.PointList, 0))

	outOfRange := triangleMesh()
	outOfRange.AddPrimitiveGroup(geometry.NewPrimitiveGroup(geometry.UnsignedShort, 3, geometry.TriangleList, 2))

	stale := triangleMesh()
	h := svc.Library().Create("gone", material.TypeFlat)
	svc.Library().Release(h)
	stale.SetMaterial(h)

	tests := []struct {
		name string
		mesh *mesh.Mesh
		want error
	}{
		{"nil", nil, ErrNilMesh},
		{"no groups", noGroups, ErrNoGroups},
		{"no indices", noIndices, ErrNoIndexData},
		{"group out of range", outOfRange, mesh.ErrGroupOutOfRange},
		{"stale material", stale, ErrStaleMaterial},
	}

	begin(t, svc, pass.RenderPassID)
	good := triangleMesh()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AddMesh(tt.mesh, 1)
			if !errors.Is(err, ErrMeshSkipped) || !errors.Is(err, tt.want) {
				t.Errorf("AddMesh() error = %v, want %v wrapping %v", err, ErrMeshSkipped, tt.want)
			}
		})
	}
	if err := svc.AddMesh(good, 1); err != nil {
		t.Fatalf("AddMesh(good) error = %v", err)
	}
	end(t, svc)

	q := svc.Queue(pass.RenderPassID)
	if got := q.CountKind(command.KindDrawPrimitives); got != 1 {
		t.Errorf("DrawPrimitives count = %d, want 1", got)
	}
	st := svc.Stats()
	if st.Skipped != uint64(len(tests)) || st.Staged != 1 {
		t.Errorf("Stats() = %+v, want %d skipped and 1 staged", st, len(tests))
	}
}

func TestAddMeshesJoinsErrors(t *testing.T) {
	svc, _ := newTestService(t)
	begin(t, svc, pass.RenderPassID)
	err := svc.AddMeshes([]*mesh.Mesh{nil, triangleMesh(), nil}, 1)
	end(t, svc)

	if !errors.Is(err, ErrNilMesh) {
		t.Errorf("AddMeshes() error = %v, want %v", err, ErrNilMesh)
	}
	if got := svc.Queue(pass.RenderPassID).CountKind(command.KindDrawPrimitives); got != 1 {
		t.Errorf("DrawPrimitives count = %d, want 1", got)
	}
}

func TestBackendFailureSkipsMesh(t *testing.T) {
	svc, b := newTestService(t)
	boom := errors.New("boom")
	b.FailOn(backend.OpCreateVertexArray, boom)

	m := triangleMesh()
	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(m, 1); !errors.Is(err, boom) {
		t.Fatalf("AddMesh() error = %v, want %v", err, boom)
	}
	if got := svc.Buffers().Len(); got != 0 {
		t.Errorf("Buffers().Len() after failure = %d, want 0", got)
	}
	if got := b.LiveBuffers(); got != 0 {
		t.Errorf("LiveBuffers() after failure = %d, want 0", got)
	}

	b.FailOn(backend.OpCreateVertexArray, nil)
	if err := svc.AddMesh(m, 1); err != nil {
		t.Fatalf("AddMesh() retry error = %v", err)
	}
	end(t, svc)

	if got := b.Count(backend.OpCreateBuffer); got != 4 {
		t.Errorf("CreateBuffer calls = %d, want 4", got)
	}
	if got := b.Count(backend.OpReleaseBuffer); got != 2 {
		t.Errorf("ReleaseBuffer calls = %d, want 2", got)
	}
}

func TestIndexBufferFailureReleasesVertexBuffer(t *testing.T) {
	svc, b := newTestService(t)
	m := triangleMesh()
	if _, err := svc.Buffers().CreateBuffer(bufferKey(m, "vb"), m.VertexBuffer()); err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	b.FailOn(backend.OpCreateBuffer, errors.New("boom"))

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(m, 1); !errors.Is(err, ErrMeshSkipped) {
		t.Fatalf("AddMesh() error = %v, want %v", err, ErrMeshSkipped)
	}
	end(t, svc)

	if _, ok := svc.Buffers().BufferByDesc(bufferKey(m, "vb")); ok {
		t.Error("vertex buffer still registered after the index buffer failed")
	}
	if got := b.LiveBuffers(); got != 0 {
		t.Errorf("LiveBuffers() = %d, want 0", got)
	}
}

func TestCloseReleasesOwnedBuffers(t *testing.T) {
	svc, b := newTestService(t)
	data := geometry.Alloc(geometry.BufferVertex, 16, geometry.ReadOnly)
	if _, err := svc.Buffers().CreateBuffer("loose", data); err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	svc.Close()
	if got := b.LiveBuffers(); got != 0 {
		t.Errorf("LiveBuffers() after Close = %d, want 0", got)
	}

	shared := gpubuffer.NewManager(b)
	svc2, err := New(b, WithBufferManager(shared))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := shared.CreateBuffer("shared", data); err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	svc2.Close()
	if got := shared.Len(); got != 1 {
		t.Errorf("shared manager Len() after Close = %d, want 1", got)
	}
}

func TestInstancedDraw(t *testing.T) {
	svc, b := newTestService(t)
	flagged := mesh.NewBuilder().Instanced(1, 4)
	plain := mesh.NewBuilder().Cube(1)

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(flagged, 1); err != nil {
		t.Fatalf("AddMesh(flagged) error = %v", err)
	}
	if err := svc.AddMesh(plain, 3); err != nil {
		t.Fatalf("AddMesh(plain) error = %v", err)
	}
	end(t, svc)

	var got []int
	for _, c := range svc.Queue(pass.RenderPassID).Commands() {
		if d, ok := c.(command.DrawInstancedPrimitives); ok {
			got = append(got, d.Instances)
		}
	}
	if !slices.Equal(got, []int{4, 3}) {
		t.Fatalf("instance counts = %v, want [4 3]", got)
	}

	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	for _, c := range b.Calls() {
		if c.Op == backend.OpDraw && c.Draw.Instances < 3 {
			t.Errorf("draw %v, want instanced", c.Draw)
		}
	}
}

func TestFramePassOrder(t *testing.T) {
	svc, b := newTestService(t)

	for _, id := range []int{pass.DebugPassID, pass.RenderPassID, pass.UIPassID, pass.DebugPassID} {
		begin(t, svc, id)
		if err := svc.AddMesh(triangleMesh(), 1); err != nil {
			t.Fatalf("AddMesh() error = %v", err)
		}
		end(t, svc)
	}
	if got, want := svc.PassOrder(), []int{pass.DebugPassID, pass.RenderPassID, pass.UIPassID}; !slices.Equal(got, want) {
		t.Fatalf("PassOrder() = %v, want %v", got, want)
	}

	b.Reset()
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	var passes []int
	draws := map[int]int{}
	current := -1
	for _, c := range b.Calls() {
		switch c.Op {
		case backend.OpBeginPass:
			passes = append(passes, c.Pass)
			current = c.Pass
		case backend.OpDraw:
			draws[current]++
		}
	}
	if want := []int{pass.DebugPassID, pass.RenderPassID, pass.UIPassID}; !slices.Equal(passes, want) {
		t.Errorf("dispatched passes = %v, want %v", passes, want)
	}
	if draws[pass.DebugPassID] != 2 {
		t.Errorf("debug pass draws = %d, want 2", draws[pass.DebugPassID])
	}

	ops := b.Ops()
	if ops[0] != backend.OpBeginFrame || ops[len(ops)-1] != backend.OpEndFrame {
		t.Errorf("Ops() = %v, want BeginFrame ... EndFrame", ops)
	}
	if svc.Queue(pass.RenderPassID).Len() != 0 || len(svc.PassOrder()) != 0 {
		t.Error("queues not reset after Frame()")
	}
}

func TestStagedMeshNotRedispatched(t *testing.T) {
	svc, b := newTestService(t)

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(triangleMesh(), 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	b.Reset()
	begin(t, svc, pass.RenderPassID)
	end(t, svc)
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if got := b.Count(backend.OpDraw); got != 0 {
		t.Errorf("second frame draws = %d, want 0", got)
	}
}

func TestResourcesReusedAcrossFrames(t *testing.T) {
	svc, b := newTestService(t)
	m := triangleMesh()

	for range 3 {
		begin(t, svc, pass.RenderPassID)
		if err := svc.AddMesh(m, 1); err != nil {
			t.Fatalf("AddMesh() error = %v", err)
		}
		end(t, svc)
		if err := svc.Frame(context.Background()); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}

	tests := []struct {
		op   backend.Op
		want int
	}{
		{backend.OpCreateBuffer, 2},
		{backend.OpCreateVertexArray, 1},
		{backend.OpCreateShader, 1},
		{backend.OpCreateTexture, 1},
		{backend.OpDraw, 3},
	}
	for _, tt := range tests {
		if got := b.Count(tt.op); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.op, got, tt.want)
		}
	}
	if _, ok := svc.Buffers().BufferByDesc(bufferKey(m, "vb")); !ok {
		t.Errorf("BufferByDesc(%q) missing", bufferKey(m, "vb"))
	}
}

func TestBracketErrors(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.BeginRenderBatch("x"); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("BeginRenderBatch() outside pass error = %v, want %v", err, ErrNoActivePass)
	}
	if err := svc.AddMesh(triangleMesh(), 1); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("AddMesh() outside pass error = %v, want %v", err, ErrNoActivePass)
	}
	if err := svc.BeginPass(42); !errors.Is(err, ErrUnknownPass) {
		t.Errorf("BeginPass(42) error = %v, want %v", err, ErrUnknownPass)
	}
	if err := svc.BeginPass(pass.RenderPassID); err != nil {
		t.Fatalf("BeginPass() error = %v", err)
	}
	if err := svc.AddMesh(triangleMesh(), 1); !errors.Is(err, ErrNoActiveBatch) {
		t.Errorf("AddMesh() outside batch error = %v, want %v", err, ErrNoActiveBatch)
	}
	if err := svc.BeginPass(pass.UIPassID); !errors.Is(err, ErrPassActive) {
		t.Errorf("nested BeginPass() error = %v, want %v", err, ErrPassActive)
	}
	if err := svc.Frame(context.Background()); !errors.Is(err, ErrPassActive) {
		t.Errorf("Frame() inside pass error = %v, want %v", err, ErrPassActive)
	}
	if err := svc.BeginRenderBatch("a"); err != nil {
		t.Fatalf("BeginRenderBatch() error = %v", err)
	}
	if err := svc.BeginRenderBatch("b"); !errors.Is(err, ErrBatchActive) {
		t.Errorf("nested BeginRenderBatch() error = %v, want %v", err, ErrBatchActive)
	}
	if err := svc.EndPass(); err != nil {
		t.Errorf("EndPass() with open batch error = %v", err)
	}
	if err := svc.EndRenderBatch(); !errors.Is(err, ErrNoActiveBatch) {
		t.Errorf("EndRenderBatch() error = %v, want %v", err, ErrNoActiveBatch)
	}
	if err := svc.EndPass(); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("EndPass() error = %v, want %v", err, ErrNoActivePass)
	}
}

func TestFrameCancelled(t *testing.T) {
	svc, b := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Frame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Frame() error = %v, want %v", err, context.Canceled)
	}
	if got := b.Count(backend.OpBeginFrame); got != 0 {
		t.Errorf("BeginFrame calls = %d, want 0", got)
	}
}

func TestUnregisteredPassSkippedAtDispatch(t *testing.T) {
	table := pass.NewDefaultTable()
	svc, b := newTestService(t, WithPassTable(table))

	begin(t, svc, pass.UIPassID)
	if err := svc.AddMesh(triangleMesh(), 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)
	table.Unregister(pass.UIPassID)

	b.Reset()
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if got := b.Count(backend.OpBeginPass); got != 0 {
		t.Errorf("BeginPass calls = %d, want 0", got)
	}
}

func TestShaderMaterial(t *testing.T) {
	svc, b := newTestService(t)
	h := svc.Library().Create("custom", material.TypeShader)
	mat := svc.Library().Get(h)
	mat.SetShader(BuiltinShader(geometry.RenderVertex))
	bad := material.NewTexture("bad", 4, 4)
	bad.Pixels = bad.Pixels[:3]
	mat.AddTexture(bad)

	m := triangleMesh()
	m.SetMaterial(h)
	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(m, 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)

	var labels []string
	for _, c := range b.Calls() {
		if c.Op == backend.OpCreateShader || c.Op == backend.OpCreateTexture {
			labels = append(labels, c.Label)
		}
	}
	want := []string{"matcustom", "tex" + material.DefaultTextureName}
	if !slices.Equal(labels, want) {
		t.Errorf("created = %v, want %v", labels, want)
	}
}

func TestCamerasAndWorldTransform(t *testing.T) {
	svc, b := newTestService(t)
	view := mgl32.Translate3D(0, 0, -5)
	proj := mgl32.Perspective(mgl32.DegToRad(60), 4.0/3.0, 0.1, 100)
	ortho := mgl32.Ortho2D(0, 800, 600, 0)
	svc.SetCamera(view, proj)
	svc.SetPassCamera(pass.UIPassID, mgl32.Ident4(), ortho)

	world := mgl32.Translate3D(1, 2, 3)
	svc.SetWorldTransform(world)
	m := triangleMesh()
	local := mgl32.Scale3D(2, 2, 2)
	m.SetModelMatrix(true, local)

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(m, 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)
	begin(t, svc, pass.UIPassID)
	end(t, svc)

	var draw command.DrawPrimitives
	for _, c := range svc.Queue(pass.RenderPassID).Commands() {
		if d, ok := c.(command.DrawPrimitives); ok {
			draw = d
		}
	}
	if !draw.HasModel || draw.Model != world.Mul4(local) {
		t.Errorf("draw.Model = %v, want %v", draw.Model, world.Mul4(local))
	}

	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	for _, c := range b.Calls() {
		if c.Op == backend.OpDraw && c.Draw.Model != world.Mul4(local) {
			t.Errorf("dispatched Model = %v, want %v", c.Draw.Model, world.Mul4(local))
		}
	}
	if got := svc.cameraFor(pass.UIPassID).projection; got != ortho {
		t.Errorf("UI projection = %v, want %v", got, ortho)
	}
	svc.ClearPassCamera(pass.UIPassID)
	if got := svc.cameraFor(pass.UIPassID).projection; got != proj {
		t.Errorf("UI projection after clear = %v, want %v", got, proj)
	}
}

func TestUpdateAndReleaseMesh(t *testing.T) {
	svc, b := newTestService(t)
	m := triangleMesh()

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(m, 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)

	m.ReplaceVertices(geometry.PackRenderVerts([]geometry.RenderVert{
		{Position: mgl32.Vec3{1, 1, 1}}, {}, {},
	}))
	if err := svc.UpdateMesh(m); err != nil {
		t.Fatalf("UpdateMesh() error = %v", err)
	}
	buf, _ := svc.Buffers().BufferByDesc(bufferKey(m, "vb"))
	data, ok := b.BufferData(buf.Handle)
	if !ok || !slices.Equal(data, m.VertexBuffer().Data) {
		t.Error("vertex buffer not updated")
	}
	if got := b.Count(backend.OpCreateVertexArray); got != 2 {
		t.Errorf("CreateVertexArray calls = %d, want 2", got)
	}

	svc.ReleaseMesh(m)
	if got := svc.Buffers().Len(); got != 0 {
		t.Errorf("Buffers().Len() = %d, want 0", got)
	}
	if got := b.LiveBuffers(); got != 0 {
		t.Errorf("LiveBuffers() = %d, want 0", got)
	}
	if err := svc.UpdateMesh(nil); !errors.Is(err, ErrNilMesh) {
		t.Errorf("UpdateMesh(nil) error = %v, want %v", err, ErrNilMesh)
	}
}

func TestDispatchErrorsCounted(t *testing.T) {
	svc, b := newTestService(t)
	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(triangleMesh(), 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)

	b.FailOn(backend.OpBindMaterial, errors.New("bind failed"))
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	// The draw after the failed bind reports ErrNoMaterial.
	if got := svc.Stats().DispatchErrors; got != 2 {
		t.Errorf("DispatchErrors = %d, want 2", got)
	}
}

func TestCountersPublished(t *testing.T) {
	c := profiling.NewCounters()
	c.Register(CounterDraws)
	c.Add(CounterDraws, 40)
	svc, _ := newTestService(t, WithCounters(c))

	if v, ok := c.Query(CounterFrames); !ok || v != 0 {
		t.Fatalf("frames counter = %d, %v, want 0, true", v, ok)
	}

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(triangleMesh(), 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	st := svc.Stats()
	want := map[string]uint64{
		CounterFrames:  1,
		CounterStaged:  st.Staged,
		CounterDraws:   st.Draws,
		CounterBinds:   st.Binds,
		CounterSkipped: st.Skipped,
	}
	for name, w := range want {
		if v, _ := c.Query(name); v != w {
			t.Errorf("%s = %d, want %d", name, v, w)
		}
	}
	if st.Draws != 1 {
		t.Errorf("Stats().Draws = %d, want 1", st.Draws)
	}
}

func shaderCreates(b *backend.HeadlessBackend, label string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Op == backend.OpCreateShader && c.Label == label {
			n++
		}
	}
	return n
}

func stageFrame(t *testing.T, svc *Service, ms ...*mesh.Mesh) {
	t.Helper()
	begin(t, svc, pass.RenderPassID)
	for _, m := range ms {
		if err := svc.AddMesh(m, 1); err != nil {
			t.Fatalf("AddMesh(%s) error = %v", m.Name(), err)
		}
	}
	end(t, svc)
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
}

func TestShaderMaterialNameReused(t *testing.T) {
	svc, b := newTestService(t)
	lib := svc.Library()

	first := lib.Create("m", material.TypeShader)
	lib.Get(first).SetShader(material.NewShader("a", "// a", "// a"))
	m := triangleMesh()
	m.SetMaterial(first)
	stageFrame(t, svc, m)

	if !svc.ReleaseMaterial(first) {
		t.Fatal("ReleaseMaterial() = false, want true")
	}
	if got := b.Count(backend.OpReleaseShader); got != 1 {
		t.Errorf("ReleaseShader calls = %d, want 1", got)
	}

	second := lib.Create("m", material.TypeShader)
	lib.Get(second).SetShader(material.NewShader("b", "// b", "// b"))
	m.SetMaterial(second)
	stageFrame(t, svc, m)

	if got := shaderCreates(b, "matm"); got != 2 {
		t.Errorf("CreateShader(matm) calls = %d, want 2", got)
	}
	if svc.Stats().DispatchErrors != 0 {
		t.Errorf("DispatchErrors = %d, want 0", svc.Stats().DispatchErrors)
	}
	if svc.ReleaseMaterial(svc.defaultMaterial) {
		t.Error("ReleaseMaterial(default) = true, want false")
	}
}

func TestShaderMaterialRecompiledOnChange(t *testing.T) {
	svc, b := newTestService(t)
	h := svc.Library().Create("live", material.TypeShader)
	mat := svc.Library().Get(h)
	mat.SetShader(material.NewShader("a", "// a", "// a"))
	m := triangleMesh()
	m.SetMaterial(h)

	stageFrame(t, svc, m)
	stageFrame(t, svc, m)
	if got := shaderCreates(b, "matlive"); got != 1 {
		t.Fatalf("CreateShader calls for an unchanged shader = %d, want 1", got)
	}

	mat.SetShader(material.NewShader("b", "// b", "// b"))
	stageFrame(t, svc, m)
	mat.Shader.SetSource(material.StageFragment, "// c")
	stageFrame(t, svc, m)
	if got := shaderCreates(b, "matlive"); got != 3 {
		t.Errorf("CreateShader calls = %d, want 3", got)
	}
	if got := b.Count(backend.OpReleaseShader); got != 2 {
		t.Errorf("ReleaseShader calls = %d, want 2", got)
	}
}

func TestReleasedMaterialShaderPruned(t *testing.T) {
	svc, b := newTestService(t)
	lib := svc.Library()
	h := lib.Create("gone", material.TypeShader)
	lib.Get(h).SetShader(material.NewShader("a", "// a", "// a"))
	m := triangleMesh()
	m.SetMaterial(h)
	stageFrame(t, svc, m)

	lib.Release(h)
	next := lib.Create("next", material.TypeShader)
	lib.Get(next).SetShader(material.NewShader("b", "// b", "// b"))
	m.SetMaterial(next)
	stageFrame(t, svc, m)

	if got := b.Count(backend.OpReleaseShader); got != 1 {
		t.Errorf("ReleaseShader calls = %d, want the released material's shader", got)
	}
}

func TestGrownMeshSynced(t *testing.T) {
	svc, b := newTestService(t)
	m := triangleMesh()
	stageFrame(t, svc, m)

	m.AttachVertices(geometry.PackRenderVerts(make([]geometry.RenderVert, 3)))
	m.AttachIndices(geometry.EncodeIndices16([]uint16{3, 4, 5}))
	m.AddPrimitiveGroup(geometry.NewPrimitiveGroup(geometry.UnsignedShort, 3, geometry.TriangleList, 3))
	stageFrame(t, svc, m)

	for _, suffix := range []string{"vb", "ib"} {
		buf, ok := svc.Buffers().BufferByDesc(bufferKey(m, suffix))
		if !ok {
			t.Fatalf("BufferByDesc(%s) missing", suffix)
		}
		want := m.VertexBuffer().Data
		if suffix == "ib" {
			want = m.IndexBuffer().Data
		}
		data, _ := b.BufferData(buf.Handle)
		if !slices.Equal(data, want) {
			t.Errorf("%s backend data = %d bytes, want %d", suffix, len(data), len(want))
		}
		if buf.Size != len(want) {
			t.Errorf("%s Size = %d, want %d", suffix, buf.Size, len(want))
		}
	}

	tests := []struct {
		op   backend.Op
		want int
	}{
		{backend.OpAppendToBuffer, 2},
		{backend.OpUpdateBuffer, 0},
		{backend.OpCreateVertexArray, 2},
		{backend.OpReleaseVertexArray, 1},
		{backend.OpDraw, 3},
	}
	for _, tt := range tests {
		if got := b.Count(tt.op); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.op, got, tt.want)
		}
	}

	m.ReplaceIndices(geometry.EncodeIndices16([]uint16{2, 1, 0, 5, 4, 3}))
	stageFrame(t, svc, m)
	if got := b.Count(backend.OpUpdateBuffer); got != 2 {
		t.Errorf("UpdateBuffer calls after replace = %d, want 2", got)
	}
	if got := b.Count(backend.OpCreateVertexArray); got != 3 {
		t.Errorf("CreateVertexArray calls after replace = %d, want 3", got)
	}
	if svc.Stats().DispatchErrors != 0 {
		t.Errorf("DispatchErrors = %d, want 0", svc.Stats().DispatchErrors)
	}
}

func TestReleaseMeshDeferredUntilDispatch(t *testing.T) {
	svc, b := newTestService(t)
	m := triangleMesh()

	begin(t, svc, pass.RenderPassID)
	if err := svc.AddMesh(m, 1); err != nil {
		t.Fatalf("AddMesh() error = %v", err)
	}
	end(t, svc)
	svc.ReleaseMesh(m)
	if got := b.Count(backend.OpReleaseVertexArray); got != 0 {
		t.Fatalf("vertex array released with its draw still queued")
	}

	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if got := svc.Stats().DispatchErrors; got != 0 {
		t.Errorf("DispatchErrors = %d, want 0", got)
	}
	ops := b.Ops()
	draw := slices.Index(ops, backend.OpDraw)
	release := slices.Index(ops, backend.OpReleaseVertexArray)
	if draw < 0 || release < draw {
		t.Errorf("ops = %v, want Draw before ReleaseVertexArray", ops)
	}

	svc.ReleaseMesh(triangleMesh())
	stageFrame(t, svc)
	if got := b.Count(backend.OpReleaseVertexArray); got != 1 {
		t.Errorf("ReleaseVertexArray calls = %d, want 1", got)
	}
}
