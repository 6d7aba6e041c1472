package scene_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/mesh"
	"github.com/gogpu/g3d/pass"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/scene"
)

var _ scene.Renderer = (*render.Service)(nil)

func renderFrame(t *testing.T, svc *render.Service, w *scene.World) {
	t.Helper()
	if err := svc.BeginPass(pass.RenderPassID); err != nil {
		t.Fatal(err)
	}
	if err := svc.BeginRenderBatch("world"); err != nil {
		t.Fatal(err)
	}
	if err := w.Render(svc); err != nil {
		t.Fatalf("World.Render() error = %v", err)
	}
	if err := svc.EndRenderBatch(); err != nil {
		t.Fatal(err)
	}
	if err := svc.EndPass(); err != nil {
		t.Fatal(err)
	}
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
}

// TestStaticMeshStagedOnce checks that a static mesh drained by one cycle
// produces no commands in the next unless re-added.
func TestStaticMeshStagedOnce(t *testing.T) {
	hb := backend.NewHeadlessBackend()
	if err := hb.Init(); err != nil {
		t.Fatal(err)
	}
	svc, err := render.New(hb)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	w := scene.NewWorld()
	e := scene.NewEntity("tri")
	e.TransformComponent().SetTranslation(mgl32.Vec3{0, 0, -2})
	e.RenderComponent().AddStaticMesh(mesh.NewBuilder().Triangle())
	w.AddEntity(e)
	w.SetCamera(scene.NewPerspectiveCamera(45, 1, 0.1, 10))

	renderFrame(t, svc, w)
	if got := hb.Count(backend.OpDraw); got != 1 {
		t.Fatalf("first frame draws = %d, want 1", got)
	}
	draws := hb.Calls()
	last := draws[len(draws)-1]
	for _, c := range draws {
		if c.Op == backend.OpDraw {
			last = c
		}
	}
	if got := last.Draw.Model.Col(3).Vec3(); !got.ApproxEqual(mgl32.Vec3{0, 0, -2}) {
		t.Errorf("draw model translation = %v, want (0, 0, -2)", got)
	}

	renderFrame(t, svc, w)
	if got := hb.Count(backend.OpDraw); got != 1 {
		t.Errorf("second frame re-drew the mesh: draws = %d, want 1", got)
	}

	e.RenderComponent().AddStaticMesh(mesh.NewBuilder().Quad(0, 0, 1, 1))
	renderFrame(t, svc, w)
	if got := hb.Count(backend.OpDraw); got != 2 {
		t.Errorf("after re-add draws = %d, want 2", got)
	}
}

func TestMeshesKeptOutsideBatch(t *testing.T) {
	hb := backend.NewHeadlessBackend()
	if err := hb.Init(); err != nil {
		t.Fatal(err)
	}
	svc, err := render.New(hb)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	rc := scene.NewRenderComponent()
	rc.AddStaticMesh(mesh.NewBuilder().Triangle())

	if err := rc.Render(svc); !errors.Is(err, render.ErrNoActivePass) {
		t.Fatalf("Render() outside a pass error = %v, want %v", err, render.ErrNoActivePass)
	}
	if rc.Pending() != 1 {
		t.Fatalf("Pending() after Render outside a pass = %d, want 1", rc.Pending())
	}

	if err := svc.BeginPass(pass.RenderPassID); err != nil {
		t.Fatal(err)
	}
	if err := rc.Render(svc); !errors.Is(err, render.ErrNoActiveBatch) {
		t.Fatalf("Render() outside a batch error = %v, want %v", err, render.ErrNoActiveBatch)
	}
	if rc.Pending() != 1 {
		t.Fatalf("Pending() after Render outside a batch = %d, want 1", rc.Pending())
	}

	if err := svc.BeginRenderBatch("world"); err != nil {
		t.Fatal(err)
	}
	if err := rc.Render(svc); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if rc.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", rc.Pending())
	}
	if err := svc.EndRenderBatch(); err != nil {
		t.Fatal(err)
	}
	if err := svc.EndPass(); err != nil {
		t.Fatal(err)
	}
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := hb.Count(backend.OpDraw); got != 1 {
		t.Errorf("draws = %d, want 1", got)
	}
}
