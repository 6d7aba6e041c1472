package text_test

import (
	"context"
	"testing"

	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/pass"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/text"
)

var _ text.Stager = (*render.Service)(nil)

func TestTextInUIPass(t *testing.T) {
	hb := backend.NewHeadlessBackend()
	if err := hb.Init(); err != nil {
		t.Fatal(err)
	}
	svc, err := render.New(hb)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	fr, err := text.NewFontRenderer(svc.Library(), text.WithSize(14))
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()

	frame := func(s string) {
		t.Helper()
		if err := svc.BeginPass(pass.UIPassID); err != nil {
			t.Fatal(err)
		}
		if err := svc.BeginRenderBatch("hud"); err != nil {
			t.Fatal(err)
		}
		if err := fr.RenderText(8, 16, 1, s, svc); err != nil {
			t.Fatalf("RenderText() error = %v", err)
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

	frame("fps 60")
	if got := hb.Count(backend.OpDraw); got != 1 {
		t.Fatalf("draws = %d, want 1", got)
	}
	var textures int
	for _, c := range hb.Calls() {
		if c.Op == backend.OpCreateTexture {
			textures++
		}
	}
	if textures != 1 {
		t.Errorf("created %d textures, want the atlas only", textures)
	}

	frame("fps 59")
	if got := hb.Count(backend.OpDraw); got != 2 {
		t.Errorf("draws = %d, want 2", got)
	}
	if got := hb.Count(backend.OpReleaseVertexArray); got != 1 {
		t.Errorf("released %d vertex arrays, want the old box", got)
	}
	fr.Clear(svc)
}

func TestTextRebuiltWithinFrame(t *testing.T) {
	hb := backend.NewHeadlessBackend()
	if err := hb.Init(); err != nil {
		t.Fatal(err)
	}
	svc, err := render.New(hb)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	fr, err := text.NewFontRenderer(svc.Library())
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()

	if err := svc.BeginPass(pass.UIPassID); err != nil {
		t.Fatal(err)
	}
	if err := svc.BeginRenderBatch("hud"); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"loading", "ready"} {
		if err := fr.RenderText(0, 16, 7, s, svc); err != nil {
			t.Fatalf("RenderText(%q) error = %v", s, err)
		}
	}
	if err := svc.EndRenderBatch(); err != nil {
		t.Fatal(err)
	}
	if err := svc.EndPass(); err != nil {
		t.Fatal(err)
	}
	if got := hb.Count(backend.OpReleaseVertexArray); got != 0 {
		t.Fatalf("released %d vertex arrays before dispatch, want 0", got)
	}
	if err := svc.Frame(context.Background()); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	if got := svc.Stats().DispatchErrors; got != 0 {
		t.Errorf("DispatchErrors = %d, want 0", got)
	}
	if got := hb.Count(backend.OpDraw); got != 2 {
		t.Errorf("draws = %d, want 2", got)
	}
	if got := hb.Count(backend.OpReleaseVertexArray); got != 1 {
		t.Errorf("released %d vertex arrays after dispatch, want 1", got)
	}
}
