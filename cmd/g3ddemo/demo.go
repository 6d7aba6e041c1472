package main

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/config"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/mesh"
	"github.com/gogpu/g3d/pass"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/text"
)

const frameTime = 1.0 / 60

// spinner rotates its entity about an axis on every update.
type spinner struct {
	transform *scene.TransformComponent
	axis      mgl32.Vec3
	speed     float32 // radians per second
}

func (s *spinner) Type() scene.ComponentType   { return scene.ComponentUser }
func (s *spinner) Update(dt float64)           { s.transform.Rotate(s.speed*float32(dt), s.axis) }
func (s *spinner) Render(scene.Renderer) error { return nil }

type demo struct {
	svc    *render.Service
	world  *scene.World
	text   *text.FontRenderer
	height int
}

func newDemo(svc *render.Service, s config.Settings) (*demo, error) {
	w := scene.NewWorld()
	cam := scene.NewPerspectiveCamera(s.Camera.FOV, float32(s.Width)/float32(s.Height), s.Camera.Near, s.Camera.Far)
	cam.LookAt(mgl32.Vec3(s.Camera.Eye), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	w.SetCamera(cam)

	lib := svc.Library()
	b := mesh.NewBuilder()
	for i := range s.Demo.Cubes {
		e := scene.NewEntity(fmt.Sprintf("cube%d", i))
		x := float32(i) - float32(s.Demo.Cubes-1)/2
		e.TransformComponent().SetTranslation(mgl32.Vec3{1.5 * x, 0, 0})
		e.AddComponent(&spinner{
			transform: e.TransformComponent(),
			axis:      mgl32.Vec3{0, 1, 0},
			speed:     0.5 + 0.25*float32(i),
		})

		h := lib.Create(e.Name(), material.TypeFlat)
		lib.Get(h).SetColor(material.Diffuse, palette(i, s.Demo.Cubes))
		m := b.WithName(e.Name()).Cube(1)
		m.SetMaterial(h)
		e.RenderComponent().AddStaticMesh(m)
		w.AddEntity(e)
	}
	if s.Demo.Instances > 0 {
		e := scene.NewEntity("instanced")
		e.TransformComponent().SetTranslation(mgl32.Vec3{0, -1.5, 0})
		e.RenderComponent().AddStaticMesh(b.WithName("instanced").Instanced(0.25, s.Demo.Instances))
		w.AddEntity(e)
	}

	fr, err := text.NewFontRenderer(lib,
		text.WithSize(s.Text.Size),
		text.WithAtlasSize(s.Text.AtlasSize, s.Text.AtlasSize),
		text.WithColor(mgl32.Vec4(s.Text.Color)),
		text.WithName("hud"),
	)
	if err != nil {
		return nil, err
	}
	svc.SetPassCamera(pass.UIPassID, mgl32.Ident4(),
		mgl32.Ortho(0, float32(s.Width), 0, float32(s.Height), -1, 1))

	return &demo{svc: svc, world: w, text: fr, height: s.Height}, nil
}

func (d *demo) frame(ctx context.Context, i int) error {
	d.world.Update(frameTime)
	d.world.Invalidate()
	if err := d.pass(pass.RenderPassID, "world", func() error {
		return d.world.Render(d.svc)
	}); err != nil {
		return err
	}

	label := fmt.Sprintf("frame %d", i)
	if err := d.pass(pass.UIPassID, "hud", func() error {
		return d.text.RenderText(8, d.height-24, 1, label, d.svc)
	}); err != nil {
		return err
	}
	return d.svc.Frame(ctx)
}

// pass stages one batch into pass id. The pass is closed even when
// staging fails.
func (d *demo) pass(id int, batch string, stage func() error) error {
	if err := d.svc.BeginPass(id); err != nil {
		return err
	}
	if err := d.svc.BeginRenderBatch(batch); err != nil {
		return err
	}
	stageErr := stage()
	if err := d.svc.EndRenderBatch(); err != nil {
		return err
	}
	if err := d.svc.EndPass(); err != nil {
		return err
	}
	return stageErr
}

func (d *demo) close() {
	d.text.Clear(d.svc)
	d.text.Close()
}

// palette spreads n colors around a cosine color wheel.
func palette(i, n int) mgl32.Vec4 {
	t := float64(i) / float64(max(n, 1))
	c := func(phase float64) float32 {
		return float32(0.5 + 0.5*math.Cos(2*math.Pi*(t+phase)))
	}
	return mgl32.Vec4{c(0), c(1.0 / 3), c(2.0 / 3), 1}
}
