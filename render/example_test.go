// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render_test

import (
	"context"
	"fmt"

	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/mesh"
	"github.com/gogpu/g3d/pass"
	"github.com/gogpu/g3d/render"
)

// ExampleService stages a cube and an instanced cube into the main pass
// and dispatches them to the headless backend.
func ExampleService() {
	b := backend.NewHeadlessBackend()
	if err := b.Init(); err != nil {
		fmt.Println(err)
		return
	}
	svc, err := render.New(b)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer svc.Close()

	builder := mesh.NewBuilder()
	_ = svc.BeginPass(pass.RenderPassID)
	_ = svc.BeginRenderBatch("example")
	_ = svc.AddMesh(builder.Cube(1), 1)
	_ = svc.AddMesh(builder.Instanced(0.5, 8), 1)
	_ = svc.EndRenderBatch()
	_ = svc.EndPass()

	for _, c := range svc.Queue(pass.RenderPassID).Commands() {
		fmt.Println(c.Kind())
	}
	if err := svc.Frame(context.Background()); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("draws:", b.Count(backend.OpDraw))

	// Output:
	// SetMaterial
	// DrawPrimitives
	// DrawInstancedPrimitives
	// draws: 2
}
