// Package g3d is the root of a backend-agnostic 3D render-engine core.
//
// # Overview
//
// g3d turns a retained scene graph (nodes, entities, components, meshes and
// materials) into an ordered sequence of render commands that is batched per
// render pass and submitted through a backend capability interface. The same
// scene renders on the headless recording backend and on the gogpu/wgpu
// backend.
//
// # Packages
//
//   - geometry: buffer payloads, vertex layouts and primitive groups
//   - mesh: drawable geometry with a material handle and a model matrix
//   - material: shaders, textures and materials stored in a handle arena
//   - pass: render passes, render states and the pass table
//   - gpubuffer: deduplicating registry of backend buffers
//   - command: render command variants and per-pass FIFO queues
//   - render: staging and dispatch service
//   - scene: nodes, entities and components feeding the render service
//   - backend: backend interface and registry (headless, native)
//   - text: UI text boxes rendered from a glyph atlas
//   - profiling: named performance counters
//   - config: settings loaded from YAML or TOML
//
// # Quick Start
//
//	b := backend.NewHeadlessBackend()
//	_ = b.Init()
//	svc, _ := render.New(b)
//	defer svc.Close()
//
//	m := mesh.NewBuilder().Cube(1)
//	m.SetMaterial(svc.Library().Create("red", material.TypeFlat))
//
//	svc.BeginPass(pass.RenderPassID)
//	svc.BeginRenderBatch("b1")
//	svc.AddMesh(m, 0)
//	svc.EndRenderBatch()
//	svc.EndPass()
//	_ = svc.Frame(context.Background())
//
// # Logging
//
// g3d is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] logger shared by all sub-packages.
package g3d
