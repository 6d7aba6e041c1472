// Package scene provides the node hierarchy that feeds the render service.
//
// A Node holds child nodes and components. Each frame the host calls
// Update and then, inside an open pass and batch of the render service,
// Render. Render visits active nodes depth first, composes the transform
// components of the path from the root into the service's world transform
// and lets every component stage its geometry.
//
// RenderComponent holds the static meshes of a node. A mesh is staged by
// the first Render after it was added and not again until it is re-added
// or the component is invalidated:
//
//	world := scene.NewWorld()
//	cube := scene.NewEntity("cube")
//	cube.RenderComponent().AddStaticMesh(mesh.NewBuilder().WithName("cube").Cube(1))
//	cube.TransformComponent().SetTranslation(mgl32.Vec3{0, 0, -5})
//	world.AddEntity(cube)
//	world.SetCamera(scene.NewPerspectiveCamera(45, 4.0/3.0, 0.1, 100))
//
//	svc.BeginPass(pass.RenderPassID)
//	svc.BeginRenderBatch("world")
//	world.Render(svc)
//	svc.EndRenderBatch()
//	svc.EndPass()
//	svc.Frame(ctx)
//
// The render.Service satisfies Renderer; tests can substitute their own.
package scene
