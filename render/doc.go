// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render stages meshes into render commands and dispatches them to
// a backend.
//
// A Service owns one frame's worth of per-pass command queues. Callers
// bracket staging with BeginPass/BeginRenderBatch and
// EndRenderBatch/EndPass, add meshes in between, and call Frame to execute
// every queued command:
//
//	svc, err := render.New(b)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	_ = svc.BeginPass(pass.RenderPassID)
//	_ = svc.BeginRenderBatch("scene")
//	_ = svc.AddMesh(cube, 1)
//	_ = svc.EndRenderBatch()
//	_ = svc.EndPass()
//
//	if err := svc.Frame(ctx); err != nil {
//	    return err
//	}
//
// # Staging
//
// Adding a mesh resolves its vertex and index buffers through a
// gpubuffer.Manager, creates one backend vertex array per mesh, and
// resolves its material to backend shader and texture ids. The resulting
// commands are appended to the active pass queue: a SetMaterial whenever
// the material differs from the one bound in the current batch, then one
// DrawPrimitives per primitive group, or a single DrawInstancedPrimitives
// for instanced meshes.
//
// A mesh that cannot be staged is skipped and logged; the rest of the batch
// is unaffected.
//
// # Dispatch
//
// Frame runs the passes in the order they were first begun during the
// frame. Each pass executes its commands in FIFO order and queues are
// cleared afterwards.
//
// Thread Safety: a Service is not safe for concurrent use. Scenes may be
// assembled concurrently, but staging and dispatch run on one goroutine.
package render
