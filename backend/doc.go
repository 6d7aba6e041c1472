// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend defines the capability interface every graphics backend
// implements, and a registry for selecting one at runtime.
//
// A Backend creates buffers, shaders, textures and vertex arrays, and
// executes the render commands dispatched by the render package:
// BeginFrame, then per pass BeginPass, BindMaterial and Draw calls, EndPass,
// and finally EndFrame. Resources are addressed by typed ids; 0 is never a
// valid id.
//
// # Backend Registration
//
// Backends register a factory from init(). The headless backend is always
// registered on import of this package; the native backend registers when
// github.com/gogpu/g3d/backend/native is imported:
//
//	import _ "github.com/gogpu/g3d/backend/native"
//
// # Backend Selection
//
//	// Best available backend that initializes successfully.
//	b, err := backend.InitDefault()
//
//	// Or a specific backend by name.
//	b := backend.Get(backend.BackendHeadless)
//
// # Available Backends
//
//   - "headless": records every call; no GPU required
//   - "native": gogpu/wgpu HAL device supplied by the host application
package backend
