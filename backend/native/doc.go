// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native provides a GPU rendering backend using gogpu/wgpu.
//
// The backend does not own a GPU device. The host application shares one
// through a gpucontext.DeviceProvider that also exposes its HAL device and
// queue (HalDevice() any and HalQueue() any):
//
//	b := native.New(provider, native.WithSize(1280, 720))
//	if err := b.Init(); err != nil {
//		// fall back to another backend
//	}
//	svc, err := render.New(b)
//
// Importing the package registers the "native" backend. Registry instances
// use the provider set with SetDeviceProvider.
//
// # Geometry
//
// Index buffers are expanded on the CPU when a vertex array is created.
// Each primitive group occupies a contiguous range of the expanded buffer
// and is drawn with a non-indexed Draw. Triangle fans become triangle
// lists.
//
// # Shaders
//
// Material shaders are WGSL, compiled to SPIR-V with naga. Every pipeline
// shares one bind group layout: a uniform block at group 0 binding 0
// holding the MVP matrix and the diffuse color. Render pipelines are cached
// by an FNV hash of the shader, vertex layout, primitive and pass states.
//
// # Frames
//
// EndFrame submits the frame and waits on a fence. With WithReadback the
// default surface is copied to CPU memory and available from LastFrame.
package native
