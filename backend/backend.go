// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/g3d/material"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when no registered backend can be used.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrUnknownResource is returned for ids the backend did not create.
	ErrUnknownResource = errors.New("backend: unknown resource")

	// ErrNoActivePass is returned for draws and binds outside BeginPass/EndPass.
	ErrNoActivePass = errors.New("backend: no active pass")

	// ErrNoMaterial is returned for draws before any BindMaterial in the pass.
	ErrNoMaterial = errors.New("backend: no material bound")

	// ErrInvalidDescriptor is returned for empty or inconsistent descriptors.
	ErrInvalidDescriptor = errors.New("backend: invalid descriptor")
)

// BufferBackend is the buffer subset of Backend. The GPU buffer manager
// depends only on this subset.
type BufferBackend interface {
	// CreateBuffer creates a buffer initialized with desc.Data.
	CreateBuffer(desc BufferDesc) (BufferID, error)

	// UpdateBuffer overwrites the contents of a buffer.
	UpdateBuffer(id BufferID, data []byte) error

	// AppendToBuffer grows a buffer by data.
	AppendToBuffer(id BufferID, data []byte) error

	// ReleaseBuffer destroys a buffer. Unknown ids are ignored.
	ReleaseBuffer(id BufferID)
}

// Backend is the capability interface of a graphics backend.
//
// Backends are not required to be safe for concurrent use; the render
// package calls them from one goroutine.
type Backend interface {
	BufferBackend

	// Name returns the backend identifier (e.g., "headless", "native").
	Name() string

	// Init prepares the backend. It must be called before any other method.
	Init() error

	// Close releases all backend resources.
	Close()

	// CreateShader compiles a shader.
	CreateShader(label string, s *material.Shader) (ShaderID, error)

	// ReleaseShader destroys a shader. Unknown ids are ignored.
	ReleaseShader(id ShaderID)

	// CreateTexture uploads a texture.
	CreateTexture(label string, t *material.Texture) (TextureID, error)

	// ReleaseTexture destroys a texture. Unknown ids are ignored.
	ReleaseTexture(id TextureID)

	// CreateVertexArray binds vertex and index buffers with a layout.
	CreateVertexArray(desc VertexArrayDesc) (VertexArrayID, error)

	// ReleaseVertexArray destroys a vertex array. Unknown ids are ignored.
	ReleaseVertexArray(id VertexArrayID)

	// BeginFrame starts recording a frame.
	BeginFrame() error

	// BeginPass starts a render pass.
	BeginPass(desc PassDesc) error

	// BindMaterial makes a material current for subsequent draws.
	BindMaterial(b MaterialBinding) error

	// Draw draws primitive groups of a vertex array with the bound material.
	Draw(d DrawCall) error

	// EndPass finishes the current pass.
	EndPass() error

	// EndFrame submits the frame.
	EndFrame() error
}
