// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
)

// gpuBuffer is a HAL buffer with a CPU shadow of its contents. The shadow
// feeds vertex array creation and lets the buffer grow on append.
type gpuBuffer struct {
	buffer hal.Buffer
	label  string
	usage  gputypes.BufferUsage
	size   uint64
	shadow []byte
}

// gpuTexture is an uploaded texture and its default view.
type gpuTexture struct {
	texture hal.Texture
	view    hal.TextureView
}

func (t *gpuTexture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
	}
}

// vertexArray is de-indexed geometry ready for non-indexed draws.
type vertexArray struct {
	label  string
	buffer hal.Buffer
	layout gputypes.VertexBufferLayout
	ranges map[geometry.PrimitiveGroup]drawRange
}

func bufferUsage(t geometry.BufferType) gputypes.BufferUsage {
	switch t {
	case geometry.BufferVertex, geometry.BufferInstance:
		return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	case geometry.BufferIndex:
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	default:
		return gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	}
}

// createHALBuffer creates a buffer of at least len(data) bytes and uploads
// data padded to the copy alignment.
func (b *Backend) createHALBuffer(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, uint64, error) {
	size := uint64(align4(max(len(data), 4))) //nolint:gosec // len is non-negative
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create buffer %q: %w", label, err)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, padded(data))
	}
	return buf, size, nil
}

// CreateBuffer implements backend.BufferBackend.
func (b *Backend) CreateBuffer(desc backend.BufferDesc) (backend.BufferID, error) {
	if !b.initialized {
		return backend.InvalidID, backend.ErrNotInitialized
	}
	usage := bufferUsage(desc.Type)
	buf, size, err := b.createHALBuffer(desc.Label, usage, desc.Data)
	if err != nil {
		return backend.InvalidID, err
	}
	id := backend.BufferID(b.newID())
	b.buffers[id] = &gpuBuffer{
		buffer: buf,
		label:  desc.Label,
		usage:  usage,
		size:   size,
		shadow: append([]byte(nil), desc.Data...),
	}
	return id, nil
}

// UpdateBuffer implements backend.BufferBackend. A buffer too small for data
// is recreated.
func (b *Backend) UpdateBuffer(id backend.BufferID, data []byte) error {
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	buf, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", backend.ErrUnknownResource, id)
	}
	buf.shadow = append(buf.shadow[:0], data...)
	return b.upload(buf)
}

// AppendToBuffer implements backend.BufferBackend.
func (b *Backend) AppendToBuffer(id backend.BufferID, data []byte) error {
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	buf, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", backend.ErrUnknownResource, id)
	}
	buf.shadow = append(buf.shadow, data...)
	return b.upload(buf)
}

// upload writes the shadow of buf to the GPU, growing the buffer first
// when needed.
func (b *Backend) upload(buf *gpuBuffer) error {
	if uint64(len(buf.shadow)) > buf.size {
		nb, size, err := b.createHALBuffer(buf.label, buf.usage, buf.shadow)
		if err != nil {
			return err
		}
		b.device.DestroyBuffer(buf.buffer)
		buf.buffer = nb
		buf.size = size
		return nil
	}
	if len(buf.shadow) > 0 {
		b.queue.WriteBuffer(buf.buffer, 0, padded(buf.shadow))
	}
	return nil
}

// ReleaseBuffer implements backend.BufferBackend.
func (b *Backend) ReleaseBuffer(id backend.BufferID) {
	buf, ok := b.buffers[id]
	if !ok {
		return
	}
	delete(b.buffers, id)
	b.device.DestroyBuffer(buf.buffer)
}

// CreateShader implements backend.Backend. WGSL is compiled to SPIR-V with
// naga.
func (b *Backend) CreateShader(label string, s *material.Shader) (backend.ShaderID, error) {
	if !b.initialized {
		return backend.InvalidID, backend.ErrNotInitialized
	}
	if s == nil || s.Source[material.StageVertex] == "" {
		return backend.InvalidID, fmt.Errorf("%w: shader %q has no vertex source", backend.ErrInvalidDescriptor, label)
	}
	p, err := newShaderProgram(b.device, label, s)
	if err != nil {
		return backend.InvalidID, err
	}
	id := backend.ShaderID(b.newID())
	b.shaders[id] = p
	return id, nil
}

// ReleaseShader implements backend.Backend. Pipelines built from the shader
// stay cached; they no longer reference the modules once created.
func (b *Backend) ReleaseShader(id backend.ShaderID) {
	p, ok := b.shaders[id]
	if !ok {
		return
	}
	delete(b.shaders, id)
	p.destroy(b.device)
}

// CreateTexture implements backend.Backend. Every texture is uploaded as
// RGBA8.
func (b *Backend) CreateTexture(label string, t *material.Texture) (backend.TextureID, error) {
	if !b.initialized {
		return backend.InvalidID, backend.ErrNotInitialized
	}
	if t == nil || !t.Valid() {
		return backend.InvalidID, fmt.Errorf("%w: texture %q", backend.ErrInvalidDescriptor, label)
	}
	w, h := uint32(t.Width), uint32(t.Height) //nolint:gosec // validated positive
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return backend.InvalidID, fmt.Errorf("create texture %q: %w", label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return backend.InvalidID, fmt.Errorf("create texture view %q: %w", label, err)
	}
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		t.RGBA(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	id := backend.TextureID(b.newID())
	b.textures[id] = &gpuTexture{texture: tex, view: view}
	return id, nil
}

// ReleaseTexture implements backend.Backend.
func (b *Backend) ReleaseTexture(id backend.TextureID) {
	t, ok := b.textures[id]
	if !ok {
		return
	}
	delete(b.textures, id)
	t.destroy(b.device)
}

// CreateVertexArray implements backend.Backend. The indexed geometry of
// desc is expanded into a vertex buffer owned by the array; later changes
// to the source buffers need a new vertex array.
func (b *Backend) CreateVertexArray(desc backend.VertexArrayDesc) (backend.VertexArrayID, error) {
	if !b.initialized {
		return backend.InvalidID, backend.ErrNotInitialized
	}
	if desc.Layout == nil || desc.Layout.SizeInBytes() == 0 {
		return backend.InvalidID, fmt.Errorf("%w: vertex array %q has no layout", backend.ErrInvalidDescriptor, desc.Label)
	}
	vb, ok := b.buffers[desc.VertexBuffer]
	if !ok {
		return backend.InvalidID, fmt.Errorf("%w: vertex buffer %d", backend.ErrUnknownResource, desc.VertexBuffer)
	}
	vertices := desc.Vertices
	if vertices == nil {
		vertices = vb.shadow
	}

	indices := desc.Indices
	it := desc.IndexType
	switch {
	case desc.IndexBuffer != backend.InvalidID:
		ib, ok := b.buffers[desc.IndexBuffer]
		if !ok {
			return backend.InvalidID, fmt.Errorf("%w: index buffer %d", backend.ErrUnknownResource, desc.IndexBuffer)
		}
		if indices == nil {
			indices = ib.shadow
		}
	case indices == nil:
		indices, it = sequentialIndices(len(vertices) / desc.Layout.SizeInBytes())
	}

	expanded, ranges, err := deindex(vertices, desc.Layout.SizeInBytes(), indices, it, desc.Groups)
	if err != nil {
		return backend.InvalidID, fmt.Errorf("vertex array %q: %w", desc.Label, err)
	}
	buf, _, err := b.createHALBuffer(desc.Label, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, expanded)
	if err != nil {
		return backend.InvalidID, err
	}

	id := backend.VertexArrayID(b.newID())
	b.vertexArrays[id] = &vertexArray{
		label:  desc.Label,
		buffer: buf,
		layout: desc.Layout.GPULayout(),
		ranges: ranges,
	}
	return id, nil
}

// sequentialIndices returns the identity index list for n vertices.
func sequentialIndices(n int) ([]byte, geometry.IndexType) {
	idx := make([]uint16, min(n, 1<<16))
	for i := range idx {
		idx[i] = uint16(i) //nolint:gosec // bounded above
	}
	return geometry.EncodeIndices16(idx), geometry.UnsignedShort
}

// ReleaseVertexArray implements backend.Backend.
func (b *Backend) ReleaseVertexArray(id backend.VertexArrayID) {
	va, ok := b.vertexArrays[id]
	if !ok {
		return
	}
	delete(b.vertexArrays, id)
	b.device.DestroyBuffer(va.buffer)
}
