// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/pass"
)

// fenceTimeout bounds the wait for a submitted frame.
const fenceTimeout = 5 * time.Second

// targetKey identifies a render target by size and format.
type targetKey struct {
	width, height int
	format        gputypes.TextureFormat
}

// renderTarget is a color attachment with a depth/stencil attachment of
// the same size.
type renderTarget struct {
	width, height uint32
	color         hal.Texture
	colorView     hal.TextureView
	depth         hal.Texture
	depthView     hal.TextureView
}

func (t *renderTarget) destroy(device hal.Device) {
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
	}
	if t.depth != nil {
		device.DestroyTexture(t.depth)
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
	}
	if t.color != nil {
		device.DestroyTexture(t.color)
	}
}

// frameState is the encoder of the frame being recorded and the per-draw
// resources to free once it completes.
type frameState struct {
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	desc    backend.PassDesc

	bound       backend.MaterialBinding
	hasMaterial bool

	// drawn is set once the default target has been rendered to.
	drawn bool

	uniforms   []hal.Buffer
	bindGroups []hal.BindGroup
}

// release destroys the per-draw resources of the frame.
func (f *frameState) release(device hal.Device) {
	for _, bg := range f.bindGroups {
		device.DestroyBindGroup(bg)
	}
	for _, buf := range f.uniforms {
		device.DestroyBuffer(buf)
	}
	f.bindGroups = nil
	f.uniforms = nil
}

// discard abandons the frame without submitting it.
func (f *frameState) discard(device hal.Device) {
	if f.pass != nil {
		f.pass.End()
		f.pass = nil
	}
	f.encoder.DiscardEncoding()
	f.release(device)
}

// BeginFrame implements backend.Backend.
func (b *Backend) BeginFrame() error {
	if !b.initialized {
		return backend.ErrNotInitialized
	}
	if b.frame != nil {
		return ErrFrameActive
	}
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "g3d_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("g3d_frame"); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}
	b.frame = &frameState{encoder: encoder}
	return nil
}

// target returns the render target for t, creating it on first use.
func (b *Backend) target(t pass.RenderTarget) (*renderTarget, bool, error) {
	key := targetKey{width: t.Width, height: t.Height, format: t.Format}
	isDefault := t.IsDefault()
	if isDefault {
		key = targetKey{width: b.width, height: b.height, format: b.format}
	}
	if key.format == gputypes.TextureFormatUndefined {
		key.format = b.format
	}
	if key.width <= 0 || key.height <= 0 {
		return nil, false, fmt.Errorf("%w: target %dx%d", ErrInvalidDimensions, key.width, key.height)
	}
	if rt, ok := b.targets[key]; ok {
		return rt, isDefault, nil
	}
	rt, err := b.createTarget(key)
	if err != nil {
		return nil, false, err
	}
	b.targets[key] = rt
	return rt, isDefault, nil
}

func (b *Backend) createTarget(key targetKey) (*renderTarget, error) {
	w, h := uint32(key.width), uint32(key.height) //nolint:gosec // validated positive
	rt := &renderTarget{width: w, height: h}
	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	var err error
	rt.color, err = b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "g3d_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        key.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create color target: %w", err)
	}
	rt.colorView, err = b.device.CreateTextureView(rt.color, &hal.TextureViewDescriptor{
		Label:         "g3d_color_view",
		Format:        key.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		rt.destroy(b.device)
		return nil, fmt.Errorf("create color view: %w", err)
	}
	rt.depth, err = b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "g3d_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		rt.destroy(b.device)
		return nil, fmt.Errorf("create depth target: %w", err)
	}
	rt.depthView, err = b.device.CreateTextureView(rt.depth, &hal.TextureViewDescriptor{
		Label:         "g3d_depth_view",
		Format:        depthFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		rt.destroy(b.device)
		return nil, fmt.Errorf("create depth view: %w", err)
	}
	return rt, nil
}

func loadOp(clear bool) gputypes.LoadOp {
	if clear {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

// BeginPass implements backend.Backend.
func (b *Backend) BeginPass(desc backend.PassDesc) error {
	if b.frame == nil {
		return ErrNoFrame
	}
	if b.frame.pass != nil {
		return ErrPassActive
	}
	rt, isDefault, err := b.target(desc.Target)
	if err != nil {
		return err
	}
	clear := desc.States.Clear
	b.frame.pass = b.frame.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: desc.Name,
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       rt.colorView,
				LoadOp:     clear.LoadOp(),
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clear.GPUColor(),
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              rt.depthView,
			DepthLoadOp:       loadOp(clear.Flags&pass.ClearDepth != 0),
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   clear.Depth,
			StencilLoadOp:     loadOp(clear.Flags&pass.ClearStencil != 0),
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	b.frame.desc = desc
	b.frame.hasMaterial = false
	if isDefault {
		b.frame.drawn = true
	}
	return nil
}

// BindMaterial implements backend.Backend.
func (b *Backend) BindMaterial(m backend.MaterialBinding) error {
	if b.frame == nil || b.frame.pass == nil {
		return backend.ErrNoActivePass
	}
	if _, ok := b.shaders[m.Shader]; !ok {
		return fmt.Errorf("%w: shader %d", backend.ErrUnknownResource, m.Shader)
	}
	b.frame.bound = m
	b.frame.hasMaterial = true
	return nil
}

// Draw implements backend.Backend. Every group is drawn from its own range
// of the de-indexed vertex buffer.
func (b *Backend) Draw(d backend.DrawCall) error {
	f := b.frame
	if f == nil || f.pass == nil {
		return backend.ErrNoActivePass
	}
	if !f.hasMaterial {
		return backend.ErrNoMaterial
	}
	va, ok := b.vertexArrays[d.VertexArray]
	if !ok {
		return fmt.Errorf("%w: vertex array %d", backend.ErrUnknownResource, d.VertexArray)
	}
	shader, ok := b.shaders[f.bound.Shader]
	if !ok {
		return fmt.Errorf("%w: shader %d", backend.ErrUnknownResource, f.bound.Shader)
	}
	ranges := make([]drawRange, 0, len(d.Groups))
	for _, g := range d.Groups {
		r, ok := va.ranges[g]
		if !ok {
			return fmt.Errorf("%w: %s in %q", ErrGroupNotUploaded, g, va.label)
		}
		ranges = append(ranges, r)
	}

	bindGroup, err := b.drawBindGroup(d.Model, f.bound.Colors[material.Diffuse])
	if err != nil {
		return err
	}
	instances := uint32(max(d.Instances, 1)) //nolint:gosec // instance counts fit uint32

	for _, r := range ranges {
		pipeline, err := b.pipelines.getOrCreate(&pipelineKey{
			Shader:      shader,
			Layout:      va.layout,
			Primitive:   r.Primitive,
			Cull:        f.desc.States.Cull,
			Blend:       f.desc.States.Blend,
			Stencil:     f.desc.States.Stencil,
			DepthWrite:  f.desc.States.Clear.Flags&pass.ClearDepth != 0,
			ColorFormat: b.targetFormat(f.desc.Target),
		}, func(k *pipelineKey) (hal.RenderPipeline, error) {
			return createRenderPipeline(b.device, b.pipeLayout, k)
		})
		if err != nil {
			return err
		}
		f.pass.SetPipeline(pipeline)
		f.pass.SetBindGroup(0, bindGroup, nil)
		f.pass.SetVertexBuffer(0, va.buffer, 0)
		f.pass.Draw(r.Count, instances, r.First, 0)
	}
	return nil
}

func (b *Backend) targetFormat(t pass.RenderTarget) gputypes.TextureFormat {
	if t.IsDefault() || t.Format == gputypes.TextureFormatUndefined {
		return b.format
	}
	return t.Format
}

// drawBindGroup creates the uniform buffer and bind group of one draw. Both
// live until the frame completes.
func (b *Backend) drawBindGroup(model mgl32.Mat4, diffuse mgl32.Vec4) (hal.BindGroup, error) {
	f := b.frame
	block := backend.TransformBlock{
		Projection: f.desc.Projection,
		View:       f.desc.View,
		Model:      model,
	}
	block.Update()

	buf, _, err := b.createHALBuffer("g3d_uniforms", gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, uniformBytes(block.MVP, diffuse))
	if err != nil {
		return nil, err
	}
	f.uniforms = append(f.uniforms, buf)

	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "g3d_uniform_group",
		Layout: b.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: 0,
				Resource: gputypes.BufferBinding{
					Buffer: buf.NativeHandle(),
					Offset: 0,
					Size:   uniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform bind group: %w", err)
	}
	f.bindGroups = append(f.bindGroups, bg)
	return bg, nil
}

// uniformBytes packs the uniform block: the column-major MVP matrix then
// the diffuse color.
func uniformBytes(mvp mgl32.Mat4, diffuse mgl32.Vec4) []byte {
	out := make([]byte, uniformSize)
	for i, v := range mvp {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	for i, v := range diffuse {
		binary.LittleEndian.PutUint32(out[64+4*i:], math.Float32bits(v))
	}
	return out
}

// EndPass implements backend.Backend.
func (b *Backend) EndPass() error {
	if b.frame == nil || b.frame.pass == nil {
		return backend.ErrNoActivePass
	}
	b.frame.pass.End()
	b.frame.pass = nil
	b.frame.hasMaterial = false
	return nil
}

// EndFrame implements backend.Backend. It submits the frame and waits for
// the GPU, then copies the default target back when readback is enabled.
func (b *Backend) EndFrame() error {
	f := b.frame
	if f == nil {
		return ErrNoFrame
	}
	b.frame = nil
	defer f.release(b.device)

	if f.pass != nil {
		f.pass.End()
		f.pass = nil
	}

	var staging hal.Buffer
	var stagingSize uint64
	if rt := b.targets[targetKey{width: b.width, height: b.height, format: b.format}]; b.readback && f.drawn && rt != nil {
		var err error
		staging, stagingSize, err = b.encodeReadback(f.encoder, rt)
		if err != nil {
			f.encoder.DiscardEncoding()
			return err
		}
		defer b.device.DestroyBuffer(staging)
	}

	cmdBuf, err := f.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := b.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	if staging != nil {
		pixels := make([]byte, stagingSize)
		if err := b.queue.ReadBuffer(staging, 0, pixels); err != nil {
			return fmt.Errorf("readback: %w", err)
		}
		b.lastFrame = pixels
	}
	g3d.Logger().Debug("native: frame submitted", "draws", len(f.bindGroups))
	return nil
}

// encodeReadback records a copy of the color attachment of rt into a new
// staging buffer.
func (b *Backend) encodeReadback(encoder hal.CommandEncoder, rt *renderTarget) (hal.Buffer, uint64, error) {
	size := uint64(rt.width) * uint64(rt.height) * 4
	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "g3d_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create staging buffer: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(rt.color, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: rt.width * 4, RowsPerImage: rt.height},
		TextureBase:  hal.ImageCopyTexture{Texture: rt.color, MipLevel: 0},
		Size:         hal.Extent3D{Width: rt.width, Height: rt.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	return staging, size, nil
}
