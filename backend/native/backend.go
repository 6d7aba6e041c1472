// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
)

// Default surface dimensions.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// uniformSize is the size of the per-draw uniform block: a mat4x4 MVP
// followed by the vec4 diffuse color.
const uniformSize = 80

var (
	providerMu      sync.RWMutex
	defaultProvider gpucontext.DeviceProvider
)

func init() {
	backend.Register(backend.BackendNative, func() backend.Backend {
		providerMu.RLock()
		defer providerMu.RUnlock()
		return New(defaultProvider)
	})
}

// SetDeviceProvider sets the device provider used by backends created from
// the registry. Until it is called, registry backends fail Init with
// ErrNoDevice and selection falls through to the next backend.
func SetDeviceProvider(provider gpucontext.DeviceProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = provider
}

// Option configures a Backend.
type Option func(*Backend)

// WithSize sets the size of the default surface.
func WithSize(width, height int) Option {
	return func(b *Backend) {
		b.width = width
		b.height = height
	}
}

// WithFormat overrides the color format. By default the provider's
// surface format is used.
func WithFormat(format gputypes.TextureFormat) Option {
	return func(b *Backend) {
		b.format = format
	}
}

// WithReadback copies the default surface to CPU memory at the end of
// every frame. See Backend.LastFrame.
func WithReadback(enabled bool) Option {
	return func(b *Backend) {
		b.readback = enabled
	}
}

// Backend renders through a gogpu/wgpu HAL device shared by a
// gpucontext.DeviceProvider.
//
// Indexed geometry is expanded on the CPU when its vertex array is created,
// so every draw is a non-indexed Draw of a contiguous vertex range. Each
// draw gets its own uniform buffer holding the MVP matrix and the
// material's diffuse color. Textures are uploaded but not sampled by the
// built-in shaders.
//
// Backend is not safe for concurrent use.
type Backend struct {
	provider gpucontext.DeviceProvider
	device   hal.Device
	queue    hal.Queue

	width    int
	height   int
	format   gputypes.TextureFormat
	readback bool

	initialized bool
	nextID      uint64

	buffers      map[backend.BufferID]*gpuBuffer
	shaders      map[backend.ShaderID]*shaderProgram
	textures     map[backend.TextureID]*gpuTexture
	vertexArrays map[backend.VertexArrayID]*vertexArray

	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipelines     *pipelineCache
	targets       map[targetKey]*renderTarget

	frame     *frameState
	lastFrame []byte
}

var _ backend.Backend = (*Backend)(nil)

// New creates an uninitialized native backend drawing with provider's
// device.
func New(provider gpucontext.DeviceProvider, opts ...Option) *Backend {
	b := &Backend{
		provider: provider,
		width:    DefaultWidth,
		height:   DefaultHeight,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.BackendNative }

// Init implements backend.Backend. It fails with ErrNoDevice when the
// provider does not expose a HAL device and queue.
func (b *Backend) Init() error {
	if b.initialized {
		return nil
	}
	if b.width <= 0 || b.height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.width, b.height)
	}
	device, queue, err := halDevice(b.provider)
	if err != nil {
		return err
	}
	b.device = device
	b.queue = queue

	if b.format == gputypes.TextureFormatUndefined {
		b.format = b.provider.SurfaceFormat()
	}
	if b.format == gputypes.TextureFormatUndefined {
		b.format = gputypes.TextureFormatBGRA8Unorm
	}

	if err := b.createLayouts(); err != nil {
		b.destroyLayouts()
		return err
	}

	b.nextID = 1
	b.buffers = make(map[backend.BufferID]*gpuBuffer)
	b.shaders = make(map[backend.ShaderID]*shaderProgram)
	b.textures = make(map[backend.TextureID]*gpuTexture)
	b.vertexArrays = make(map[backend.VertexArrayID]*vertexArray)
	b.targets = make(map[targetKey]*renderTarget)
	b.pipelines = newPipelineCache()
	b.initialized = true

	g3d.Logger().Info("native: initialized", "width", b.width, "height", b.height, "format", b.format)
	return nil
}

// halDevice extracts the HAL device and queue from provider.
func halDevice(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, nil, ErrNoDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoDevice)
	}
	return device, queue, nil
}

// createLayouts creates the uniform bind group layout shared by every
// material pipeline.
func (b *Backend) createLayouts() error {
	var err error
	b.uniformLayout, err = b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "g3d_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	b.pipeLayout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "g3d_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	return nil
}

func (b *Backend) destroyLayouts() {
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.uniformLayout != nil {
		b.device.DestroyBindGroupLayout(b.uniformLayout)
		b.uniformLayout = nil
	}
}

// Close implements backend.Backend. The device itself belongs to the
// provider and is not destroyed.
func (b *Backend) Close() {
	if !b.initialized {
		return
	}
	if b.frame != nil {
		b.frame.discard(b.device)
		b.frame = nil
	}
	for id, va := range b.vertexArrays {
		b.device.DestroyBuffer(va.buffer)
		delete(b.vertexArrays, id)
	}
	for id, buf := range b.buffers {
		b.device.DestroyBuffer(buf.buffer)
		delete(b.buffers, id)
	}
	for id, tex := range b.textures {
		tex.destroy(b.device)
		delete(b.textures, id)
	}
	for id, sh := range b.shaders {
		sh.destroy(b.device)
		delete(b.shaders, id)
	}
	for k, t := range b.targets {
		t.destroy(b.device)
		delete(b.targets, k)
	}
	b.pipelines.destroyAll(b.device)
	b.destroyLayouts()

	b.device = nil
	b.queue = nil
	b.initialized = false
}

// LastFrame returns the pixels of the default surface copied at the end of
// the last frame, in the backend's color format. It is nil unless the
// backend was created WithReadback.
func (b *Backend) LastFrame() []byte {
	return b.lastFrame
}

// Format returns the color format of the default surface.
func (b *Backend) Format() gputypes.TextureFormat {
	return b.format
}

// PipelineStats returns the pipeline cache hits and misses.
func (b *Backend) PipelineStats() (hits, misses uint64) {
	if b.pipelines == nil {
		return 0, 0
	}
	return b.pipelines.stats()
}

func (b *Backend) newID() uint64 {
	id := b.nextID
	b.nextID++
	return id
}
