// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/pass"
)

// Pipeline cache errors.
var (
	// ErrPipelineCacheNilDevice is returned when creating a pipeline without a device.
	ErrPipelineCacheNilDevice = errors.New("native: HAL device is nil")

	// ErrPipelineCacheNilShader is returned when creating a pipeline without a shader.
	ErrPipelineCacheNilShader = errors.New("native: shader program is nil")
)

// depthFormat is the format of the depth/stencil attachment of every pass.
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

// pipelineKey is everything a render pipeline is specialized on.
type pipelineKey struct {
	Shader      *shaderProgram
	Layout      gputypes.VertexBufferLayout
	Primitive   geometry.PrimitiveType
	Cull        pass.CullState
	Blend       pass.BlendState
	Stencil     pass.StencilState
	DepthWrite  bool
	ColorFormat gputypes.TextureFormat
}

// hashPipelineKey computes an FNV-1a hash of k.
func hashPipelineKey(k *pipelineKey) uint64 {
	h := fnv.New64a()

	if k.Shader != nil {
		hashWriteUint64(h, k.Shader.hash)
		hashWriteString(h, k.Shader.vsEntry)
		hashWriteString(h, k.Shader.fsEntry)
	} else {
		hashWriteUint64(h, 0)
	}

	hashWriteUint64(h, k.Layout.ArrayStride)
	hashWriteUint32(h, uint32(k.Layout.StepMode))
	hashWriteUint32(h, uint32(len(k.Layout.Attributes))) //nolint:gosec // attribute count is tiny
	for i := range k.Layout.Attributes {
		attr := &k.Layout.Attributes[i]
		hashWriteUint32(h, attr.ShaderLocation)
		hashWriteUint32(h, uint32(attr.Format))
		hashWriteUint64(h, attr.Offset)
	}

	hashWriteUint32(h, uint32(k.Primitive))
	hashWriteUint32(h, uint32(k.Cull.Face))
	hashWriteUint32(h, uint32(k.Cull.Winding))
	hashWriteUint32(h, uint32(k.Blend.Func))

	hashWriteBool(h, k.Stencil.Enabled)
	hashWriteUint32(h, uint32(k.Stencil.Func))
	hashWriteUint32(h, k.Stencil.Mask)
	hashWriteUint32(h, uint32(k.Stencil.Fail))
	hashWriteUint32(h, uint32(k.Stencil.DepthFail))
	hashWriteUint32(h, uint32(k.Stencil.Pass))

	hashWriteBool(h, k.DepthWrite)
	hashWriteUint32(h, uint32(k.ColorFormat))
	return h.Sum64()
}

// pipelineCache caches render pipelines by key hash.
//
// Thread Safety: pipelineCache is safe for concurrent use. It uses RWMutex
// with double-check locking.
type pipelineCache struct {
	mu        sync.RWMutex
	pipelines map[uint64]hal.RenderPipeline

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{pipelines: make(map[uint64]hal.RenderPipeline)}
}

// getOrCreate returns the pipeline for k, creating it with create on a miss.
func (c *pipelineCache) getOrCreate(k *pipelineKey, create func(*pipelineKey) (hal.RenderPipeline, error)) (hal.RenderPipeline, error) {
	key := hashPipelineKey(k)

	c.mu.RLock()
	if p, ok := c.pipelines[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[key]; ok {
		c.hits.Add(1)
		return p, nil
	}
	p, err := create(k)
	if err != nil {
		return nil, err
	}
	c.pipelines[key] = p
	c.misses.Add(1)
	return p, nil
}

// stats returns cache hits and misses.
func (c *pipelineCache) stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *pipelineCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// destroyAll destroys every cached pipeline.
func (c *pipelineCache) destroyAll(device hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.pipelines {
		device.DestroyRenderPipeline(p)
		delete(c.pipelines, k)
	}
}

// createRenderPipeline builds the hal pipeline for k.
func createRenderPipeline(device hal.Device, layout hal.PipelineLayout, k *pipelineKey) (hal.RenderPipeline, error) {
	if device == nil {
		return nil, ErrPipelineCacheNilDevice
	}
	if k.Shader == nil {
		return nil, ErrPipelineCacheNilShader
	}

	cull, front := k.Cull.GPU()
	depthCompare := gputypes.CompareFunctionAlways
	if k.DepthWrite {
		depthCompare = gputypes.CompareFunctionLess
	}
	face := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	var stencilMask uint32
	if k.Stencil.Enabled {
		face.Compare = k.Stencil.Func.GPU()
		face.FailOp = stencilOperation(k.Stencil.Fail)
		face.DepthFailOp = stencilOperation(k.Stencil.DepthFail)
		face.PassOp = stencilOperation(k.Stencil.Pass)
		stencilMask = k.Stencil.Mask
	}

	p, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  k.Shader.label + "_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     k.Shader.vertex,
			EntryPoint: k.Shader.vsEntry,
			Buffers:    []gputypes.VertexBufferLayout{k.Layout},
		},
		Fragment: &hal.FragmentState{
			Module:     k.Shader.fragment,
			EntryPoint: k.Shader.fsEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    k.ColorFormat,
					Blend:     k.Blend.GPU(),
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: k.DepthWrite,
			DepthCompare:      depthCompare,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   stencilMask,
			StencilWriteMask:  stencilMask,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  k.Primitive.Topology(),
			FrontFace: front,
			CullMode:  cull,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %q: %w", k.Shader.label, err)
	}
	return p, nil
}

// stencilOperation maps a pass stencil op to its HAL equivalent. Replace
// keeps the value since the reference is never set on the pass.
func stencilOperation(op pass.StencilOp) hal.StencilOperation {
	switch op {
	case pass.StencilZero:
		return hal.StencilOperationZero
	case pass.StencilIncrement:
		return hal.StencilOperationIncrementWrap
	case pass.StencilDecrement:
		return hal.StencilOperationDecrementWrap
	case pass.StencilInvert:
		return hal.StencilOperationInvert
	default:
		return hal.StencilOperationKeep
	}
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

//nolint:gosec // shader sources fit uint32
func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
