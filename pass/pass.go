// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import "github.com/gogpu/g3d/material"

// Well-known pass ids.
const (
	RenderPassID = 0
	UIPassID     = 1
	DebugPassID  = 2

	// MaxDebugPasses bounds the reserved id range.
	MaxDebugPasses = 3
)

// PassNameByID returns the name of a well-known pass, or "Unknown".
func PassNameByID(id int) string {
	switch id {
	case RenderPassID:
		return "RenderPass"
	case UIPassID:
		return "UiPass"
	case DebugPassID:
		return "DbgPass"
	default:
		return "Unknown"
	}
}

// RenderPass is one stage of a frame. Its id is fixed at creation; its
// target, states and shader are changed through chaining setters.
type RenderPass struct {
	id     int
	target RenderTarget
	states States
	shader *material.Shader
}

// NewRenderPass returns a pass with DefaultStates.
func NewRenderPass(id int, shader *material.Shader) *RenderPass {
	return &RenderPass{
		id:     id,
		states: DefaultStates(),
		shader: shader,
	}
}

// ID returns the pass id.
func (p *RenderPass) ID() int { return p.id }

// Name returns the well-known name of the pass id.
func (p *RenderPass) Name() string { return PassNameByID(p.id) }

// Set replaces the render target and all states.
func (p *RenderPass) Set(target RenderTarget, states States) *RenderPass {
	p.target = target
	p.states = states
	return p
}

func (p *RenderPass) SetPolygonState(s PolygonState) *RenderPass {
	p.states.Polygon = s
	return p
}

func (p *RenderPass) SetCullState(s CullState) *RenderPass {
	p.states.Cull = s
	return p
}

func (p *RenderPass) SetBlendState(s BlendState) *RenderPass {
	p.states.Blend = s
	return p
}

func (p *RenderPass) SetSamplerState(s SamplerState) *RenderPass {
	p.states.Sampler = s
	return p
}

func (p *RenderPass) SetClearState(s ClearState) *RenderPass {
	p.states.Clear = s
	return p
}

func (p *RenderPass) SetStencilState(s StencilState) *RenderPass {
	p.states.Stencil = s
	return p
}

func (p *RenderPass) SetShader(s *material.Shader) *RenderPass {
	p.shader = s
	return p
}

// Target returns the render target.
func (p *RenderPass) Target() RenderTarget { return p.target }

// States returns a copy of the pass states.
func (p *RenderPass) States() States { return p.states }

func (p *RenderPass) PolygonState() PolygonState { return p.states.Polygon }
func (p *RenderPass) CullState() CullState       { return p.states.Cull }
func (p *RenderPass) BlendState() BlendState     { return p.states.Blend }
func (p *RenderPass) SamplerState() SamplerState { return p.states.Sampler }
func (p *RenderPass) ClearState() ClearState     { return p.states.Clear }
func (p *RenderPass) StencilState() StencilState { return p.states.Stencil }

// Shader returns the pass shader, which may be nil.
func (p *RenderPass) Shader() *material.Shader { return p.shader }

// Equal reports whether p and o have the same id, target, states and shader.
func (p *RenderPass) Equal(o *RenderPass) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.id == o.id && p.target == o.target && p.states == o.states && p.shader == o.shader
}
