// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// PolygonMode selects how polygons are rasterized.
type PolygonMode uint8

const (
	PolygonFill PolygonMode = iota
	PolygonLine
	PolygonPoint
)

// PolygonState holds rasterization state.
type PolygonState struct {
	Mode PolygonMode
}

// CullFace selects which faces are discarded.
type CullFace uint8

const (
	CullNone CullFace = iota
	CullFront
	CullBack
	CullFrontAndBack
)

// Winding selects which vertex order is front facing.
type Winding uint8

const (
	WindingCCW Winding = iota
	WindingCW
)

// CullState holds face culling state.
type CullState struct {
	Face    CullFace
	Winding Winding
}

// GPU returns the gputypes cull mode and front face. WebGPU cannot cull
// both faces; CullFrontAndBack maps to back-face culling.
func (c CullState) GPU() (gputypes.CullMode, gputypes.FrontFace) {
	front := gputypes.FrontFaceCCW
	if c.Winding == WindingCW {
		front = gputypes.FrontFaceCW
	}
	switch c.Face {
	case CullFront:
		return gputypes.CullModeFront, front
	case CullBack, CullFrontAndBack:
		return gputypes.CullModeBack, front
	default:
		return gputypes.CullModeNone, front
	}
}

// BlendFunc names a blend equation.
type BlendFunc uint8

const (
	// BlendOff writes source color unchanged.
	BlendOff BlendFunc = iota
	// BlendAlpha is straight alpha blending.
	BlendAlpha
	// BlendPremultiplied is premultiplied alpha blending.
	BlendPremultiplied
	// BlendAdditive adds source to destination.
	BlendAdditive
)

// BlendState holds color blending state.
type BlendState struct {
	Func BlendFunc
}

// GPU returns the gputypes blend state, or nil when blending is off.
func (b BlendState) GPU() *gputypes.BlendState {
	var s gputypes.BlendState
	switch b.Func {
	case BlendAlpha:
		s = gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	case BlendPremultiplied:
		s = gputypes.BlendStatePremultiplied()
	case BlendAdditive:
		add := gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationAdd,
		}
		s = gputypes.BlendState{Color: add, Alpha: add}
	default:
		return nil
	}
	return &s
}

// SamplerFilter selects texture filtering.
type SamplerFilter uint8

const (
	SamplerLinear SamplerFilter = iota
	SamplerNearest
)

// SamplerAddress selects texture addressing.
type SamplerAddress uint8

const (
	AddressClamp SamplerAddress = iota
	AddressRepeat
	AddressMirror
)

// SamplerState holds the default sampler of a pass.
type SamplerState struct {
	Filter  SamplerFilter
	Address SamplerAddress
}

// GPU returns the gputypes filter and address modes.
func (s SamplerState) GPU() (gputypes.FilterMode, gputypes.AddressMode) {
	filter := gputypes.FilterModeLinear
	if s.Filter == SamplerNearest {
		filter = gputypes.FilterModeNearest
	}
	switch s.Address {
	case AddressRepeat:
		return filter, gputypes.AddressModeRepeat
	case AddressMirror:
		return filter, gputypes.AddressModeMirrorRepeat
	default:
		return filter, gputypes.AddressModeClampToEdge
	}
}

// ClearFlags selects which attachments are cleared at pass start.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil
)

// ClearState holds the clear behavior of a pass.
type ClearState struct {
	Flags ClearFlags
	Color mgl32.Vec4
	Depth float32
}

// LoadOp returns LoadOpClear when the color attachment is cleared and
// LoadOpLoad otherwise.
func (c ClearState) LoadOp() gputypes.LoadOp {
	if c.Flags&ClearColor != 0 {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

// GPUColor returns the clear color as a gputypes.Color.
func (c ClearState) GPUColor() gputypes.Color {
	return gputypes.Color{
		R: float64(c.Color[0]),
		G: float64(c.Color[1]),
		B: float64(c.Color[2]),
		A: float64(c.Color[3]),
	}
}

// CompareFunc is a stencil or depth comparison.
type CompareFunc uint8

const (
	CompareAlways CompareFunc = iota
	CompareNever
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
)

// GPU returns the gputypes comparison.
func (c CompareFunc) GPU() gputypes.CompareFunction {
	switch c {
	case CompareNever:
		return gputypes.CompareFunctionNever
	case CompareLess:
		return gputypes.CompareFunctionLess
	case CompareEqual:
		return gputypes.CompareFunctionEqual
	case CompareLessEqual:
		return gputypes.CompareFunctionLessEqual
	case CompareGreater:
		return gputypes.CompareFunctionGreater
	case CompareNotEqual:
		return gputypes.CompareFunctionNotEqual
	case CompareGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}

// StencilOp is the action taken on a stencil test outcome.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
)

// StencilState holds stencil test state.
type StencilState struct {
	Enabled   bool
	Func      CompareFunc
	Ref       uint32
	Mask      uint32
	Fail      StencilOp
	DepthFail StencilOp
	Pass      StencilOp
}

// States aggregates every state of a pass.
type States struct {
	Polygon PolygonState
	Cull    CullState
	Blend   BlendState
	Sampler SamplerState
	Clear   ClearState
	Stencil StencilState
}

// DefaultStates returns filled, back-face culled, unblended states that
// clear color and depth to opaque black.
func DefaultStates() States {
	return States{
		Cull:    CullState{Face: CullBack, Winding: WindingCCW},
		Clear:   ClearState{Flags: ClearColor | ClearDepth, Color: mgl32.Vec4{0, 0, 0, 1}, Depth: 1},
		Stencil: StencilState{Func: CompareAlways, Mask: 0xff},
	}
}

// OverlayStates returns alpha-blended, unculled states that keep the
// existing color attachment. UI and debug passes use them.
func OverlayStates() States {
	return States{
		Blend:   BlendState{Func: BlendAlpha},
		Stencil: StencilState{Func: CompareAlways, Mask: 0xff},
	}
}
