// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"hash/fnv"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
)

//go:embed shaders/flat.wgsl
var flatShaderSource string

//go:embed shaders/color.wgsl
var colorShaderSource string

// BuiltinShader returns the unlit shader used for flat materials and for
// meshes without a material. Both stages live in one WGSL module.
func BuiltinShader(vt geometry.VertexType) *material.Shader {
	src := flatShaderSource
	if vt == geometry.ColorVertex {
		src = colorShaderSource
	}
	s := material.NewShader("builtin_"+vt.String(), src, src)
	for _, c := range vt.Layout().Components() {
		s.AddAttribute(c.Attribute.String())
	}
	s.AddUniform("Uniforms")
	return s
}

// shaderSum hashes the stage sources and entry points of sh.
func shaderSum(sh *material.Shader) uint64 {
	h := fnv.New64a()
	for stage := range material.NumShaderStages {
		h.Write([]byte(sh.Source[stage]))
		h.Write([]byte{0})
		h.Write([]byte(sh.EntryPoint(stage)))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
