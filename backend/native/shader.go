// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/material"
)

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

// shaderProgram is a compiled material shader. When both stages share one
// WGSL module, fragment aliases vertex.
type shaderProgram struct {
	label    string
	vertex   hal.ShaderModule
	fragment hal.ShaderModule
	vsEntry  string
	fsEntry  string
	hash     uint64
}

func (p *shaderProgram) destroy(device hal.Device) {
	if p.fragment != nil && p.fragment != p.vertex {
		device.DestroyShaderModule(p.fragment)
	}
	if p.vertex != nil {
		device.DestroyShaderModule(p.vertex)
	}
}

func createModule(device hal.Device, label, src string) (hal.ShaderModule, error) {
	words, err := compileWGSL(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
}

// newShaderProgram compiles the vertex and fragment stages of s. A missing
// fragment stage, or one identical to the vertex stage, reuses the vertex
// module.
func newShaderProgram(device hal.Device, label string, s *material.Shader) (*shaderProgram, error) {
	vs := s.Source[material.StageVertex]
	fs := s.Source[material.StageFragment]

	p := &shaderProgram{
		label:   label,
		vsEntry: s.EntryPoint(material.StageVertex),
		fsEntry: s.EntryPoint(material.StageFragment),
		hash:    shaderHash(vs, fs),
	}
	var err error
	if p.vertex, err = createModule(device, label+"_vs", vs); err != nil {
		return nil, err
	}
	if fs == "" || fs == vs {
		p.fragment = p.vertex
		return p, nil
	}
	if p.fragment, err = createModule(device, label+"_fs", fs); err != nil {
		p.destroy(device)
		return nil, err
	}
	return p, nil
}

func shaderHash(vs, fs string) uint64 {
	h := fnv.New64a()
	hashWriteString(h, vs)
	hashWriteString(h, fs)
	return h.Sum64()
}
