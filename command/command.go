// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package command defines the render commands queued by the staging layer
// and the per-pass FIFO queue that holds them.
//
// Command is a closed sum type: SetMaterial, DrawPrimitives and
// DrawInstancedPrimitives are its only variants. Each variant is a value
// that carries everything needed to execute it, independent of the scene
// graph that produced it.
package command

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
)

// Kind identifies a command variant.
type Kind uint8

const (
	KindSetMaterial Kind = iota + 1
	KindDrawPrimitives
	KindDrawInstancedPrimitives
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindSetMaterial:
		return "SetMaterial"
	case KindDrawPrimitives:
		return "DrawPrimitives"
	case KindDrawInstancedPrimitives:
		return "DrawInstancedPrimitives"
	default:
		return "Unknown"
	}
}

// Command is a queued render command.
type Command interface {
	Kind() Kind
	isCommand()
}

// SetMaterial makes a material current for the draws that follow it.
type SetMaterial struct {
	Material material.Handle
	Name     string
	Binding  backend.MaterialBinding
}

// DrawPrimitives draws one primitive group of a mesh.
type DrawPrimitives struct {
	MeshID      uint64
	VertexArray backend.VertexArrayID
	Group       int
	Primitive   geometry.PrimitiveGroup
	Model       mgl32.Mat4
	HasModel    bool
}

// DrawInstancedPrimitives draws every group of a mesh Instances times.
type DrawInstancedPrimitives struct {
	MeshID      uint64
	VertexArray backend.VertexArrayID
	Groups      []geometry.PrimitiveGroup
	Instances   int
	Model       mgl32.Mat4
	HasModel    bool
}

func (SetMaterial) Kind() Kind             { return KindSetMaterial }
func (DrawPrimitives) Kind() Kind          { return KindDrawPrimitives }
func (DrawInstancedPrimitives) Kind() Kind { return KindDrawInstancedPrimitives }

func (SetMaterial) isCommand()             {}
func (DrawPrimitives) isCommand()          {}
func (DrawInstancedPrimitives) isCommand() {}

var (
	_ Command = SetMaterial{}
	_ Command = DrawPrimitives{}
	_ Command = DrawInstancedPrimitives{}
)

func (c SetMaterial) String() string {
	return fmt.Sprintf("SetMaterial(%s)", c.Name)
}

func (c DrawPrimitives) String() string {
	return fmt.Sprintf("DrawPrimitives(mesh %d, group %d %v)", c.MeshID, c.Group, c.Primitive)
}

func (c DrawInstancedPrimitives) String() string {
	return fmt.Sprintf("DrawInstancedPrimitives(mesh %d, %d groups, x%d)", c.MeshID, len(c.Groups), c.Instances)
}
