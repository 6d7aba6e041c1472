// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/geometry"
)

// drawRange is the slice of an expanded vertex buffer that holds one
// primitive group.
type drawRange struct {
	First     uint32
	Count     uint32
	Primitive geometry.PrimitiveType
}

// deindex expands indexed geometry into one vertex stream per group.
//
// Every group is written contiguously into the returned buffer in group
// order, so each can be drawn with a non-indexed Draw. Triangle fans become
// triangle lists. Byte and short indices are handled alike.
func deindex(vertices []byte, stride int, indices []byte, it geometry.IndexType, groups []geometry.PrimitiveGroup) ([]byte, map[geometry.PrimitiveGroup]drawRange, error) {
	if stride <= 0 {
		return nil, nil, fmt.Errorf("%w: vertex stride %d", backend.ErrInvalidDescriptor, stride)
	}
	all := geometry.DecodeIndices(&geometry.BufferData{Type: geometry.BufferIndex, Data: indices}, it)
	numVerts := len(vertices) / stride

	var out []byte
	ranges := make(map[geometry.PrimitiveGroup]drawRange, len(groups))
	first := 0
	for _, g := range groups {
		if _, ok := ranges[g]; ok {
			continue
		}
		if !g.Fits(len(all)) {
			return nil, nil, fmt.Errorf("%w: group %v exceeds %d indices", backend.ErrInvalidDescriptor, g, len(all))
		}
		idx := all[g.Start:g.End()]
		prim := g.Primitive
		if prim == geometry.TriangleFan {
			idx = geometry.ExpandFan(idx)
			prim = geometry.TriangleList
		}
		for _, i := range idx {
			if int(i) >= numVerts {
				return nil, nil, fmt.Errorf("%w: index %d exceeds %d vertices", backend.ErrInvalidDescriptor, i, numVerts)
			}
			out = append(out, vertices[int(i)*stride:(int(i)+1)*stride]...)
		}
		ranges[g] = drawRange{
			First:     uint32(first),    //nolint:gosec // vertex counts fit uint32
			Count:     uint32(len(idx)), //nolint:gosec // vertex counts fit uint32
			Primitive: prim,
		}
		first += len(idx)
	}
	return out, ranges, nil
}

// align4 rounds n up to a multiple of four, the copy alignment of
// queue buffer writes.
func align4(n int) int {
	return (n + 3) &^ 3
}

// padded returns data extended with zeros to a multiple of four bytes.
func padded(data []byte) []byte {
	n := align4(len(data))
	if n == len(data) {
		return data
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}
