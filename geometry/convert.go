package geometry

import "github.com/gogpu/gputypes"

// GPUFormat returns the gputypes vertex format for f.
// Formats without a WebGPU equivalent map to VertexFormatFloat32.
func (f VertexFormat) GPUFormat() gputypes.VertexFormat {
	switch f {
	case FormatFloat2:
		return gputypes.VertexFormatFloat32x2
	case FormatFloat3:
		return gputypes.VertexFormatFloat32x3
	case FormatFloat4:
		return gputypes.VertexFormatFloat32x4
	case FormatByte4:
		return gputypes.VertexFormatSint8x4
	case FormatUByte4:
		return gputypes.VertexFormatUint8x4
	case FormatShort2:
		return gputypes.VertexFormatSint16x2
	case FormatShort4:
		return gputypes.VertexFormatSint16x4
	default:
		return gputypes.VertexFormatFloat32
	}
}

// Topology returns the gputypes topology for p. Triangle fans have no
// WebGPU topology; backends expand them with ExpandFan first.
func (p PrimitiveType) Topology() gputypes.PrimitiveTopology {
	switch p {
	case PointList:
		return gputypes.PrimitiveTopologyPointList
	case LineList:
		return gputypes.PrimitiveTopologyLineList
	case LineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

// GPUFormat returns the gputypes index format for t.
// Byte indices are widened to uint16 by the backend.
func (t IndexType) GPUFormat() gputypes.IndexFormat {
	return gputypes.IndexFormatUint16
}

// GPULayout returns the vertex buffer layout for slot 0.
// Shader locations follow component order.
func (l *VertexLayout) GPULayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, 0, len(l.components))
	for i, c := range l.components {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         c.Format.GPUFormat(),
			Offset:         uint64(l.offsets[i]),
			ShaderLocation: uint32(i), //nolint:gosec // component count is tiny
		})
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(l.size),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// ExpandFan converts triangle fan indices into triangle list indices.
func ExpandFan(indices []uint32) []uint32 {
	if len(indices) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(indices)-2)*3)
	for i := 1; i+1 < len(indices); i++ {
		out = append(out, indices[0], indices[i], indices[i+1])
	}
	return out
}
