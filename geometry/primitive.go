package geometry

import "fmt"

// PrimitiveType is the topology used to assemble indices into primitives.
type PrimitiveType uint8

const (
	PointList PrimitiveType = iota
	LineList
	LineStrip
	TriangleList
	TriangleStrip
	TriangleFan
)

// String returns the topology name.
func (p PrimitiveType) String() string {
	switch p {
	case PointList:
		return "PointList"
	case LineList:
		return "LineList"
	case LineStrip:
		return "LineStrip"
	case TriangleList:
		return "TriangleList"
	case TriangleStrip:
		return "TriangleStrip"
	case TriangleFan:
		return "TriangleFan"
	default:
		return "Unknown"
	}
}

// IndexType is the width of one index.
type IndexType uint8

const (
	UnsignedByte IndexType = iota
	UnsignedShort
)

// Size returns the width of one index in bytes.
func (t IndexType) Size() int {
	if t == UnsignedByte {
		return 1
	}
	return 2
}

// String returns the index type name.
func (t IndexType) String() string {
	switch t {
	case UnsignedByte:
		return "UnsignedByte"
	case UnsignedShort:
		return "UnsignedShort"
	default:
		return "Unknown"
	}
}

// PrimitiveGroup is a contiguous run of indices drawn with one topology.
// Start and Count are measured in indices, not bytes.
type PrimitiveGroup struct {
	Primitive PrimitiveType
	Start     int
	Count     int
	IndexType IndexType
}

// NewPrimitiveGroup returns a group covering count indices from start.
func NewPrimitiveGroup(indexType IndexType, count int, prim PrimitiveType, start int) PrimitiveGroup {
	return PrimitiveGroup{
		Primitive: prim,
		Start:     start,
		Count:     count,
		IndexType: indexType,
	}
}

// End returns the index one past the last index of the group.
func (g PrimitiveGroup) End() int { return g.Start + g.Count }

// Fits reports whether the group lies within numIndices indices.
func (g PrimitiveGroup) Fits(numIndices int) bool {
	return g.Start >= 0 && g.Count >= 0 && g.End() <= numIndices
}

// String implements fmt.Stringer.
func (g PrimitiveGroup) String() string {
	return fmt.Sprintf("%s[%d:%d]", g.Primitive, g.Start, g.End())
}

// NumIndices returns the number of whole indices stored in an index buffer.
func NumIndices(ib *BufferData, t IndexType) int {
	return ib.Size() / t.Size()
}

// DecodeIndices reads the indices of ib as uint32 values.
func DecodeIndices(ib *BufferData, t IndexType) []uint32 {
	n := NumIndices(ib, t)
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		if t == UnsignedByte {
			out[i] = uint32(ib.Data[i])
			continue
		}
		out[i] = uint32(ib.Data[2*i]) | uint32(ib.Data[2*i+1])<<8
	}
	return out
}

// EncodeIndices16 packs indices as little-endian uint16 values.
func EncodeIndices16(indices []uint16) []byte {
	out := make([]byte, 2*len(indices))
	for i, idx := range indices {
		out[2*i] = byte(idx)
		out[2*i+1] = byte(idx >> 8)
	}
	return out
}

// EncodeIndices8 copies byte indices into a new slice.
func EncodeIndices8(indices []uint8) []byte {
	out := make([]byte, len(indices))
	copy(out, indices)
	return out
}
