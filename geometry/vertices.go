package geometry

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ColorVert is a vertex with a position, a normal and a color.
// It matches ColorVertLayout.
type ColorVert struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color0   mgl32.Vec3
}

// RenderVert is a ColorVert with one texture coordinate.
// It matches RenderVertLayout.
type RenderVert struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color0   mgl32.Vec3
	Tex0     mgl32.Vec2
}

// ColorVertSize is the packed size of a ColorVert.
const ColorVertSize = 36

// RenderVertSize is the packed size of a RenderVert.
const RenderVertSize = 44

func putFloats(dst []byte, fs ...float32) []byte {
	for _, f := range fs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

// PackColorVerts encodes vertices in ColorVertLayout order.
func PackColorVerts(verts []ColorVert) []byte {
	out := make([]byte, 0, len(verts)*ColorVertSize)
	for _, v := range verts {
		out = putFloats(out, v.Position[:]...)
		out = putFloats(out, v.Normal[:]...)
		out = putFloats(out, v.Color0[:]...)
	}
	return out
}

// PackRenderVerts encodes vertices in RenderVertLayout order.
func PackRenderVerts(verts []RenderVert) []byte {
	out := make([]byte, 0, len(verts)*RenderVertSize)
	for _, v := range verts {
		out = putFloats(out, v.Position[:]...)
		out = putFloats(out, v.Normal[:]...)
		out = putFloats(out, v.Color0[:]...)
		out = putFloats(out, v.Tex0[:]...)
	}
	return out
}

// UnpackRenderVerts decodes data packed by PackRenderVerts.
// Trailing bytes that do not form a whole vertex are ignored.
func UnpackRenderVerts(data []byte) []RenderVert {
	n := len(data) / RenderVertSize
	out := make([]RenderVert, n)
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}
	for i := 0; i < n; i++ {
		b := i * RenderVertSize
		out[i] = RenderVert{
			Position: mgl32.Vec3{f(b), f(b + 4), f(b + 8)},
			Normal:   mgl32.Vec3{f(b + 12), f(b + 16), f(b + 20)},
			Color0:   mgl32.Vec3{f(b + 24), f(b + 28), f(b + 32)},
			Tex0:     mgl32.Vec2{f(b + 36), f(b + 40)},
		}
	}
	return out
}
