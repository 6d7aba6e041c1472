package geometry

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAlloc(t *testing.T) {
	b := Alloc(BufferVertex, 16, ReadOnly)
	if b.Size() != 16 {
		t.Errorf("Size() = %d, want 16", b.Size())
	}
	for i, v := range b.Data {
		if v != 0 {
			t.Fatalf("Data[%d] = %d, want 0", i, v)
		}
	}
	if b.Type != BufferVertex || b.Access != ReadOnly {
		t.Errorf("Alloc() = %v/%v, want Vertex/ReadOnly", b.Type, b.Access)
	}
	if got := Alloc(BufferIndex, -3, ReadWrite).Size(); got != 0 {
		t.Errorf("Alloc(-3).Size() = %d, want 0", got)
	}
}

func TestBufferData_CopyFromAndAttach(t *testing.T) {
	b := Alloc(BufferVertex, 2, WriteOnly)
	b.CopyFrom([]byte{1, 2, 3})
	if !bytes.Equal(b.Data, []byte{1, 2, 3}) {
		t.Errorf("after CopyFrom Data = %v, want [1 2 3]", b.Data)
	}
	b.Attach([]byte{4})
	if !bytes.Equal(b.Data, []byte{1, 2, 3, 4}) {
		t.Errorf("after Attach Data = %v, want [1 2 3 4]", b.Data)
	}
	b.CopyFrom([]byte{9})
	if !bytes.Equal(b.Data, []byte{9}) {
		t.Errorf("after shrinking CopyFrom Data = %v, want [9]", b.Data)
	}
}

func TestBufferData_NilReceiver(t *testing.T) {
	var b *BufferData
	b.CopyFrom([]byte{1})
	b.Attach([]byte{1})
	if b.Size() != 0 {
		t.Errorf("nil Size() = %d, want 0", b.Size())
	}
	if b.Clone() != nil {
		t.Error("nil Clone() != nil")
	}
}

func TestBufferData_CloneIsDeep(t *testing.T) {
	b := &BufferData{Type: BufferIndex, Data: []byte{1, 2}}
	c := b.Clone()
	c.Data[0] = 7
	if b.Data[0] != 1 {
		t.Error("Clone shares storage with the original")
	}
}

func TestIndices(t *testing.T) {
	ib := &BufferData{Type: BufferIndex, Data: EncodeIndices16([]uint16{0, 1, 258})}
	if got := NumIndices(ib, UnsignedShort); got != 3 {
		t.Errorf("NumIndices() = %d, want 3", got)
	}
	got := DecodeIndices(ib, UnsignedShort)
	want := []uint32{0, 1, 258}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DecodeIndices()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	ib8 := &BufferData{Type: BufferIndex, Data: EncodeIndices8([]uint8{3, 4})}
	if got := DecodeIndices(ib8, UnsignedByte); len(got) != 2 || got[1] != 4 {
		t.Errorf("DecodeIndices(byte) = %v, want [3 4]", got)
	}
	if NumIndices(nil, UnsignedShort) != 0 {
		t.Error("NumIndices(nil) != 0")
	}
}

func TestPrimitiveGroup_Fits(t *testing.T) {
	g := NewPrimitiveGroup(UnsignedShort, 3, TriangleList, 0)
	if !g.Fits(3) {
		t.Error("group [0:3] should fit 3 indices")
	}
	if g.Fits(2) {
		t.Error("group [0:3] should not fit 2 indices")
	}
	if (PrimitiveGroup{Start: -1, Count: 1}).Fits(10) {
		t.Error("negative start should not fit")
	}
}

func TestExpandFan(t *testing.T) {
	got := ExpandFan([]uint32{0, 1, 2, 3})
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("ExpandFan() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpandFan()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if ExpandFan([]uint32{0, 1}) != nil {
		t.Error("ExpandFan of two indices should be nil")
	}
}

func TestPackRenderVerts_RoundTrip(t *testing.T) {
	in := []RenderVert{
		{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 0, 1}, Color0: mgl32.Vec3{1, 0, 0}, Tex0: mgl32.Vec2{0.5, 1}},
	}
	data := PackRenderVerts(in)
	if len(data) != RenderVertSize {
		t.Fatalf("len(PackRenderVerts) = %d, want %d", len(data), RenderVertSize)
	}
	out := UnpackRenderVerts(data)
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("UnpackRenderVerts() = %+v, want %+v", out, in)
	}
	if got := len(PackColorVerts(make([]ColorVert, 2))); got != 2*ColorVertSize {
		t.Errorf("len(PackColorVerts(2)) = %d, want %d", got, 2*ColorVertSize)
	}
}
