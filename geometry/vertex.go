package geometry

import "fmt"

// VertexAttribute names the semantic of one vertex component.
type VertexAttribute int

const (
	AttributePosition VertexAttribute = iota
	AttributeNormal
	AttributeTexCoord0
	AttributeTexCoord1
	AttributeTexCoord2
	AttributeTexCoord3
	AttributeTangent
	AttributeBinormal
	AttributeWeights
	AttributeIndices
	AttributeColor0
	AttributeColor1
	AttributeInstance0
	AttributeInstance1
	AttributeInstance2
	AttributeInstance3

	// NumVertexAttributes is the number of valid attributes.
	NumVertexAttributes

	// AttributeInvalid is returned for values outside the enumerated set.
	AttributeInvalid VertexAttribute = -1
)

var attributeNames = [NumVertexAttributes]string{
	"position",
	"normal",
	"texcoord0",
	"texcoord1",
	"texcoord2",
	"texcoord3",
	"tangent",
	"binormal",
	"weights",
	"indices",
	"color0",
	"color1",
	"instance0",
	"instance1",
	"instance2",
	"instance3",
}

// Valid reports whether a is one of the enumerated attributes.
func (a VertexAttribute) Valid() bool {
	return a >= 0 && a < NumVertexAttributes
}

// Normalize maps out-of-range values to AttributeInvalid.
func (a VertexAttribute) Normalize() VertexAttribute {
	if !a.Valid() {
		return AttributeInvalid
	}
	return a
}

// String returns the shader-facing attribute name.
func (a VertexAttribute) String() string {
	if !a.Valid() {
		return "invalid"
	}
	return attributeNames[a]
}

// AttributeByName looks up an attribute by its shader-facing name.
func AttributeByName(name string) VertexAttribute {
	for i, n := range attributeNames {
		if n == name {
			return VertexAttribute(i)
		}
	}
	return AttributeInvalid
}

// VertexFormat is the storage format of one vertex component.
type VertexFormat int

const (
	FormatFloat VertexFormat = iota
	FormatFloat2
	FormatFloat3
	FormatFloat4
	FormatByte4
	FormatUByte4
	FormatShort2
	FormatShort4

	// NumVertexFormats is the number of valid formats.
	NumVertexFormats

	// FormatInvalid has size 0.
	FormatInvalid VertexFormat = -1
)

// Size returns the component size in bytes, or 0 for an invalid format.
func (f VertexFormat) Size() int {
	switch f {
	case FormatFloat:
		return 4
	case FormatFloat2:
		return 8
	case FormatFloat3:
		return 12
	case FormatFloat4:
		return 16
	case FormatByte4, FormatUByte4:
		return 4
	case FormatShort2:
		return 4
	case FormatShort4:
		return 8
	default:
		return 0
	}
}

// String returns the format name.
func (f VertexFormat) String() string {
	switch f {
	case FormatFloat:
		return "Float"
	case FormatFloat2:
		return "Float2"
	case FormatFloat3:
		return "Float3"
	case FormatFloat4:
		return "Float4"
	case FormatByte4:
		return "Byte4"
	case FormatUByte4:
		return "UByte4"
	case FormatShort2:
		return "Short2"
	case FormatShort4:
		return "Short4"
	default:
		return "Invalid"
	}
}

// VertexComponent is one attribute of a vertex and its storage format.
type VertexComponent struct {
	Attribute VertexAttribute
	Format    VertexFormat
}

// Size returns the component size in bytes.
func (c VertexComponent) Size() int { return c.Format.Size() }

// String implements fmt.Stringer.
func (c VertexComponent) String() string {
	return fmt.Sprintf("%s:%s", c.Attribute, c.Format)
}

// VertexLayout is an ordered, append-only list of vertex components.
// Offsets are packed: each component starts where the previous one ends.
//
// The zero value is an empty layout ready to use.
type VertexLayout struct {
	components []VertexComponent
	offsets    []int
	size       int
}

// NewVertexLayout returns a layout holding the given components in order.
func NewVertexLayout(components ...VertexComponent) *VertexLayout {
	l := &VertexLayout{}
	for _, c := range components {
		l.Add(c)
	}
	return l
}

// Add appends a component and returns the layout for chaining.
// Invalid attributes are stored as AttributeInvalid.
func (l *VertexLayout) Add(c VertexComponent) *VertexLayout {
	c.Attribute = c.Attribute.Normalize()
	l.components = append(l.components, c)
	l.offsets = append(l.offsets, l.size)
	l.size += c.Size()
	return l
}

// NumComponents returns the number of components.
func (l *VertexLayout) NumComponents() int { return len(l.components) }

// ComponentAt returns the i-th component. ok is false when i is out of range.
func (l *VertexLayout) ComponentAt(i int) (c VertexComponent, ok bool) {
	if i < 0 || i >= len(l.components) {
		return VertexComponent{Attribute: AttributeInvalid, Format: FormatInvalid}, false
	}
	return l.components[i], true
}

// Components returns a copy of the component list.
func (l *VertexLayout) Components() []VertexComponent {
	out := make([]VertexComponent, len(l.components))
	copy(out, l.components)
	return out
}

// Offset returns the byte offset of the i-th component, or -1 when out of range.
func (l *VertexLayout) Offset(i int) int {
	if i < 0 || i >= len(l.offsets) {
		return -1
	}
	return l.offsets[i]
}

// Offsets returns a copy of the per-component byte offsets.
func (l *VertexLayout) Offsets() []int {
	out := make([]int, len(l.offsets))
	copy(out, l.offsets)
	return out
}

// SizeInBytes returns the stride of one vertex.
func (l *VertexLayout) SizeInBytes() int { return l.size }

// IndexOf returns the index of the first component with attribute a, or -1.
func (l *VertexLayout) IndexOf(a VertexAttribute) int {
	for i, c := range l.components {
		if c.Attribute == a {
			return i
		}
	}
	return -1
}

// VertexType selects one of the built-in vertex layouts.
type VertexType uint8

const (
	// ColorVertex is position, normal and color0, each Float3.
	ColorVertex VertexType = iota
	// RenderVertex is ColorVertex plus a Float2 texcoord0.
	RenderVertex
)

// String returns the vertex type name.
func (t VertexType) String() string {
	switch t {
	case ColorVertex:
		return "ColorVertex"
	case RenderVertex:
		return "RenderVertex"
	default:
		return "Unknown"
	}
}

// Layout returns the built-in layout for t.
func (t VertexType) Layout() *VertexLayout {
	if t == ColorVertex {
		return ColorVertLayout()
	}
	return RenderVertLayout()
}

// ColorVertLayout returns the layout of ColorVert.
func ColorVertLayout() *VertexLayout {
	return NewVertexLayout(
		VertexComponent{AttributePosition, FormatFloat3},
		VertexComponent{AttributeNormal, FormatFloat3},
		VertexComponent{AttributeColor0, FormatFloat3},
	)
}

// RenderVertLayout returns the layout of RenderVert.
func RenderVertLayout() *VertexLayout {
	return NewVertexLayout(
		VertexComponent{AttributePosition, FormatFloat3},
		VertexComponent{AttributeNormal, FormatFloat3},
		VertexComponent{AttributeColor0, FormatFloat3},
		VertexComponent{AttributeTexCoord0, FormatFloat2},
	)
}
