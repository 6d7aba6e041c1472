package material

import "github.com/go-gl/mathgl/mgl32"

// Type selects how a material is shaded.
type Type uint8

const (
	// TypeFlat draws with per-vertex colors and no custom shader.
	TypeFlat Type = iota
	// TypeShader draws with the material's shader.
	TypeShader
)

// String returns the material type name.
func (t Type) String() string {
	if t == TypeFlat {
		return "Flat"
	}
	return "Shader"
}

// ColorSlot selects one of the material colors.
type ColorSlot uint8

const (
	Diffuse ColorSlot = iota
	Specular
	Ambient
	Emission

	// NumColorSlots is the number of color slots.
	NumColorSlots
)

// ParameterType is the shape of a parameter value.
type ParameterType uint8

const (
	ParamFloat ParameterType = iota
	ParamFloat2
	ParamFloat3
	ParamFloat4
	ParamMat4
)

// Components returns the number of floats a value of type p holds.
func (p ParameterType) Components() int {
	switch p {
	case ParamFloat:
		return 1
	case ParamFloat2:
		return 2
	case ParamFloat3:
		return 3
	case ParamFloat4:
		return 4
	case ParamMat4:
		return 16
	default:
		return 0
	}
}

// Parameter is a named uniform value.
type Parameter struct {
	Name string
	Type ParameterType
	Data []float32
}

// Material is the appearance of a mesh. Its shader and textures are owned
// by the material; the material itself is owned by a Library.
type Material struct {
	Name       string
	Type       Type
	Shader     *Shader
	Textures   []*Texture
	Parameters []Parameter
	Colors     [NumColorSlots]mgl32.Vec4
}

// New returns a material with opaque white diffuse and black other slots.
func New(name string, t Type) *Material {
	m := &Material{Name: name, Type: t}
	m.Colors[Diffuse] = mgl32.Vec4{1, 1, 1, 1}
	m.Colors[Specular] = mgl32.Vec4{0, 0, 0, 1}
	m.Colors[Ambient] = mgl32.Vec4{0, 0, 0, 1}
	m.Colors[Emission] = mgl32.Vec4{0, 0, 0, 1}
	return m
}

// SetShader sets the shader.
func (m *Material) SetShader(s *Shader) { m.Shader = s }

// AddTexture appends textures.
func (m *Material) AddTexture(ts ...*Texture) {
	m.Textures = append(m.Textures, ts...)
}

// SetColor sets a color slot. Out-of-range slots are ignored.
func (m *Material) SetColor(slot ColorSlot, c mgl32.Vec4) {
	if slot >= NumColorSlots {
		return
	}
	m.Colors[slot] = c
}

// Color returns a color slot, or transparent black for out-of-range slots.
func (m *Material) Color(slot ColorSlot) mgl32.Vec4 {
	if slot >= NumColorSlots {
		return mgl32.Vec4{}
	}
	return m.Colors[slot]
}

// SetParameter stores a parameter, replacing one with the same name.
// Data is truncated or zero-padded to the size of the type.
func (m *Material) SetParameter(name string, t ParameterType, data ...float32) {
	v := make([]float32, t.Components())
	copy(v, data)
	for i := range m.Parameters {
		if m.Parameters[i].Name == name {
			m.Parameters[i] = Parameter{Name: name, Type: t, Data: v}
			return
		}
	}
	m.Parameters = append(m.Parameters, Parameter{Name: name, Type: t, Data: v})
}

// Parameter returns the named parameter.
func (m *Material) Parameter(name string) (Parameter, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
