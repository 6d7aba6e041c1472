package material

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageGeometry

	// NumShaderStages is the number of stages a Shader can hold source for.
	NumShaderStages
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Shader holds per-stage source and the names of the vertex attributes and
// uniform buffers it consumes.
type Shader struct {
	Name       string
	Source     [NumShaderStages]string
	Attributes []string
	Uniforms   []string

	// EntryPoints overrides the entry point per stage. Empty entries use
	// "vs_main" and "fs_main".
	EntryPoints [NumShaderStages]string
}

// NewShader returns a shader with vertex and fragment source.
func NewShader(name, vertex, fragment string) *Shader {
	s := &Shader{Name: name}
	s.Source[StageVertex] = vertex
	s.Source[StageFragment] = fragment
	return s
}

// SetSource sets the source of one stage.
func (s *Shader) SetSource(stage ShaderStage, src string) {
	if stage >= NumShaderStages {
		return
	}
	s.Source[stage] = src
}

// HasStage reports whether the stage has source.
func (s *Shader) HasStage(stage ShaderStage) bool {
	return stage < NumShaderStages && s.Source[stage] != ""
}

// AddAttribute appends vertex attribute names.
func (s *Shader) AddAttribute(names ...string) {
	s.Attributes = append(s.Attributes, names...)
}

// AddUniform appends uniform buffer names.
func (s *Shader) AddUniform(names ...string) {
	s.Uniforms = append(s.Uniforms, names...)
}

// EntryPoint returns the entry point for stage.
func (s *Shader) EntryPoint(stage ShaderStage) string {
	if stage < NumShaderStages && s.EntryPoints[stage] != "" {
		return s.EntryPoints[stage]
	}
	if stage == StageFragment {
		return "fs_main"
	}
	return "vs_main"
}

// Clone returns a deep copy of s.
func (s *Shader) Clone() *Shader {
	if s == nil {
		return nil
	}
	c := *s
	c.Attributes = append([]string(nil), s.Attributes...)
	c.Uniforms = append([]string(nil), s.Uniforms...)
	return &c
}
