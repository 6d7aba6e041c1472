package material

// TextureTarget is the dimensionality of a texture.
type TextureTarget uint8

const (
	Texture1D TextureTarget = iota
	Texture2D
	Texture3D
)

// TextureFilter selects sampling between texels.
type TextureFilter uint8

const (
	FilterNearest TextureFilter = iota
	FilterLinear
)

// TextureWrap selects addressing outside [0, 1].
type TextureWrap uint8

const (
	WrapClamp TextureWrap = iota
	WrapMirroredRepeat
	WrapRepeat
)

// Texture is a CPU-side image destined for a GPU texture. Pixels are
// tightly packed rows of Channels bytes per texel.
type Texture struct {
	Name     string
	Location string
	Target   TextureTarget
	Width    int
	Height   int
	Channels int
	Pixels   []byte

	MinFilter TextureFilter
	MagFilter TextureFilter
	WrapS     TextureWrap
	WrapT     TextureWrap
}

// NewTexture returns a 2D RGBA texture of the given size with zeroed pixels.
func NewTexture(name string, width, height int) *Texture {
	return &Texture{
		Name:      name,
		Target:    Texture2D,
		Width:     width,
		Height:    height,
		Channels:  4,
		Pixels:    make([]byte, width*height*4),
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
	}
}

// Size returns the expected payload size in bytes.
func (t *Texture) Size() int {
	return t.Width * t.Height * t.Channels
}

// Valid reports whether the texture has a non-empty payload that matches
// its dimensions.
func (t *Texture) Valid() bool {
	return t != nil && t.Width > 0 && t.Height > 0 && t.Channels > 0 && len(t.Pixels) == t.Size()
}

// RGBA returns the pixels widened to four channels.
func (t *Texture) RGBA() []byte {
	if t.Channels == 4 {
		return t.Pixels
	}
	n := t.Width * t.Height
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		switch t.Channels {
		case 1:
			v := t.Pixels[i]
			out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = v, v, v, 255
		case 3:
			copy(out[4*i:4*i+3], t.Pixels[3*i:3*i+3])
			out[4*i+3] = 255
		}
	}
	return out
}

// DefaultTextureName names the fallback texture bound when a material has
// no valid texture.
const DefaultTextureName = "default_texture"

// DefaultTexture returns a 2x2 opaque white texture.
func DefaultTexture() *Texture {
	t := NewTexture(DefaultTextureName, 2, 2)
	for i := range t.Pixels {
		t.Pixels[i] = 0xff
	}
	return t
}
