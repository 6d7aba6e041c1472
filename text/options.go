package text

import "github.com/go-gl/mathgl/mgl32"

// Option configures a FontRenderer.
type Option func(*options)

type options struct {
	font      *Font
	size      float64
	atlasW    int
	atlasH    int
	color     mgl32.Vec4
	cacheSize int
	name      string
}

func defaultOptions() options {
	return options{
		size:      16,
		atlasW:    512,
		atlasH:    512,
		color:     mgl32.Vec4{1, 1, 1, 1},
		cacheSize: 256,
		name:      "font",
	}
}

// WithFont selects the font. The default is Go Regular.
func WithFont(f *Font) Option {
	return func(o *options) {
		o.font = f
	}
}

// WithSize sets the font size in pixels per em.
func WithSize(px float64) Option {
	return func(o *options) {
		o.size = px
	}
}

// WithAtlasSize sets the glyph atlas dimensions in texels.
func WithAtlasSize(width, height int) Option {
	return func(o *options) {
		o.atlasW = width
		o.atlasH = height
	}
}

// WithColor sets the diffuse color of the text material.
func WithColor(c mgl32.Vec4) Option {
	return func(o *options) {
		o.color = c
	}
}

// WithCacheSize sets how many shaped lines are kept. 0 means unlimited.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithName sets the material name. Renderers sharing a library need
// distinct names.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
