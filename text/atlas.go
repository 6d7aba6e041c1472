package text

import (
	"fmt"
	"image"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/g3d/material"
)

const atlasPadding = 1

// atlasGlyph locates a rasterized glyph. rect is empty for glyphs without
// an outline, such as spaces.
type atlasGlyph struct {
	rect image.Rectangle
	// Bitmap lower-left corner relative to the pen, in pixels with y up.
	offsetX, offsetY float32
}

// atlas packs glyph coverage masks of one font size into shelves of an
// alpha image. Entries never move, so texture coordinates stay valid as
// the atlas fills.
type atlas struct {
	name   string
	font   *Font
	size   float64
	img    *image.Alpha
	glyphs map[uint16]atlasGlyph

	x, y, rowH int

	buf  sfnt.Buffer
	rast vector.Rasterizer

	tex   *material.Texture
	gen   int
	dirty bool
}

func newAtlas(name string, f *Font, size float64, width, height int) *atlas {
	return &atlas{
		name:   name,
		font:   f,
		size:   size,
		img:    image.NewAlpha(image.Rect(0, 0, width, height)),
		glyphs: make(map[uint16]atlasGlyph),
		x:      atlasPadding,
		y:      atlasPadding,
	}
}

// glyph returns the atlas entry for id, rasterizing it on first use.
func (a *atlas) glyph(id uint16) (atlasGlyph, error) {
	if g, ok := a.glyphs[id]; ok {
		return g, nil
	}
	g, err := a.rasterize(id)
	if err != nil {
		return atlasGlyph{}, err
	}
	a.glyphs[id] = g
	return g, nil
}

func (a *atlas) rasterize(id uint16) (atlasGlyph, error) {
	segs, err := a.font.outline.LoadGlyph(&a.buf, sfnt.GlyphIndex(id), toFixed(a.size), nil)
	if err != nil {
		return atlasGlyph{}, fmt.Errorf("text: load glyph %d: %w", id, err)
	}
	if len(segs) == 0 {
		return atlasGlyph{}, nil
	}
	// sfnt outlines have y growing down.
	b := segs.Bounds()
	minX, minY := b.Min.X.Floor(), b.Min.Y.Floor()
	maxX, maxY := b.Max.X.Ceil(), b.Max.Y.Ceil()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return atlasGlyph{}, nil
	}
	r, err := a.allocate(w, h)
	if err != nil {
		return atlasGlyph{}, fmt.Errorf("%w: glyph %d (%dx%d)", err, id, w, h)
	}

	ox, oy := float32(minX), float32(minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 - ox, float32(p.Y)/64 - oy
	}
	a.rast.Reset(w, h)
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			a.rast.MoveTo(pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			a.rast.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			a.rast.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			x3, y3 := pt(s.Args[2])
			a.rast.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
	a.rast.ClosePath()
	a.rast.Draw(a.img, r, image.Opaque, image.Point{})
	a.dirty = true

	return atlasGlyph{rect: r, offsetX: ox, offsetY: -float32(maxY)}, nil
}

// allocate reserves a w by h cell on the current shelf, opening a new
// shelf when the row is full.
func (a *atlas) allocate(w, h int) (image.Rectangle, error) {
	bw, bh := a.img.Rect.Dx(), a.img.Rect.Dy()
	if w+2*atlasPadding > bw || h+2*atlasPadding > bh {
		return image.Rectangle{}, ErrAtlasFull
	}
	if a.x+w+atlasPadding > bw {
		a.x = atlasPadding
		a.y += a.rowH + atlasPadding
		a.rowH = 0
	}
	if a.y+h+atlasPadding > bh {
		return image.Rectangle{}, ErrAtlasFull
	}
	r := image.Rect(a.x, a.y, a.x+w, a.y+h)
	a.x += w + atlasPadding
	a.rowH = max(a.rowH, h)
	return r, nil
}

// uv returns the texture coordinates (u0, vTop, u1, vBottom) of r.
func (a *atlas) uv(r image.Rectangle) [4]float32 {
	w, h := float32(a.img.Rect.Dx()), float32(a.img.Rect.Dy())
	return [4]float32{
		float32(r.Min.X) / w,
		float32(r.Min.Y) / h,
		float32(r.Max.X) / w,
		float32(r.Max.Y) / h,
	}
}

// texture returns the atlas as white RGBA texels carrying glyph coverage
// in alpha. Each change yields a texture with a new name so that renderers
// caching textures by name upload the new contents.
func (a *atlas) texture() *material.Texture {
	if a.tex != nil && !a.dirty {
		return a.tex
	}
	a.gen++
	w, h := a.img.Rect.Dx(), a.img.Rect.Dy()
	t := material.NewTexture(fmt.Sprintf("%s#%d", a.name, a.gen), w, h)
	for i, cov := range a.img.Pix {
		t.Pixels[4*i] = 0xff
		t.Pixels[4*i+1] = 0xff
		t.Pixels[4*i+2] = 0xff
		t.Pixels[4*i+3] = cov
	}
	a.tex = t
	a.dirty = false
	return t
}
