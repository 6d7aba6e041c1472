package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// glyph is a shaped glyph positioned relative to the start of its line,
// in pixels with y up.
type glyph struct {
	id      uint16
	x, y    float32
	advance float32
}

// lineWidth returns the advance of a shaped line.
func lineWidth(gs []glyph) float32 {
	if len(gs) == 0 {
		return 0
	}
	last := gs[len(gs)-1]
	return last.x + last.advance
}

// shaper runs HarfBuzz over single lines. HarfbuzzShaper carries mutable
// buffers, so instances are pooled.
type shaper struct {
	pool sync.Pool
}

func newShaper() *shaper {
	return &shaper{pool: sync.Pool{
		New: func() any { return &shaping.HarfbuzzShaper{} },
	}}
}

func (s *shaper) shape(f *Font, line string, size float64) []glyph {
	runes := []rune(line)
	if len(runes) == 0 {
		return nil
	}
	in := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.shaping),
		Size:      toFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(in)
	s.pool.Put(hb)

	gs := make([]glyph, len(out.Glyphs))
	var pen float32
	for i, g := range out.Glyphs {
		gs[i] = glyph{
			id:      uint16(g.GlyphID), //nolint:gosec // sfnt glyph ids are 16-bit
			x:       pen + fromFixed(g.XOffset),
			y:       fromFixed(g.YOffset),
			advance: fromFixed(g.Advance),
		}
		pen += gs[i].advance
	}
	return gs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
