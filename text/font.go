package text

import (
	"bytes"
	"fmt"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Font is a parsed TrueType or OpenType font. The outline tables feed the
// glyph atlas and the shaping tables feed HarfBuzz.
//
// Font is safe for concurrent use.
type Font struct {
	name    string
	outline *opentype.Font
	shaping *gotext.Font
}

// ParseFont parses font data.
func ParseFont(data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	outline, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font tables: %w", err)
	}
	name, err := outline.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		name = ""
	}
	return &Font{name: name, outline: outline, shaping: face.Font}, nil
}

var loadDefault = sync.OnceValues(func() (*Font, error) {
	return ParseFont(goregular.TTF)
})

// DefaultFont returns Go Regular, parsed once per process.
func DefaultFont() (*Font, error) { return loadDefault() }

// Name returns the family name, or "" if the font has none.
func (f *Font) Name() string { return f.name }

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.outline.NumGlyphs() }

// Metrics holds vertical font metrics in pixels.
type Metrics struct {
	Ascent     float32
	Descent    float32
	LineHeight float32
}

// Metrics returns the metrics at size pixels per em.
func (f *Font) Metrics(size float64) (Metrics, error) {
	m, err := f.outline.Metrics(nil, toFixed(size), font.HintingNone)
	if err != nil {
		return Metrics{}, fmt.Errorf("text: font metrics: %w", err)
	}
	return Metrics{
		Ascent:     fromFixed(m.Ascent),
		Descent:    fromFixed(m.Descent),
		LineHeight: fromFixed(m.Height),
	}, nil
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }
