package text

import "errors"

var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrInvalidSize is returned for a non-positive font or atlas size.
	ErrInvalidSize = errors.New("text: invalid size")

	// ErrAtlasFull is returned when a glyph does not fit in the atlas.
	ErrAtlasFull = errors.New("text: glyph atlas full")

	// ErrTextTooLong is returned when a string needs more quads than a
	// 16-bit index buffer can address.
	ErrTextTooLong = errors.New("text: text too long")

	// ErrNilStager is returned when RenderText has nowhere to stage.
	ErrNilStager = errors.New("text: nil stager")
)
