package text

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/internal/cache"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/mesh"
)

// maxQuads is the most glyph quads a 16-bit index buffer can address.
const maxQuads = 1 << 14

// Stager receives text box meshes. *render.Service implements it.
//
// A box may be rebuilt after its previous mesh was staged in the same
// frame, so ReleaseMesh must keep whatever queued commands reference alive
// until they have been dispatched.
type Stager interface {
	AddMesh(m *mesh.Mesh, numInstances int) error
	ReleaseMesh(m *mesh.Mesh)
}

type box struct {
	text string
	x, y int
	mesh *mesh.Mesh
}

// FontRenderer draws text boxes identified by caller-chosen ids. A box is
// rebuilt only when its text or position changes.
//
// FontRenderer is not safe for concurrent use.
type FontRenderer struct {
	name     string
	lib      *material.Library
	font     *Font
	size     float64
	metrics  Metrics
	material material.Handle
	atlas    *atlas
	shaper   *shaper
	lines    *cache.Cache[string, []glyph]
	builder  *mesh.Builder
	boxes    map[uint32]*box
}

// NewFontRenderer creates a renderer whose material lives in lib.
func NewFontRenderer(lib *material.Library, opts ...Option) (*FontRenderer, error) {
	if lib == nil {
		return nil, errors.New("text: nil material library")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.size <= 0 || o.atlasW <= 0 || o.atlasH <= 0 {
		return nil, fmt.Errorf("%w: size %v, atlas %dx%d", ErrInvalidSize, o.size, o.atlasW, o.atlasH)
	}
	f := o.font
	if f == nil {
		var err error
		if f, err = DefaultFont(); err != nil {
			return nil, err
		}
	}
	metrics, err := f.Metrics(o.size)
	if err != nil {
		return nil, err
	}

	a := newAtlas(o.name+"_atlas", f, o.size, o.atlasW, o.atlasH)
	mat := material.New(o.name, material.TypeFlat)
	mat.SetColor(material.Diffuse, o.color)
	mat.AddTexture(a.texture())
	h, err := lib.Add(mat)
	if err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}

	g3d.Logger().Debug("text: font renderer created", "font", f.Name(), "size", o.size, "material", h)
	return &FontRenderer{
		name:     o.name,
		lib:      lib,
		font:     f,
		size:     o.size,
		metrics:  metrics,
		material: h,
		atlas:    a,
		shaper:   newShaper(),
		lines:    cache.New[string, []glyph](o.cacheSize),
		builder:  mesh.NewBuilder(),
		boxes:    make(map[uint32]*box),
	}, nil
}

// Font returns the font.
func (r *FontRenderer) Font() *Font { return r.font }

// Size returns the font size in pixels per em.
func (r *FontRenderer) Size() float64 { return r.size }

// Metrics returns the font metrics at the renderer size.
func (r *FontRenderer) Metrics() Metrics { return r.metrics }

// Material returns the handle of the text material.
func (r *FontRenderer) Material() material.Handle { return r.material }

// NumBoxes returns the number of text boxes.
func (r *FontRenderer) NumBoxes() int { return len(r.boxes) }

// Text returns the normalized text of box id.
func (r *FontRenderer) Text(id uint32) (string, bool) {
	b, ok := r.boxes[id]
	if !ok {
		return "", false
	}
	return b.text, true
}

// Mesh returns the mesh of box id, or nil for unknown ids and blank text.
func (r *FontRenderer) Mesh(id uint32) *mesh.Mesh {
	if b, ok := r.boxes[id]; ok {
		return b.mesh
	}
	return nil
}

// RenderText sets the text and baseline origin of box id and stages its
// mesh into st. Lines are separated by '\n'. A box whose text has no
// visible glyphs is recorded but stages nothing.
//
// If the new text cannot be built, the box keeps its previous contents.
func (r *FontRenderer) RenderText(x, y int, id uint32, s string, st Stager) error {
	if st == nil {
		return ErrNilStager
	}
	s = norm.NFC.String(s)

	b := r.boxes[id]
	if b == nil || b.text != s || b.x != x || b.y != y {
		m, err := r.build(x, y, id, s)
		if err != nil {
			g3d.Logger().Warn("text: box not rebuilt", "id", id, "err", err)
			return err
		}
		if b != nil && b.mesh != nil {
			st.ReleaseMesh(b.mesh)
		}
		b = &box{text: s, x: x, y: y, mesh: m}
		r.boxes[id] = b
		g3d.Logger().Debug("text: box built", "id", id, "glyphs", len([]rune(s)))
	}
	r.syncTexture()

	if b.mesh == nil {
		return nil
	}
	return st.AddMesh(b.mesh, 1)
}

// Measure returns the width of the widest line and the height of all
// lines of s.
func (r *FontRenderer) Measure(s string) (width, height float32) {
	lines := strings.Split(norm.NFC.String(s), "\n")
	for _, line := range lines {
		width = max(width, lineWidth(r.shape(line)))
	}
	return width, float32(len(lines)) * r.metrics.LineHeight
}

// Remove deletes box id and releases its mesh through st, which may be
// nil if the mesh was never staged.
func (r *FontRenderer) Remove(id uint32, st Stager) bool {
	b, ok := r.boxes[id]
	if !ok {
		return false
	}
	if b.mesh != nil && st != nil {
		st.ReleaseMesh(b.mesh)
	}
	delete(r.boxes, id)
	return true
}

// Clear removes every box.
func (r *FontRenderer) Clear(st Stager) {
	for id := range r.boxes {
		r.Remove(id, st)
	}
}

// Close releases the text material. Boxes must be cleared first if their
// meshes were staged.
func (r *FontRenderer) Close() {
	r.lib.Release(r.material)
	r.lines.Clear()
}

func (r *FontRenderer) shape(line string) []glyph {
	return r.lines.GetOrCreate(line, func() []glyph {
		return r.shaper.shape(r.font, line, r.size)
	})
}

func (r *FontRenderer) build(x, y int, id uint32, s string) (*mesh.Mesh, error) {
	var rects, uvs []mgl32.Vec4
	for i, line := range strings.Split(s, "\n") {
		baseline := float32(y) - float32(i)*r.metrics.LineHeight
		for _, g := range r.shape(line) {
			ag, err := r.atlas.glyph(g.id)
			if err != nil {
				return nil, err
			}
			if ag.rect.Empty() {
				continue
			}
			rects = append(rects, mgl32.Vec4{
				float32(x) + g.x + ag.offsetX,
				baseline + g.y + ag.offsetY,
				float32(ag.rect.Dx()),
				float32(ag.rect.Dy()),
			})
			uvs = append(uvs, mgl32.Vec4(r.atlas.uv(ag.rect)))
		}
	}
	if len(rects) == 0 {
		return nil, nil
	}
	if len(rects) > maxQuads {
		return nil, fmt.Errorf("%w: %d glyphs", ErrTextTooLong, len(rects))
	}
	m := r.builder.WithName(fmt.Sprintf("%s_box%d", r.name, id)).Quads(rects, uvs)
	m.SetMaterial(r.material)
	return m, nil
}

// syncTexture points the material at the current atlas contents.
func (r *FontRenderer) syncTexture() {
	if !r.atlas.dirty {
		return
	}
	if mat := r.lib.Get(r.material); mat != nil {
		mat.Textures = []*material.Texture{r.atlas.texture()}
	}
}
