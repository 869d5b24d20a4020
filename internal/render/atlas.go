// Package render turns a buffer.Screen into pixels (spec §4.10): a glyph
// atlas rasterized from each referenced BitFont, a cell-texture built by
// walking the visible viewport, and a CPU compositor that blends the two
// into an RGBA image with selection coloring, a caret rectangle, and an
// optional reference-image underlay. No repo in the example pack renders
// bitmap glyphs to pixels, so the atlas/compositor shape here follows
// stlalpha-vision3's other "build an indexed cache, key it by the inputs
// that invalidate it" precedents (codec.Registry keyed by extension,
// viewthread's format detection) rather than any single retrieved file.
package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/stlalpha/textmode/internal/buffer"
)

// cellWidth is the fixed glyph width every BitFont uses (spec §3.3: "8-
// pixel-wide ... glyph matrix").
const cellWidth = 8

// AtlasKey identifies a cached glyph atlas: the font's identity (by
// pointer, since BitFont carries no stable ID of its own) and whether
// letter-spacing (the "9th column") is enabled.
type AtlasKey struct {
	Font          *buffer.BitFont
	LetterSpacing bool
}

// Atlas is a 16-column strip of every glyph in one BitFont, rasterized to
// 1-bit-per-pixel coverage (spec §4.10 step 1). Column count per glyph is
// cellWidth, or cellWidth+1 when letter spacing replicates column 7 for
// the CP437 line-drawing range (0xC0..0xDF).
type Atlas struct {
	Font          *buffer.BitFont
	LetterSpacing bool
	GlyphWidth    int
	GlyphHeight   int
	Columns       int
	Rows          int
	// Coverage is Columns*GlyphWidth wide by Rows*GlyphHeight tall; each
	// byte is 1 where the glyph pixel is set, 0 otherwise.
	Coverage []byte
	Stride   int
}

const atlasColumns = 16

// letterSpacingLow, letterSpacingHigh bound the CP437 line-drawing glyphs
// (0xC0..0xDF) whose rightmost column replicates into a 9th column so
// adjoining box-drawing cells don't show a seam (spec §4.10, GLOSSARY
// "Letter spacing").
const (
	letterSpacingLow  = 0xC0
	letterSpacingHigh = 0xDF
)

// BuildAtlas rasterizes every glyph of f into a 16-column coverage strip.
func BuildAtlas(f *buffer.BitFont, letterSpacing bool) *Atlas {
	glyphWidth := cellWidth
	if letterSpacing {
		glyphWidth = cellWidth + 1
	}
	count := f.CharCount()
	rows := (count + atlasColumns - 1) / atlasColumns
	stride := atlasColumns * glyphWidth
	a := &Atlas{
		Font:          f,
		LetterSpacing: letterSpacing,
		GlyphWidth:    glyphWidth,
		GlyphHeight:   f.Height,
		Columns:       atlasColumns,
		Rows:          rows,
		Stride:        stride,
		Coverage:      make([]byte, stride*rows*f.Height),
	}
	for ch := 0; ch < count; ch++ {
		col := ch % atlasColumns
		row := ch / atlasColumns
		originX := col * glyphWidth
		originY := row * f.Height
		for y := 0; y < f.Height; y++ {
			for x := 0; x < cellWidth; x++ {
				if f.Pixel(ch, x, y) {
					a.set(originX+x, originY+y)
				}
			}
			if letterSpacing && ch >= letterSpacingLow && ch <= letterSpacingHigh {
				if f.Pixel(ch, 7, y) {
					a.set(originX+cellWidth, originY+y)
				}
			}
		}
	}
	return a
}

func (a *Atlas) set(x, y int) {
	a.Coverage[y*a.Stride+x] = 1
}

// At reports whether the glyph ch has a set pixel at (x, y) within its
// cell, where x ranges over [0, GlyphWidth).
func (a *Atlas) At(ch, x, y int) bool {
	if ch < 0 || ch >= a.Font.CharCount() || x < 0 || x >= a.GlyphWidth || y < 0 || y >= a.GlyphHeight {
		return false
	}
	col := ch % a.Columns
	row := ch / a.Columns
	return a.Coverage[(row*a.GlyphHeight+y)*a.Stride+col*a.GlyphWidth+x] != 0
}

// Image renders the atlas as a 1-bit (black/white) debug image, useful
// for inspecting a font without a full cell-composited frame.
func (a *Atlas) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, a.Stride, a.Rows*a.GlyphHeight))
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < a.Stride; x++ {
			if a.Coverage[y*a.Stride+x] != 0 {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return img
}

// Cache memoizes atlases by (font, letter-spacing), since rebuilding one
// is a full rasterization pass over every glyph of the font (spec §4.10:
// "Cache by (font_id, letter_spacing)"). Safe for concurrent readers: the
// renderer (and the UI view-model, per spec §5) may each hold one.
type Cache struct {
	mu    sync.Mutex
	atlas map[AtlasKey]*Atlas
}

// NewCache returns an empty atlas cache.
func NewCache() *Cache {
	return &Cache{atlas: make(map[AtlasKey]*Atlas)}
}

// Get returns the cached atlas for (f, letterSpacing), building and
// caching one if this is the first request for that key.
func (c *Cache) Get(f *buffer.BitFont, letterSpacing bool) *Atlas {
	key := AtlasKey{Font: f, LetterSpacing: letterSpacing}
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.atlas[key]; ok {
		return a
	}
	a := BuildAtlas(f, letterSpacing)
	c.atlas[key] = a
	return a
}

// Invalidate drops every cached atlas for font f (its glyph data changed
// under the loaded font-editing surface, e.g. SetGlyph).
func (c *Cache) Invalidate(f *buffer.BitFont) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.atlas {
		if k.Font == f {
			delete(c.atlas, k)
		}
	}
}
