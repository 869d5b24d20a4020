package render

import (
	"image"
	"image/color"
	"time"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// Viewport describes the visible window into a Screen (spec §4.10): a
// top-left cell, the number of visible cells, and an integer pixel zoom.
type Viewport struct {
	Left, Top                int
	VisibleCols, VisibleRows int
	Zoom                     int
}

// CellPlanes is the "(W+1, H+1, 3) planes" cell texture spec §4.10 step 2
// describes: for every visible cell plus one trailing row/column (so
// letter-spacing and caret-at-edge lookups never read out of bounds),
// the character, its foreground/background colors, its font page, and
// blink/selected flags.
type CellPlanes struct {
	Cols, Rows int
	Char       []rune
	Fg         []color.RGBA
	Bg         []color.RGBA
	FontPage   []uint8
	Blink      []bool
	Selected   []bool
}

func newCellPlanes(cols, rows int) *CellPlanes {
	n := (cols + 1) * (rows + 1)
	return &CellPlanes{
		Cols: cols, Rows: rows,
		Char:     make([]rune, n),
		Fg:       make([]color.RGBA, n),
		Bg:       make([]color.RGBA, n),
		FontPage: make([]uint8, n),
		Blink:    make([]bool, n),
		Selected: make([]bool, n),
	}
}

func (p *CellPlanes) index(x, y int) int { return y*(p.Cols+1) + x }

// BuildCellPlanes walks the viewport's cells out of screen and resolves
// each cell's colors against pal (spec §4.10 step 2).
func BuildCellPlanes(screen buffer.Screen, vp Viewport) *CellPlanes {
	planes := newCellPlanes(vp.VisibleCols, vp.VisibleRows)
	pal := screen.Palette()
	sel, hasSel := screen.Selection()

	for y := 0; y <= vp.VisibleRows; y++ {
		for x := 0; x <= vp.VisibleCols; x++ {
			cx, cy := vp.Left+x, vp.Top+y
			c := screen.CharAt(types.Position{X: cx, Y: cy})
			i := planes.index(x, y)
			planes.Char[i] = c.Ch
			planes.Fg[i] = resolveColor(pal, c.Attr.Foreground)
			planes.Bg[i] = resolveColor(pal, c.Attr.Background)
			planes.FontPage[i] = c.Attr.FontPage
			planes.Blink[i] = c.Attr.Has(types.AttrBlink) && !c.Attr.Has(types.AttrInvisible)
			planes.Selected[i] = hasSel && sel.Contains(cx, cy)
		}
	}
	return planes
}

// resolveColor turns a tagged-union AttributeColor into a concrete RGBA,
// looking palette/extended-palette indices up in pal. Transparent colors
// report alpha 0 so the compositor can skip painting that plane.
func resolveColor(pal *buffer.Palette, c types.AttributeColor) color.RGBA {
	switch c.Kind {
	case types.ColorRGB:
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	case types.ColorTransparent:
		return color.RGBA{}
	default:
		idx := int(c.Index)
		if idx < 0 || idx >= pal.Len() {
			return color.RGBA{A: 0xff}
		}
		rgb := pal.At(idx)
		return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}
	}
}

// Options controls composition details beyond the raw cell data: the
// caret position/visibility, an optional reference-image underlay, and
// the two blink clocks (spec §4.10 steps 3-4).
type Options struct {
	LetterSpacing  bool
	SelectionFg    color.RGBA
	SelectionBg    color.RGBA
	CaretPos       types.Position
	CaretVisible   bool
	CaretClock     *BlinkClock
	CharBlinkClock *BlinkClock
	Now            time.Time
	ReferenceImage image.Image
	ReferenceAlpha float64 // 0..1
}

// DefaultOptions returns composition options with no selection coloring,
// no caret, and no reference underlay: a plain render of the buffer.
func DefaultOptions() Options {
	now := time.Now()
	return Options{
		SelectionFg:    color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		SelectionBg:    color.RGBA{R: 0x00, G: 0x00, B: 0xaa, A: 0xff},
		Now:            now,
		CaretClock:     NewCaretBlinkClock(now),
		CharBlinkClock: NewCharBlinkClock(now),
	}
}

// Render composes a full RGBA frame for screen's viewport (spec §4.10):
// build the cell texture, paint the optional alpha-blended reference image
// as an underlay, then the shader/CPU blend draws each cell's glyph
// through the atlas with selection-mask coloring, and finally draws the
// caret rectangle.
func Render(screen buffer.Screen, vp Viewport, cache *Cache, opts Options) *image.RGBA {
	planes := BuildCellPlanes(screen, vp)
	fontTable := fontTableOf(screen)

	cellW, cellH := cellWidth, 8
	if f := fontTable.Get(0); f != nil {
		cellH = f.Height
	}
	if opts.LetterSpacing {
		cellW++
	}
	zoom := vp.Zoom
	if zoom < 1 {
		zoom = 1
	}

	imgW := vp.VisibleCols * cellW * zoom
	imgH := vp.VisibleRows * cellH * zoom
	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))

	if opts.ReferenceImage != nil && opts.ReferenceAlpha > 0 {
		drawReferenceUnderlay(img, opts.ReferenceImage, opts.ReferenceAlpha)
	}

	charBlinkOn := true
	if opts.CharBlinkClock != nil {
		charBlinkOn = opts.CharBlinkClock.IsOn(opts.Now)
	}

	for y := 0; y < vp.VisibleRows; y++ {
		for x := 0; x < vp.VisibleCols; x++ {
			i := planes.index(x, y)
			ch := planes.Char[i]
			if ch == types.InvisibleChar {
				continue
			}
			font := fontTable.Get(planes.FontPage[i])
			if font == nil {
				font = fontTable.Get(0)
			}
			if font == nil {
				continue
			}
			atlas := cache.Get(font, opts.LetterSpacing)

			fg, bg := planes.Fg[i], planes.Bg[i]
			if planes.Selected[i] {
				fg, bg = opts.SelectionFg, opts.SelectionBg
			}
			if planes.Blink[i] && !charBlinkOn {
				fg = bg
			}

			drawCell(img, atlas, int(ch), x*cellW*zoom, y*cellH*zoom, zoom, fg, bg)
		}
	}

	if opts.CaretVisible && (opts.CaretClock == nil || opts.CaretClock.IsOn(opts.Now)) {
		drawCaret(img, opts.CaretPos, vp, cellW, cellH, zoom)
	}

	return img
}

// fontTableOf collects every font page the buffer references into a
// lookup the compositor can query without re-walking FontIter per cell.
func fontTableOf(screen buffer.Screen) *buffer.FontTable {
	t := buffer.NewFontTable()
	screen.FontIter(func(slot uint8, f *buffer.BitFont) {
		t.Set(slot, f)
	})
	return t
}

func drawCell(img *image.RGBA, atlas *Atlas, ch, originX, originY, zoom int, fg, bg color.RGBA) {
	for gy := 0; gy < atlas.GlyphHeight; gy++ {
		for gx := 0; gx < atlas.GlyphWidth; gx++ {
			px := atlas.At(ch, gx, gy)
			c := bg
			if px {
				c = fg
			}
			if c.A == 0 {
				continue
			}
			for zy := 0; zy < zoom; zy++ {
				for zx := 0; zx < zoom; zx++ {
					img.SetRGBA(originX+gx*zoom+zx, originY+gy*zoom+zy, c)
				}
			}
		}
	}
}

func drawCaret(img *image.RGBA, pos types.Position, vp Viewport, cellW, cellH, zoom int) {
	cx := pos.X - vp.Left
	cy := pos.Y - vp.Top
	if cx < 0 || cx >= vp.VisibleCols || cy < 0 || cy >= vp.VisibleRows {
		return
	}
	originX := cx * cellW * zoom
	originY := cy * cellH * zoom
	caretH := 2 * zoom
	for dy := 0; dy < caretH; dy++ {
		for dx := 0; dx < cellW*zoom; dx++ {
			img.SetRGBA(originX+dx, originY+cellH*zoom-caretH+dy, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		}
	}
}

// drawReferenceUnderlay paints ref into img at alpha, scaled to img's
// bounds with nearest-neighbor sampling (spec §4.10: "reference image
// underlay with alpha").
func drawReferenceUnderlay(img *image.RGBA, ref image.Image, alpha float64) {
	bounds := img.Bounds()
	refBounds := ref.Bounds()
	if refBounds.Dx() == 0 || refBounds.Dy() == 0 {
		return
	}
	for y := 0; y < bounds.Dy(); y++ {
		sy := refBounds.Min.Y + y*refBounds.Dy()/bounds.Dy()
		for x := 0; x < bounds.Dx(); x++ {
			sx := refBounds.Min.X + x*refBounds.Dx()/bounds.Dx()
			r, g, b, a := ref.At(sx, sy).RGBA()
			blended := color.RGBA{
				R: uint8(float64(r>>8) * alpha),
				G: uint8(float64(g>>8) * alpha),
				B: uint8(float64(b>>8) * alpha),
				A: uint8(float64(a>>8) * alpha),
			}
			img.SetRGBA(bounds.Min.X+x, bounds.Min.Y+y, blended)
		}
	}
}
