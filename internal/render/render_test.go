package render

import (
	"image/color"
	"testing"
	"time"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

func solidGlyphFont() *buffer.BitFont {
	f := buffer.NewBitFont("test", 8, false)
	row := byte(0xff) // every pixel set, full 8x8 block
	for ch := 0; ch < f.CharCount(); ch++ {
		f.SetGlyph(ch, []byte{row, row, row, row, row, row, row, row})
	}
	return f
}

func bufferWithChar(ch rune, fg, bg uint8) *buffer.TextBuffer {
	b := buffer.NewTextBuffer(4, 2)
	b.SetFont(0, solidGlyphFont())
	attr := types.TextAttribute{Foreground: types.Palette(fg), Background: types.Palette(bg)}
	b.SetChar(0, types.Position{X: 0, Y: 0}, types.AttributedChar{Ch: ch, Attr: attr})
	return b
}

func TestBuildAtlasProducesOneCellPerGlyph(t *testing.T) {
	f := solidGlyphFont()
	a := BuildAtlas(f, false)
	if a.GlyphWidth != cellWidth || a.GlyphHeight != f.Height {
		t.Fatalf("expected glyph dims %dx%d, got %dx%d", cellWidth, f.Height, a.GlyphWidth, a.GlyphHeight)
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < cellWidth; x++ {
			if !a.At('A', x, y) {
				t.Fatalf("expected solid glyph 'A' to have every pixel set, missing at (%d,%d)", x, y)
			}
		}
	}
}

func TestLetterSpacingReplicatesColumnSevenForLineDrawingRange(t *testing.T) {
	f := buffer.NewBitFont("test", 1, false)
	// Only the rightmost pixel (column 7) is set.
	f.SetGlyph(letterSpacingLow, []byte{0x01})
	a := BuildAtlas(f, true)
	if a.GlyphWidth != cellWidth+1 {
		t.Fatalf("expected letter-spaced glyph width %d, got %d", cellWidth+1, a.GlyphWidth)
	}
	if !a.At(letterSpacingLow, 7, 0) || !a.At(letterSpacingLow, 8, 0) {
		t.Fatal("expected column 7 to be replicated into the 9th column for a CP437 line-drawing glyph")
	}

	other := buffer.NewBitFont("test", 1, false)
	other.SetGlyph(0x41, []byte{0x01})
	ao := BuildAtlas(other, true)
	if ao.At(0x41, 8, 0) {
		t.Fatal("expected glyphs outside 0xC0..0xDF to not get a replicated 9th column")
	}
}

func TestCacheReturnsSameAtlasForSameKey(t *testing.T) {
	c := NewCache()
	f := solidGlyphFont()
	a1 := c.Get(f, false)
	a2 := c.Get(f, false)
	if a1 != a2 {
		t.Fatal("expected cache to return the same atlas instance for an unchanged key")
	}
	a3 := c.Get(f, true)
	if a3 == a1 {
		t.Fatal("expected a distinct atlas for a different letter-spacing key")
	}
}

func TestRenderColorsMatchCellAttribute(t *testing.T) {
	b := bufferWithChar('A', 4 /* red */, 1 /* blue */)
	cache := NewCache()
	vp := Viewport{VisibleCols: 1, VisibleRows: 1, Zoom: 1}
	opts := DefaultOptions()
	opts.CaretVisible = false

	img := Render(b, vp, cache, opts)
	want := color.RGBA{R: 0xAA, G: 0x00, B: 0x00, A: 0xff} // palette red
	got := img.RGBAAt(0, 0)
	if got != want {
		t.Fatalf("expected solid glyph pixel to be palette red %v, got %v", want, got)
	}
}

func TestBlinkingCellUsesBackgroundColorWhenBlinkIsOff(t *testing.T) {
	b := bufferWithChar('A', 4, 1)
	attr := types.TextAttribute{Foreground: types.Palette(4), Background: types.Palette(1), Flags: types.AttrBlink}
	b.SetChar(0, types.Position{X: 0, Y: 0}, types.AttributedChar{Ch: 'A', Attr: attr})

	cache := NewCache()
	vp := Viewport{VisibleCols: 1, VisibleRows: 1, Zoom: 1}
	opts := DefaultOptions()
	opts.CaretVisible = false
	epoch := opts.Now.Add(-2 * charBlinkPeriod) // force the "off" half of the cycle
	opts.CharBlinkClock = NewCharBlinkClock(epoch.Add(charBlinkPeriod))

	img := Render(b, vp, cache, opts)
	wantBg := color.RGBA{R: 0x00, G: 0x00, B: 0xAA, A: 0xff} // palette blue, same as fg would collapse to
	got := img.RGBAAt(0, 0)
	if got != wantBg {
		t.Fatalf("expected blinked-off cell to show background color %v, got %v", wantBg, got)
	}
}

func TestZoomScalesPixelGrid(t *testing.T) {
	b := bufferWithChar('A', 7, 0)
	cache := NewCache()
	vp := Viewport{VisibleCols: 1, VisibleRows: 1, Zoom: 3}
	opts := DefaultOptions()
	opts.CaretVisible = false

	img := Render(b, vp, cache, opts)
	bounds := img.Bounds()
	if bounds.Dx() != cellWidth*3 || bounds.Dy() != 8*3 {
		t.Fatalf("expected zoomed image %dx%d, got %dx%d", cellWidth*3, 24, bounds.Dx(), bounds.Dy())
	}
}

func TestCaretDrawnAtTrackedPosition(t *testing.T) {
	b := buffer.NewTextBuffer(2, 1)
	b.SetFont(0, solidGlyphFont())
	cache := NewCache()
	vp := Viewport{VisibleCols: 2, VisibleRows: 1, Zoom: 1}
	opts := DefaultOptions()
	opts.CaretVisible = true
	opts.CaretPos = types.Position{X: 1, Y: 0}
	opts.CaretClock = NewBlinkClock(time.Hour, opts.Now.Add(-time.Minute)) // always on

	img := Render(b, vp, cache, opts)
	bottomRow := img.Bounds().Dy() - 1
	caret := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	got := img.RGBAAt(1*cellWidth, bottomRow)
	if got != caret {
		t.Fatal("expected a caret pixel to be drawn at the tracked caret column")
	}
	gotOther := img.RGBAAt(0, bottomRow)
	if gotOther == caret {
		t.Fatal("expected no caret pixel outside the caret's column")
	}
}

func TestRenderCPUFallbackProducesRequestedSize(t *testing.T) {
	b := bufferWithChar('A', 7, 0)
	cache := NewCache()
	img := RenderCPUFallback(b, cache, 64, 32)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Fatalf("expected 64x32 fallback image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestBlinkClockTogglesAtHalfPeriod(t *testing.T) {
	epoch := time.Unix(0, 0)
	c := NewBlinkClock(100*time.Millisecond, epoch)
	if !c.IsOn(epoch) {
		t.Fatal("expected clock to start in its on phase")
	}
	if c.IsOn(epoch.Add(150 * time.Millisecond)) {
		t.Fatal("expected clock to be off in its second half-cycle")
	}
	if !c.IsOn(epoch.Add(250 * time.Millisecond)) {
		t.Fatal("expected clock to be back on in its third half-cycle")
	}
}
