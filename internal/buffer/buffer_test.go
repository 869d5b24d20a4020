package buffer

import (
	"testing"

	"github.com/stlalpha/textmode/internal/types"
)

func TestLayerInvariant(t *testing.T) {
	l := NewLayer("bg", 10, 5)
	if !l.checkInvariants() {
		t.Fatal("fresh layer violates line/width invariant")
	}
}

func TestSetCharThenCharAtRoundTrips(t *testing.T) {
	b := NewTextBuffer(10, 5)
	attr := types.TextAttribute{Foreground: types.Palette(4), Background: types.Palette(0), Flags: types.AttrBold}
	want := types.AttributedChar{Ch: 'X', Attr: attr}
	if err := b.SetChar(0, types.Position{X: 2, Y: 1}, want); err != nil {
		t.Fatalf("SetChar: %v", err)
	}
	got := b.CharAt(types.Position{X: 2, Y: 1})
	if got.Ch != want.Ch || !got.Attr.Equal(want.Attr) {
		t.Fatalf("CharAt after SetChar = %+v, want %+v", got, want)
	}
}

func TestLockedLayerRejectsWrite(t *testing.T) {
	b := NewTextBuffer(4, 4)
	b.LayersMut()[0].Locked = true
	err := b.SetChar(0, types.Position{X: 0, Y: 0}, types.Space(types.DefaultAttribute()))
	ee, ok := err.(*types.EngineError)
	if !ok || ee.Kind != types.KindBufferLocked {
		t.Fatalf("expected BufferLocked, got %v", err)
	}
}

func TestOffscreenLayerNeverObserved(t *testing.T) {
	b := NewTextBuffer(10, 10)
	off := NewLayer("off", 5, 5)
	off.Offset = types.Position{X: 20, Y: 0} // fully off-screen to the right
	off.Lines[0].Chars[0] = types.AttributedChar{Ch: 'Z', Attr: types.DefaultAttribute()}
	b.AddLayer(off)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := b.CharAt(types.Position{X: x, Y: y})
			if c.Ch == 'Z' {
				t.Fatalf("off-screen layer content observed at (%d,%d)", x, y)
			}
		}
	}
}

func TestCompositionCharsOnlyKeepsLowerAttr(t *testing.T) {
	b := NewTextBuffer(3, 1)
	bottomAttr := types.TextAttribute{Foreground: types.Palette(2), Background: types.Palette(0)}
	b.LayersMut()[0].Lines[0].Chars[0] = types.AttributedChar{Ch: 'a', Attr: bottomAttr}

	top := NewLayer("top", 3, 1)
	top.Composition = CompositionCharsOnly
	top.Lines[0].Chars[0] = types.AttributedChar{Ch: 'b', Attr: types.TextAttribute{Foreground: types.Palette(9)}}
	b.AddLayer(top)

	got := b.CharAt(types.Position{X: 0, Y: 0})
	if got.Ch != 'b' {
		t.Fatalf("expected top layer's char 'b', got %q", got.Ch)
	}
	if !got.Attr.Equal(bottomAttr) {
		t.Fatalf("CharsOnly composition should keep lower attribute, got %+v want %+v", got.Attr, bottomAttr)
	}
}

func TestResizeUndoRestoresEvictedCells(t *testing.T) {
	l := NewLayer("x", 4, 4)
	l.Lines[3].Chars[3] = types.AttributedChar{Ch: 'Q', Attr: types.DefaultAttribute()}

	undo, err := l.Resize(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	l.UndoResize(undo)
	if l.Width != 4 || l.Height != 4 {
		t.Fatalf("undo did not restore size: got %dx%d", l.Width, l.Height)
	}
	if got := l.CharAt(3, 3); got.Ch != 'Q' {
		t.Fatalf("undo did not restore evicted cell, got %q", got.Ch)
	}
}

func TestBoundarySingleCellBuffer(t *testing.T) {
	b := NewTextBuffer(1, 1)
	if err := b.SetChar(0, types.Position{X: 0, Y: 0}, types.AttributedChar{Ch: 'A', Attr: types.DefaultAttribute()}); err != nil {
		t.Fatal(err)
	}
	if got := b.CharAt(types.Position{X: 0, Y: 0}); got.Ch != 'A' {
		t.Fatalf("1x1 buffer round trip failed: %q", got.Ch)
	}
}

func TestBoundaryZeroSizeBuffer(t *testing.T) {
	b := NewTextBuffer(0, 0)
	if d := b.Dimensions(); d.Width != 0 || d.Height != 0 {
		t.Fatalf("zero-size buffer reports %+v", d)
	}
}

func TestTerminalBufferGrowsOnOOBWrite(t *testing.T) {
	b := NewTextBuffer(2, 2)
	b.SetTerminalBuffer(true)
	if err := b.SetChar(0, types.Position{X: 5, Y: 5}, types.AttributedChar{Ch: 'G', Attr: types.DefaultAttribute()}); err != nil {
		t.Fatalf("terminal buffer should grow, got error: %v", err)
	}
	if got := b.CharAt(types.Position{X: 5, Y: 5}); got.Ch != 'G' {
		t.Fatalf("grown cell not observable: %q", got.Ch)
	}
}

func TestEditedBufferRejectsOOBWrite(t *testing.T) {
	b := NewTextBuffer(2, 2)
	err := b.SetChar(0, types.Position{X: 5, Y: 5}, types.AttributedChar{Ch: 'G', Attr: types.DefaultAttribute()})
	ee, ok := err.(*types.EngineError)
	if !ok || ee.Kind != types.KindOutOfBounds {
		t.Fatalf("expected OutOfBounds, got %v", err)
	}
}

func TestMaskUnionAndSubtract(t *testing.T) {
	m := NewMask(5, 5)
	sel := Selection{Anchor: types.Position{X: 1, Y: 1}, Lead: types.Position{X: 3, Y: 3}, Shape: ShapeRectangle}
	m.UnionSelection(sel)
	if !m.Get(2, 2) {
		t.Fatal("expected (2,2) set after union")
	}
	m.SubtractSelection(sel)
	if !m.IsEmpty() {
		t.Fatal("expected mask empty after subtract")
	}
}

func TestSelectionRectangleNormalizesCorners(t *testing.T) {
	sel := Selection{Anchor: types.Position{X: 5, Y: 5}, Lead: types.Position{X: 1, Y: 1}, Shape: ShapeRectangle}
	if !sel.Contains(3, 3) {
		t.Fatal("rectangle selection given reversed corners should still contain interior point")
	}
}

func TestPaletteExhausted(t *testing.T) {
	p := &Palette{Mode: PaletteRGB, Colors: make([]types.Color, 256)}
	_, err := p.Insert(types.Color{})
	ee, ok := err.(*types.EngineError)
	if !ok || ee.Kind != types.KindPaletteExhausted {
		t.Fatalf("expected PaletteExhausted, got %v", err)
	}
}
