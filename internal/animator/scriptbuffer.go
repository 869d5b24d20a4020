package animator

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// scriptBuffer is the handle a Lua script actually manipulates. TextBuffer
// itself has no live caret or "current attribute" (buffer.(*TextBuffer)
// .Caret always reports the origin; only editstate.EditState and
// parser.ScreenSink track one), so scriptBuffer carries that state itself,
// following the precedent set by parser.ScreenSink: wrap the buffer rather
// than extend it with state only one caller needs.
type scriptBuffer struct {
	buf   *buffer.TextBuffer
	caret types.Position
	attr  types.TextAttribute
}

func newScriptBuffer(width, height int) *scriptBuffer {
	return &scriptBuffer{buf: buffer.NewTextBuffer(width, height), attr: types.DefaultAttribute()}
}

func wrapScriptBuffer(b *buffer.TextBuffer) *scriptBuffer {
	return &scriptBuffer{buf: b, attr: types.DefaultAttribute()}
}

func (s *scriptBuffer) gotoxy(x, y int) {
	s.caret = types.Position{X: x, Y: y}
}

func (s *scriptBuffer) setFgPalette(idx uint8) { s.attr.Foreground = types.Palette(idx) }
func (s *scriptBuffer) setBgPalette(idx uint8) { s.attr.Background = types.Palette(idx) }
func (s *scriptBuffer) setFgRGB(r, g, b uint8) { s.attr.Foreground = types.RGB(r, g, b) }
func (s *scriptBuffer) setBgRGB(r, g, b uint8) { s.attr.Background = types.RGB(r, g, b) }

// fg and bg report the current drawing attribute's colors as
// (kind, index-or-r, g, b) so the Lua binding can return either shape
// without a second pair of accessor names.
func (s *scriptBuffer) fg() types.AttributeColor { return s.attr.Foreground }
func (s *scriptBuffer) bg() types.AttributeColor { return s.attr.Background }

func (s *scriptBuffer) setChar(x, y int, ch rune) {
	_ = s.buf.SetChar(0, types.Position{X: x, Y: y}, types.AttributedChar{Ch: ch, Attr: s.attr})
}

func (s *scriptBuffer) getChar(x, y int) types.AttributedChar {
	return s.buf.CharAt(types.Position{X: x, Y: y})
}

// print writes text starting at the caret, advancing it and wrapping at
// the buffer's width, the way a terminal cursor would (spec §4.8's
// buffer print/gotoxy pairing with the parser's own caret advance in
// internal/parser).
func (s *scriptBuffer) print(text string) {
	width := s.buf.Dimensions().Width
	if width <= 0 {
		return
	}
	for _, r := range text {
		if r == '\n' {
			s.caret.X = 0
			s.caret.Y++
			continue
		}
		s.setChar(s.caret.X, s.caret.Y, r)
		s.caret.X++
		if s.caret.X >= width {
			s.caret.X = 0
			s.caret.Y++
		}
	}
}

func (s *scriptBuffer) clear() {
	s.buf.ClearScreen()
	s.caret = types.Position{}
}

func (s *scriptBuffer) addLayer(title string, width, height int) {
	s.buf.AddLayer(buffer.NewLayer(title, width, height))
}

func (s *scriptBuffer) layerCount() int {
	return len(s.buf.LayersMut())
}

func (s *scriptBuffer) dimensions() types.Size {
	return s.buf.Dimensions()
}

func (s *scriptBuffer) clone() *scriptBuffer {
	return &scriptBuffer{buf: s.buf.Clone(), caret: s.caret, attr: s.attr}
}
