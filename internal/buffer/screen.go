package buffer

import "github.com/stlalpha/textmode/internal/types"

// Screen is the polymorphic read-side capability implemented by both
// TextBuffer and editstate.EditState (spec §3.4). It lives in this
// package (rather than editstate) so codec loaders, the renderer, and the
// parser/sink can depend only on buffer, not on the edit-undo machinery.
type Screen interface {
	Dimensions() types.Size
	CharAt(p types.Position) types.AttributedChar
	Palette() *Palette
	FontIter(fn func(slot uint8, f *BitFont))
	Caret() types.Position
	BufferType() BufferType
	Selection() (Selection, bool)
	Tags() []*Tag
	TerminalState() TerminalState
	Sixels() []Sixel
}

// Editable adds the mutation surface used by loaders, the parser sink, and
// the animator (spec §3.4). Only editstate.EditState implements this with
// undo recording; TextBuffer satisfies it directly for non-undoable
// contexts (codec loaders building a fresh buffer).
type Editable interface {
	Screen
	SetSize(s types.Size) error
	LayersMut() []*Layer
	PaletteMut() *Palette
	SetFont(slot uint8, f *BitFont)
	ClearScreen()
	ApplySauce(width, height int, ice bool, fontName string) error
}

// Dimensions implements Screen for TextBuffer.
func (b *TextBuffer) Dimensions() types.Size {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return types.Size{Width: b.width, Height: b.height}
}

// Palette implements Screen for TextBuffer.
func (b *TextBuffer) Palette() *Palette { return b.palette }

// Caret is not tracked by the bare buffer (only by EditState / the
// parser's cursor); TextBuffer reports the origin.
func (b *TextBuffer) Caret() types.Position { return types.Position{} }

// BufferType implements Screen's accessor.
func (b *TextBuffer) BufferType() BufferType { return b.bufferType }

// Selection is not tracked by the bare buffer.
func (b *TextBuffer) Selection() (Selection, bool) { return Selection{}, false }

// Tags implements Screen's accessor.
func (b *TextBuffer) Tags() []*Tag { return b.tags }

// TerminalState implements Screen's accessor.
func (b *TextBuffer) TerminalState() TerminalState { return b.terminal }

// SetTerminalState replaces the terminal state.
func (b *TextBuffer) SetTerminalState(s TerminalState) { b.terminal = s }

// Sixels collects sixels across all layers.
func (b *TextBuffer) Sixels() []Sixel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Sixel
	for _, l := range b.layers {
		out = append(out, l.Sixels...)
	}
	return out
}

// LayersMut implements Editable for TextBuffer (no undo recording).
func (b *TextBuffer) LayersMut() []*Layer { return b.layers }

// PaletteMut implements Editable for TextBuffer.
func (b *TextBuffer) PaletteMut() *Palette { return b.palette }

// ApplySauce implements Editable's SAUCE preconfiguration (spec §3.6,
// §4.2.3): width/height/ice/font are overwritten from the SAUCE record.
func (b *TextBuffer) ApplySauce(width, height int, ice bool, fontName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width > 0 {
		b.width = width
	}
	if height > 0 {
		b.height = height
	}
	if ice {
		b.iceMode = IceIce
	} else {
		b.iceMode = IceBlink
	}
	if len(b.layers) > 0 {
		if _, err := b.layers[0].Resize(b.width, b.height); err != nil {
			return err
		}
	}
	if fontName != "" && b.fonts.Get(0) != nil {
		b.fonts.Get(0).Name = fontName
	}
	return nil
}

var (
	_ Screen   = (*TextBuffer)(nil)
	_ Editable = (*TextBuffer)(nil)
)
