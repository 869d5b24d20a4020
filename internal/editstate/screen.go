package editstate

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// Dimensions, CharAt, Palette, FontIter, BufferType, Tags, TerminalState
// and Sixels delegate straight to the wrapped buffer so EditState
// satisfies buffer.Screen; Caret (editstate.go) and Selection
// (selection.go) are defined separately to
// reflect edit-session state rather than the buffer's own (empty)
// defaults.

func (e *EditState) Dimensions() types.Size             { return e.buf.Dimensions() }
func (e *EditState) CharAt(p types.Position) types.AttributedChar { return e.buf.CharAt(p) }
func (e *EditState) Palette() *buffer.Palette           { return e.buf.Palette() }
func (e *EditState) FontIter(fn func(slot uint8, f *buffer.BitFont)) { e.buf.FontIter(fn) }
func (e *EditState) BufferType() buffer.BufferType      { return e.buf.BufferType() }
func (e *EditState) Tags() []*buffer.Tag                { return e.buf.Tags() }
func (e *EditState) TerminalState() buffer.TerminalState { return e.buf.TerminalState() }
func (e *EditState) Sixels() []buffer.Sixel             { return e.buf.Sixels() }

func (e *EditState) SetSize(s types.Size) error    { return e.buf.SetSize(s) }
func (e *EditState) LayersMut() []*buffer.Layer     { return e.buf.LayersMut() }
func (e *EditState) PaletteMut() *buffer.Palette    { return e.buf.PaletteMut() }
func (e *EditState) SetFont(slot uint8, f *buffer.BitFont) { e.buf.SetFont(slot, f) }
func (e *EditState) ClearScreen()                   { e.buf.ClearScreen() }

var (
	_ buffer.Screen   = (*EditState)(nil)
	_ buffer.Editable = (*EditState)(nil)
)
