// Package editstate wraps a buffer.TextBuffer with undo/redo, selection,
// and caret tracking (spec §4.6, component C6). Grounded on the
// mutate-then-record pattern of stlalpha-vision3/internal/editor/buffer.go's
// MessageBuffer (which tracks hard/soft line breaks across edits) and
// generalized here to layered undo entries with closed-form inverses, since
// the teacher's line editor has no undo stack of its own.
package editstate

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// UndoOp is a reversible edit. Apply performs the forward edit; Invert
// returns the op that undoes it.
type UndoOp interface {
	Apply(b *buffer.TextBuffer)
	Invert() UndoOp
}

// EditState is the mutable edit session around a TextBuffer (spec §4.6).
type EditState struct {
	buf *buffer.TextBuffer

	undo []UndoOp
	redo []UndoOp

	currentLayer int
	caret        types.Position
	currentAttr  types.TextAttribute

	selection    *buffer.Selection
	selMask      *buffer.Mask
	overlayMask  *buffer.Mask
}

// New wraps buf in a fresh edit session.
func New(buf *buffer.TextBuffer) *EditState {
	d := buf.Dimensions()
	return &EditState{
		buf:         buf,
		currentAttr: types.DefaultAttribute(),
		selMask:     buffer.NewMask(d.Width, d.Height),
		overlayMask: buffer.NewMask(d.Width, d.Height),
	}
}

// Buffer returns the underlying TextBuffer.
func (e *EditState) Buffer() *buffer.TextBuffer { return e.buf }

// Caret returns the current caret position, implementing Screen.
func (e *EditState) Caret() types.Position { return e.caret }

// SetCaret moves the caret. Caret-only moves are non-undoable (spec §4.6).
func (e *EditState) SetCaret(p types.Position) { e.caret = p }

// CurrentLayer returns the index of the layer mutations target.
func (e *EditState) CurrentLayer() int { return e.currentLayer }

// SetCurrentLayer changes which layer mutations target. Non-undoable.
func (e *EditState) SetCurrentLayer(i int) { e.currentLayer = i }

// CurrentAttribute returns the attribute new writes use.
func (e *EditState) CurrentAttribute() types.TextAttribute { return e.currentAttr }

// SetCurrentAttribute updates the pen attribute. Non-undoable.
func (e *EditState) SetCurrentAttribute(a types.TextAttribute) { e.currentAttr = a }

// push records op on the undo stack and clears the redo stack (spec §4.6:
// "redo stack ... cleared on any new edit").
func (e *EditState) push(op UndoOp) {
	e.undo = append(e.undo, op)
	e.redo = nil
}

// Undo pops and reverses the most recent operation. Reports false if the
// undo stack is empty.
func (e *EditState) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	op := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	inv := op.Invert()
	inv.Apply(e.buf)
	e.redo = append(e.redo, inv)
	return true
}

// Redo pops and reapplies the most recently undone operation.
func (e *EditState) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	op := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	inv := op.Invert()
	inv.Apply(e.buf)
	e.undo = append(e.undo, inv)
	return true
}

// CanUndo/CanRedo report stack occupancy.
func (e *EditState) CanUndo() bool { return len(e.undo) > 0 }
func (e *EditState) CanRedo() bool { return len(e.redo) > 0 }
