package editstate

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// SetSelection installs sel as the in-progress selection. Non-undoable
// (spec §4.6: "selection updates" are documented non-undoable).
func (e *EditState) SetSelection(sel buffer.Selection) { e.selection = &sel }

// ClearSelection drops the in-progress selection without touching the
// committed mask.
func (e *EditState) ClearSelection() { e.selection = nil }

// Selection returns the in-progress selection and whether one is set,
// implementing buffer.Screen's accessor.
func (e *EditState) Selection() (buffer.Selection, bool) {
	if e.selection == nil {
		return buffer.Selection{}, false
	}
	return *e.selection, true
}

// IsSomethingSelected reports whether there is an in-progress selection or
// a non-empty committed mask.
func (e *EditState) IsSomethingSelected() bool {
	return e.selection != nil || !e.selMask.IsEmpty()
}

// AddSelectionToMask unions the in-progress selection into the committed
// selection mask (spec §4.6 add_selection_to_mask).
func (e *EditState) AddSelectionToMask() {
	if e.selection == nil {
		return
	}
	e.selMask.UnionSelection(*e.selection)
}

// ClearSelectionMask resets the committed selection mask to empty.
func (e *EditState) ClearSelectionMask() { e.selMask.Clear() }

// SelectionMask returns the committed mask.
func (e *EditState) SelectionMask() *buffer.Mask { return e.selMask }

// OverlayMask returns the transient tool overlay mask.
func (e *EditState) OverlayMask() *buffer.Mask { return e.overlayMask }

// eraseSelectionOp inverts by restoring every erased cell.
type eraseSelectionOp struct {
	layer int
	cells []erasedCell
}

type erasedCell struct {
	pos types.Position
	old types.AttributedChar
}

func (o *eraseSelectionOp) Apply(b *buffer.TextBuffer) {
	blank := types.Space(types.DefaultAttribute())
	for _, c := range o.cells {
		_ = b.SetChar(o.layer, c.pos, blank)
	}
}

func (o *eraseSelectionOp) Invert() UndoOp {
	return &restoreCellsOp{layer: o.layer, cells: o.cells}
}

// restoreCellsOp writes back a captured set of cells verbatim; it is its
// own forward direction for redo-of-undo symmetry.
type restoreCellsOp struct {
	layer int
	cells []erasedCell
}

func (o *restoreCellsOp) Apply(b *buffer.TextBuffer) {
	for _, c := range o.cells {
		_ = b.SetChar(o.layer, c.pos, c.old)
	}
}

func (o *restoreCellsOp) Invert() UndoOp {
	return &eraseSelectionOp{layer: o.layer, cells: o.cells}
}

// EraseSelection blanks every cell covered by the committed selection mask
// on the current layer, pushing a single undo entry that restores every
// erased cell's prior content.
func (e *EditState) EraseSelection() {
	d := e.buf.Dimensions()
	var erased []erasedCell
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			if !e.selMask.Get(x, y) {
				continue
			}
			p := types.Position{X: x, Y: y}
			erased = append(erased, erasedCell{pos: p, old: e.buf.CharAt(p)})
		}
	}
	if len(erased) == 0 {
		return
	}
	op := &eraseSelectionOp{layer: e.currentLayer, cells: erased}
	op.Apply(e.buf)
	e.push(op)
}
