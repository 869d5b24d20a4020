package editstate

import (
	"testing"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

func TestUndoRedoRestoresByteEqualState(t *testing.T) {
	b := buffer.NewTextBuffer(5, 5)
	e := New(b)

	before := b.CharAt(types.Position{X: 1, Y: 1})
	if err := e.SetChar(types.Position{X: 1, Y: 1}, types.AttributedChar{Ch: 'Q', Attr: types.DefaultAttribute()}); err != nil {
		t.Fatal(err)
	}
	if !e.Undo() {
		t.Fatal("expected undo to succeed")
	}
	after := b.CharAt(types.Position{X: 1, Y: 1})
	if after.Ch != before.Ch {
		t.Fatalf("undo did not restore prior cell: got %q want %q", after.Ch, before.Ch)
	}

	if !e.Redo() {
		t.Fatal("expected redo to succeed")
	}
	redone := b.CharAt(types.Position{X: 1, Y: 1})
	if redone.Ch != 'Q' {
		t.Fatalf("redo did not reapply edit: got %q", redone.Ch)
	}
}

func TestNewEditClearsRedoStack(t *testing.T) {
	b := buffer.NewTextBuffer(3, 3)
	e := New(b)
	_ = e.SetChar(types.Position{X: 0, Y: 0}, types.AttributedChar{Ch: 'A', Attr: types.DefaultAttribute()})
	e.Undo()
	if !e.CanRedo() {
		t.Fatal("expected a redo entry after undo")
	}
	_ = e.SetChar(types.Position{X: 1, Y: 0}, types.AttributedChar{Ch: 'B', Attr: types.DefaultAttribute()})
	if e.CanRedo() {
		t.Fatal("a new edit should clear the redo stack")
	}
}

func TestEraseSelectionUndoRestoresCells(t *testing.T) {
	b := buffer.NewTextBuffer(4, 4)
	e := New(b)
	_ = e.SetChar(types.Position{X: 1, Y: 1}, types.AttributedChar{Ch: 'X', Attr: types.DefaultAttribute()})

	sel := buffer.Selection{Anchor: types.Position{X: 0, Y: 0}, Lead: types.Position{X: 3, Y: 3}, Shape: buffer.ShapeRectangle}
	e.SetSelection(sel)
	e.AddSelectionToMask()
	e.EraseSelection()

	if c := b.CharAt(types.Position{X: 1, Y: 1}); c.Ch != ' ' {
		t.Fatalf("expected erased cell to be blank, got %q", c.Ch)
	}
	if !e.Undo() {
		t.Fatal("expected undo to succeed")
	}
	if c := b.CharAt(types.Position{X: 1, Y: 1}); c.Ch != 'X' {
		t.Fatalf("undo should restore erased cell, got %q", c.Ch)
	}
}

func TestResizeLayerUndoRestoresEvictedCells(t *testing.T) {
	b := buffer.NewTextBuffer(4, 4)
	e := New(b)
	_ = e.SetChar(types.Position{X: 3, Y: 3}, types.AttributedChar{Ch: 'Z', Attr: types.DefaultAttribute()})

	if err := e.ResizeLayer(0, 2, 2); err != nil {
		t.Fatal(err)
	}
	e.Undo()
	if c := b.CharAt(types.Position{X: 3, Y: 3}); c.Ch != 'Z' {
		t.Fatalf("undo of resize should restore evicted cell, got %q", c.Ch)
	}
}

func TestApplySaucePushesSingleUndoEntry(t *testing.T) {
	b := buffer.NewTextBuffer(80, 25)
	e := New(b)
	if err := e.ApplySauce(40, 12, true, "IBM VGA"); err != nil {
		t.Fatal(err)
	}
	if d := b.Dimensions(); d.Width != 40 || d.Height != 12 {
		t.Fatalf("apply_sauce did not resize: %+v", d)
	}
	if !e.Undo() {
		t.Fatal("expected exactly one undo entry for apply_sauce")
	}
	if d := b.Dimensions(); d.Width != 80 || d.Height != 25 {
		t.Fatalf("undo did not restore original dimensions: %+v", d)
	}
}

func TestIsSomethingSelected(t *testing.T) {
	b := buffer.NewTextBuffer(3, 3)
	e := New(b)
	if e.IsSomethingSelected() {
		t.Fatal("fresh edit state should have no selection")
	}
	e.SetSelection(buffer.Selection{Anchor: types.Position{X: 0, Y: 0}, Lead: types.Position{X: 1, Y: 1}, Shape: buffer.ShapeRectangle})
	if !e.IsSomethingSelected() {
		t.Fatal("expected selection to be reported after SetSelection")
	}
}
