package editstate

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// setCharOp inverts by restoring the previous cell value (closed-form
// inverse, spec §4.6).
type setCharOp struct {
	layer    int
	pos      types.Position
	old, new types.AttributedChar
}

func (o *setCharOp) Apply(b *buffer.TextBuffer) { _ = b.SetChar(o.layer, o.pos, o.new) }
func (o *setCharOp) Invert() UndoOp {
	return &setCharOp{layer: o.layer, pos: o.pos, old: o.new, new: o.old}
}

// SetChar writes a cell on the current layer, pushing an undo entry.
func (e *EditState) SetChar(p types.Position, c types.AttributedChar) error {
	old := e.buf.CharAt(p)
	if err := e.buf.SetChar(e.currentLayer, p, c); err != nil {
		return err
	}
	e.push(&setCharOp{layer: e.currentLayer, pos: p, old: old, new: c})
	return nil
}

// resizeOp inverts via the layer's captured ResizeUndo (spec §4.6: "layer
// resize" is undoable).
type resizeOp struct {
	layerIdx          int
	newW, newH        int
	layers            []*buffer.Layer
	evicted           *buffer.ResizeUndo // captured by the forward resize
	forward           *buffer.ResizeUndo // set only on the inverse direction
}

func (o *resizeOp) Apply(b *buffer.TextBuffer) {
	l := o.layers[o.layerIdx]
	if o.forward != nil {
		l.UndoResize(o.forward)
		return
	}
	if u, err := l.Resize(o.newW, o.newH); err == nil {
		o.evicted = u
	}
}

func (o *resizeOp) Invert() UndoOp {
	if o.forward != nil {
		return &resizeOp{layerIdx: o.layerIdx, newW: o.newW, newH: o.newH, layers: o.layers}
	}
	return &resizeOp{layerIdx: o.layerIdx, newW: o.newW, newH: o.newH, layers: o.layers, forward: o.evicted}
}

// ResizeLayer resizes the layer at idx, recording the evicted rows/columns
// so Undo can restore them verbatim.
func (e *EditState) ResizeLayer(idx, width, height int) error {
	layers := e.buf.LayersMut()
	if idx < 0 || idx >= len(layers) {
		return types.NewError(types.KindOutOfBounds, "layer index out of range")
	}
	undo, err := layers[idx].Resize(width, height)
	if err != nil {
		return err
	}
	e.push(&resizeOp{layerIdx: idx, newW: width, newH: height, layers: layers, evicted: undo})
	return nil
}

// layerVisOp toggles Layer.Visible; its own inverse (idempotent flip).
type layerVisOp struct {
	layers []*buffer.Layer
	idx    int
}

func (o *layerVisOp) Apply(b *buffer.TextBuffer) { o.layers[o.idx].Visible = !o.layers[o.idx].Visible }
func (o *layerVisOp) Invert() UndoOp              { return o }

// ToggleLayerVisibility flips Layer.Visible at idx, undoably.
func (e *EditState) ToggleLayerVisibility(idx int) {
	layers := e.buf.LayersMut()
	layers[idx].Visible = !layers[idx].Visible
	e.push(&layerVisOp{layers: layers, idx: idx})
}

// layerLockOp toggles Layer.Locked; self-inverse like visibility.
type layerLockOp struct {
	layers []*buffer.Layer
	idx    int
}

func (o *layerLockOp) Apply(b *buffer.TextBuffer) { o.layers[o.idx].Locked = !o.layers[o.idx].Locked }
func (o *layerLockOp) Invert() UndoOp              { return o }

// ToggleLayerLock flips Layer.Locked at idx, undoably.
func (e *EditState) ToggleLayerLock(idx int) {
	layers := e.buf.LayersMut()
	layers[idx].Locked = !layers[idx].Locked
	e.push(&layerLockOp{layers: layers, idx: idx})
}

// createLayerOp inverts by removing the layer it inserted.
type createLayerOp struct {
	idx   int
	layer *buffer.Layer
}

func (o *createLayerOp) Apply(b *buffer.TextBuffer) { b.InsertLayer(o.idx, o.layer) }
func (o *createLayerOp) Invert() UndoOp             { return &deleteLayerOp{idx: o.idx, layer: o.layer} }

type deleteLayerOp struct {
	idx   int
	layer *buffer.Layer
}

func (o *deleteLayerOp) Apply(b *buffer.TextBuffer) { b.RemoveLayer(o.idx) }
func (o *deleteLayerOp) Invert() UndoOp             { return &createLayerOp{idx: o.idx, layer: o.layer} }

// CreateLayer inserts a new layer at idx, undoably.
func (e *EditState) CreateLayer(idx int, title string, width, height int) *buffer.Layer {
	l := buffer.NewLayer(title, width, height)
	e.buf.InsertLayer(idx, l)
	e.push(&createLayerOp{idx: idx, layer: l})
	return l
}

// DeleteLayer removes the layer at idx, undoably.
func (e *EditState) DeleteLayer(idx int) *buffer.Layer {
	removed := e.buf.RemoveLayer(idx)
	if removed == nil {
		return nil
	}
	e.push(&deleteLayerOp{idx: idx, layer: removed})
	return removed
}

// moveLayerOp inverts by swapping the move direction.
type moveLayerOp struct {
	from, to int
}

func (o *moveLayerOp) Apply(b *buffer.TextBuffer) {
	l := b.RemoveLayer(o.from)
	if l != nil {
		b.InsertLayer(o.to, l)
	}
}
func (o *moveLayerOp) Invert() UndoOp { return &moveLayerOp{from: o.to, to: o.from} }

// MoveLayer relocates the layer at from to index to, undoably.
func (e *EditState) MoveLayer(from, to int) {
	l := e.buf.RemoveLayer(from)
	if l == nil {
		return
	}
	e.buf.InsertLayer(to, l)
	e.push(&moveLayerOp{from: from, to: to})
}

// sauceOp captures the buffer's pre-apply_sauce geometry for a single
// undo entry covering the whole operation (spec §4.6: "apply_sauce ...
// pushes a single undo").
type sauceOp struct {
	buf                    *buffer.TextBuffer
	oldW, oldH             int
	oldIce                 buffer.IceMode
	newW, newH             int
	newIce                 bool
	fontName, oldFont      string
}

func (o *sauceOp) Apply(b *buffer.TextBuffer) {
	_ = b.ApplySauce(o.newW, o.newH, o.newIce, o.fontName)
}

func (o *sauceOp) Invert() UndoOp {
	return &sauceOp{
		buf: o.buf, newW: o.oldW, newH: o.oldH, newIce: o.oldIce == buffer.IceIce, fontName: o.oldFont,
		oldW: o.newW, oldH: o.newH, oldIce: boolToIce(o.newIce), oldFont: o.fontName,
	}
}

func boolToIce(ice bool) buffer.IceMode {
	if ice {
		return buffer.IceIce
	}
	return buffer.IceBlink
}

// ApplySauce overwrites dimensions/ice/font from a parsed SAUCE record,
// pushing a single undo entry for the whole operation.
func (e *EditState) ApplySauce(width, height int, ice bool, fontName string) error {
	d := e.buf.Dimensions()
	oldFont := ""
	if f := e.buf.FontsTable().Get(0); f != nil {
		oldFont = f.Name
	}
	op := &sauceOp{
		buf: e.buf, oldW: d.Width, oldH: d.Height, oldIce: e.buf.IceMode(), oldFont: oldFont,
		newW: width, newH: height, newIce: ice, fontName: fontName,
	}
	if err := e.buf.ApplySauce(width, height, ice, fontName); err != nil {
		return err
	}
	e.push(op)
	return nil
}
