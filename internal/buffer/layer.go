package buffer

import (
	"github.com/google/uuid"
	"github.com/stlalpha/textmode/internal/types"
)

// CompositionMode controls how a layer's char/attribute contribute to the
// composited cell when layers are stacked (spec §3.2).
type CompositionMode int

const (
	CompositionNormal CompositionMode = iota
	CompositionCharsOnly
	CompositionAttrsOnly
)

// LayerRole distinguishes text layers from raster/sixel-image layers
// (spec §3.2).
type LayerRole int

const (
	RoleNormal LayerRole = iota
	RoleImage
)

// Sixel is an embedded raster image cell-aligned within a layer (spec
// §3.2). The name follows the spec's glossary shorthand for "any embedded
// raster layer", not literal six-row sixel encoding.
type Sixel struct {
	Pixels        []byte // RGBA, len == Width*Height*4
	Width, Height int
	Position      types.Position // cell-aligned top-left
	VScale, HScale float64
}

// Line is one row of a layer: a fixed-width slice of AttributedChar.
type Line struct {
	Chars []types.AttributedChar
}

// NewLine returns a line of width cells filled with attr.
func NewLine(width int, attr types.TextAttribute) Line {
	chars := make([]types.AttributedChar, width)
	for i := range chars {
		chars[i] = types.Space(attr)
	}
	return Line{Chars: chars}
}

// Layer owns a rectangular grid of AttributedChar plus placement and
// composition metadata (spec §3.2).
type Layer struct {
	ID    uuid.UUID
	Title string

	Width, Height int
	Lines         []Line
	Offset        types.Position

	Visible         bool
	Locked          bool
	PositionLocked  bool
	HasAlpha        bool
	AlphaLocked     bool
	FillColor       *types.AttributeColor
	Composition     CompositionMode
	Role            LayerRole
	Sixels          []Sixel
}

// NewLayer allocates a visible, unlocked layer of the given size.
func NewLayer(title string, width, height int) *Layer {
	l := &Layer{
		ID:      uuid.New(),
		Title:   title,
		Width:   width,
		Height:  height,
		Lines:   make([]Line, height),
		Visible: true,
	}
	attr := types.DefaultAttribute()
	for i := range l.Lines {
		l.Lines[i] = NewLine(width, attr)
	}
	return l
}

// checkInvariants verifies the line-count/width invariant from spec §8.
// Used by tests; production code maintains the invariant by construction.
func (l *Layer) checkInvariants() bool {
	if len(l.Lines) != l.Height {
		return false
	}
	for _, line := range l.Lines {
		if len(line.Chars) != l.Width {
			return false
		}
	}
	return true
}

// InBounds reports whether local cell (x,y) is within this layer's grid
// (not accounting for Offset).
func (l *Layer) InBounds(x, y int) bool {
	return x >= 0 && x < l.Width && y >= 0 && y < l.Height
}

// CharAt returns the cell at local coordinates (x,y), or a default blank
// cell if out of range.
func (l *Layer) CharAt(x, y int) types.AttributedChar {
	if !l.InBounds(x, y) {
		return types.AttributedChar{}
	}
	return l.Lines[y].Chars[x]
}

// SetChar writes a cell at local coordinates. Returns BufferLocked if the
// layer is locked, OutOfBounds if isTerminalBuffer is false and the
// coordinates fall outside the grid. When isTerminalBuffer is true and the
// write falls below/right of the grid, the layer grows to accommodate it
// (spec §4.1 set_char contract); growth stays within MaxBufferWidth/Height.
func (l *Layer) SetChar(x, y int, c types.AttributedChar, isTerminalBuffer bool) error {
	if l.Locked {
		return types.NewError(types.KindBufferLocked, "layer is locked")
	}
	if x < 0 || y < 0 {
		if !isTerminalBuffer {
			return types.NewError(types.KindOutOfBounds, "negative coordinate on edited buffer")
		}
		return nil // terminal buffers silently drop negative writes; no room to grow left/up
	}
	if !l.InBounds(x, y) {
		if !isTerminalBuffer {
			return types.NewError(types.KindOutOfBounds, "write outside edited-layer bounds")
		}
		l.growTo(x+1, y+1)
	}
	l.Lines[y].Chars[x] = c
	return nil
}

// growTo extends the layer grid to at least (width, height), filling new
// cells with default blanks, bounded by MaxBufferWidth/MaxBufferHeight.
func (l *Layer) growTo(width, height int) {
	if width > types.MaxBufferWidth {
		width = types.MaxBufferWidth
	}
	if height > types.MaxBufferHeight {
		height = types.MaxBufferHeight
	}
	attr := types.DefaultAttribute()
	if width > l.Width {
		for i := range l.Lines {
			extra := make([]types.AttributedChar, width-l.Width)
			for j := range extra {
				extra[j] = types.Space(attr)
			}
			l.Lines[i].Chars = append(l.Lines[i].Chars, extra...)
		}
		l.Width = width
	}
	for len(l.Lines) < height {
		l.Lines = append(l.Lines, NewLine(l.Width, attr))
	}
	if height > l.Height {
		l.Height = height
	}
}

// Resize changes the layer's dimensions in place, clipping or padding with
// blanks. Returns the evicted rows/columns (in original local coordinates)
// so an undo entry can restore them verbatim (spec §4.6, closed-form
// inverse for layer-size changes).
type ResizeUndo struct {
	OldWidth, OldHeight int
	EvictedLines        []Line // rows beyond the new height, in original order
	EvictedCols         [][]types.AttributedChar // per remaining row, columns beyond new width
}

func (l *Layer) Resize(width, height int) (*ResizeUndo, error) {
	if l.Locked {
		return nil, types.NewError(types.KindBufferLocked, "layer is locked")
	}
	undo := &ResizeUndo{OldWidth: l.Width, OldHeight: l.Height}
	if height < l.Height {
		undo.EvictedLines = append(undo.EvictedLines, l.Lines[height:]...)
		l.Lines = l.Lines[:height]
	}
	attr := types.DefaultAttribute()
	for len(l.Lines) < height {
		l.Lines = append(l.Lines, NewLine(l.Width, attr))
	}
	if width < l.Width {
		undo.EvictedCols = make([][]types.AttributedChar, len(l.Lines))
		for i := range l.Lines {
			undo.EvictedCols[i] = append([]types.AttributedChar(nil), l.Lines[i].Chars[width:]...)
			l.Lines[i].Chars = l.Lines[i].Chars[:width]
		}
	} else if width > l.Width {
		for i := range l.Lines {
			extra := make([]types.AttributedChar, width-l.Width)
			for j := range extra {
				extra[j] = types.Space(attr)
			}
			l.Lines[i].Chars = append(l.Lines[i].Chars, extra...)
		}
	}
	l.Width = width
	l.Height = height
	return undo, nil
}

// UndoResize reverses a Resize using the captured undo entry.
func (l *Layer) UndoResize(u *ResizeUndo) {
	if len(u.EvictedCols) == len(l.Lines) {
		for i := range l.Lines {
			l.Lines[i].Chars = append(l.Lines[i].Chars, u.EvictedCols[i]...)
		}
	} else if l.Width > u.OldWidth {
		for i := range l.Lines {
			l.Lines[i].Chars = l.Lines[i].Chars[:u.OldWidth]
		}
	}
	if keep := u.OldHeight - len(u.EvictedLines); keep >= 0 && keep < len(l.Lines) {
		l.Lines = l.Lines[:keep]
	}
	l.Lines = append(l.Lines, u.EvictedLines...)
	l.Width = u.OldWidth
	l.Height = u.OldHeight
}

// Clone returns a deep copy of the layer (used by undo snapshots and the
// animator's next_frame capture).
func (l *Layer) Clone() *Layer {
	c := *l
	c.ID = l.ID
	c.Lines = make([]Line, len(l.Lines))
	for i, line := range l.Lines {
		c.Lines[i] = Line{Chars: append([]types.AttributedChar(nil), line.Chars...)}
	}
	c.Sixels = append([]Sixel(nil), l.Sixels...)
	return &c
}

// UsedFontPages returns the set of font-page slots referenced by visible
// cells in this layer (spec §4.1, font-page usage analysis). The
// implementation is a single O(W*H) pass using a 256-bit set, matching
// the spec's algorithmic contract.
func (l *Layer) UsedFontPages() [4]uint64 {
	var bits [4]uint64
	if !l.Visible {
		return bits
	}
	for _, line := range l.Lines {
		for _, c := range line.Chars {
			p := c.Attr.FontPage
			bits[p/64] |= 1 << (uint(p) % 64)
		}
	}
	return bits
}
