package buffer

import "github.com/stlalpha/textmode/internal/types"

// SelectionShape is the geometric interpretation of a Selection's anchor
// and lead (spec §3.5).
type SelectionShape int

const (
	ShapeLines SelectionShape = iota
	ShapeRectangle
)

// Selection is an in-progress or committed selection region.
type Selection struct {
	Anchor types.Position
	Lead   types.Position
	Shape  SelectionShape
	Locked bool
}

// normalizedRect returns the selection's bounding rectangle with Min <=
// Max on both axes, regardless of which corner Anchor/Lead denote (spec
// §[SUPPLEMENT], four-corner normalization for Rectangle shape).
func (s Selection) normalizedRect() (minX, minY, maxX, maxY int) {
	minX, maxX = s.Anchor.X, s.Lead.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY = s.Anchor.Y, s.Lead.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return
}

// Contains reports whether (x, y) falls inside the selection.
func (s Selection) Contains(x, y int) bool {
	switch s.Shape {
	case ShapeRectangle:
		minX, minY, maxX, maxY := s.normalizedRect()
		return x >= minX && x <= maxX && y >= minY && y <= maxY
	default: // ShapeLines
		y0, y1 := s.Anchor.Y, s.Lead.Y
		x0, x1 := s.Anchor.X, s.Lead.X
		if y0 > y1 || (y0 == y1 && x0 > x1) {
			y0, y1 = y1, y0
			x0, x1 = x1, x0
		}
		if y == y0 && y == y1 {
			return x >= x0 && x <= x1
		}
		if y == y0 {
			return x >= x0
		}
		if y == y1 {
			return x <= x1
		}
		return y > y0 && y < y1
	}
}

// Mask is a per-cell boolean plane sized to a buffer, used for both the
// committed selection mask and a tool's transient overlay mask (spec §3.5).
type Mask struct {
	Width, Height int
	bits          []bool
}

// NewMask allocates a clear mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, bits: make([]bool, width*height)}
}

func (m *Mask) idx(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0, false
	}
	return y*m.Width + x, true
}

// Get reports whether (x,y) is set.
func (m *Mask) Get(x, y int) bool {
	i, ok := m.idx(x, y)
	if !ok {
		return false
	}
	return m.bits[i]
}

// Set marks (x,y).
func (m *Mask) Set(x, y int, v bool) {
	i, ok := m.idx(x, y)
	if !ok {
		return
	}
	m.bits[i] = v
}

// Clear resets every cell to false.
func (m *Mask) Clear() {
	for i := range m.bits {
		m.bits[i] = false
	}
}

// UnionSelection rasterizes sel into the mask, setting every contained
// cell (spec §3.5, "union of committed selections" for Add mode).
func (m *Mask) UnionSelection(sel Selection) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if sel.Contains(x, y) {
				m.Set(x, y, true)
			}
		}
	}
}

// SubtractSelection clears every cell contained by sel (Remove mode).
func (m *Mask) SubtractSelection(sel Selection) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if sel.Contains(x, y) {
				m.Set(x, y, false)
			}
		}
	}
}

// IsEmpty reports whether every cell is false.
func (m *Mask) IsEmpty() bool {
	for _, b := range m.bits {
		if b {
			return false
		}
	}
	return true
}
