package buffer

import (
	"github.com/google/uuid"
	"github.com/stlalpha/textmode/internal/types"
)

// TagAlignment controls how a Tag's replacement text is justified within
// its declared Length (spec §3.3).
type TagAlignment int

const (
	AlignLeft TagAlignment = iota
	AlignCenter
	AlignRight
)

// TagPlacement selects how a tag is written back to the stream by the
// encoder: inline with the surrounding text, or as a standalone
// save-cursor/gotoxy/restore-cursor triple (spec §4.3 step 6).
type TagPlacement int

const (
	PlacementInText TagPlacement = iota
	PlacementWithGotoXY
)

// Tag is a displaycode/hyperlink macro: a preview string shown in the
// editor, a replacement string written on export, a position/length, and
// placement/alignment/attribute metadata (spec §3.3).
type Tag struct {
	ID          uuid.UUID
	Preview     string
	Replacement string
	Position    types.Position
	Length      int
	Alignment   TagAlignment
	Placement   TagPlacement
	Attribute   types.TextAttribute
}

// NewTag constructs a Tag with a fresh identity.
func NewTag(preview, replacement string, pos types.Position, length int) *Tag {
	return &Tag{ID: uuid.New(), Preview: preview, Replacement: replacement, Position: pos, Length: length}
}

// Justify returns the replacement text padded/truncated to Length per
// Alignment.
func (t *Tag) Justify() string {
	s := t.Replacement
	if len(s) >= t.Length {
		return s[:t.Length]
	}
	pad := t.Length - len(s)
	switch t.Alignment {
	case AlignRight:
		return spaces(pad) + s
	case AlignCenter:
		left := pad / 2
		right := pad - left
		return spaces(left) + s + spaces(right)
	default:
		return s + spaces(pad)
	}
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
