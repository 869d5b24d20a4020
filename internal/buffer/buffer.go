// Package buffer implements the layered text-buffer data model (spec §3,
// component C1): Layer composition, fonts, palettes, ice/blink modes, and
// buffer-type translation, grounded on the cell-grid conventions used by
// stlalpha-vision3/internal/editor/buffer.go (a flat 1-based line table)
// generalized here to a multi-layer, multi-font model per spec §3.2-§3.3.
package buffer

import (
	"sync"

	"github.com/stlalpha/textmode/internal/codepage"
	"github.com/stlalpha/textmode/internal/types"
)

// TextBuffer is the root data model: an ordered stack of layers, a
// palette, a font table, and the format-level mode flags from spec §3.3.
// Fields are unexported and reached through Screen/Editable accessor
// methods so TextBuffer and editstate.EditState can share one interface
// without field/method name collisions.
type TextBuffer struct {
	mu sync.RWMutex

	width, height int
	layers        []*Layer
	palette       *Palette
	fonts         *FontTable

	iceMode    IceMode
	fontMode   FontMode
	bufferType BufferType

	tags     []*Tag
	terminal TerminalState

	isTerminalBuffer bool
}

// NewTextBuffer constructs an empty buffer with a single default layer,
// a 16-color fixed palette, and CP437 type (spec §3.3 lifecycle: "created
// empty").
func NewTextBuffer(width, height int) *TextBuffer {
	b := &TextBuffer{
		width:      width,
		height:     height,
		palette:    NewPalette(PaletteFixed16),
		fonts:      NewFontTable(),
		bufferType: BufferCP437,
		terminal:   NewTerminalState(width, height),
	}
	b.layers = []*Layer{NewLayer("Background", width, height)}
	return b
}

// Clone deep-copies the buffer: every layer's line/cell data, palette,
// fonts and mode flags are copied so mutating the original afterward
// cannot affect the clone. Used by the animator's next_frame snapshot
// (spec §4.8) to capture a frame independent of further script writes.
func (b *TextBuffer) Clone() *TextBuffer {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := &TextBuffer{
		width:            b.width,
		height:           b.height,
		palette:          b.palette.Clone(),
		fonts:            b.fonts.Clone(),
		bufferType:       b.bufferType,
		iceMode:          b.iceMode,
		fontMode:         b.fontMode,
		terminal:         b.terminal,
		isTerminalBuffer: b.isTerminalBuffer,
	}
	out.layers = make([]*Layer, len(b.layers))
	for i, l := range b.layers {
		out.layers[i] = l.Clone()
	}
	out.tags = append([]*Tag(nil), b.tags...)
	return out
}

// SetTerminalBuffer marks/unmarks this buffer as terminal-driven (spec
// §3.3 is_terminal_buffer: unbounded growth vs. edited-file clipping).
func (b *TextBuffer) SetTerminalBuffer(v bool) { b.isTerminalBuffer = v }

// IsTerminalBuffer reports the terminal-buffer flag.
func (b *TextBuffer) IsTerminalBuffer() bool { return b.isTerminalBuffer }

// IceMode returns the buffer's ice/blink mode.
func (b *TextBuffer) IceMode() IceMode { return b.iceMode }

// SetIceMode sets the buffer's ice/blink mode.
func (b *TextBuffer) SetIceMode(m IceMode) { b.iceMode = m }

// FontMode returns the buffer's font mode.
func (b *TextBuffer) FontMode() FontMode { return b.fontMode }

// SetFontMode sets the buffer's font mode.
func (b *TextBuffer) SetFontMode(m FontMode) { b.fontMode = m }

// AddTag appends a tag to the buffer's tag list.
func (b *TextBuffer) AddTag(t *Tag) { b.tags = append(b.tags, t) }

// FontsTable returns the buffer's font table.
func (b *TextBuffer) FontsTable() *FontTable { return b.fonts }

// CharAt composites the visible character at buffer coordinate p by
// walking layers top-to-bottom (last layer in the slice is topmost,
// matching the spec's "layer 0 is the default/background" ordering),
// honoring visibility, offset, composition mode, alpha and the invisible
// sentinel (spec §4.1).
func (b *TextBuffer) CharAt(p types.Position) types.AttributedChar {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.charAtLocked(p)
}

func (b *TextBuffer) charAtLocked(p types.Position) types.AttributedChar {
	result := types.AttributedChar{Ch: ' ', Attr: types.DefaultAttribute()}
	haveChar := false
	haveAttr := false

	for i := len(b.layers) - 1; i >= 0; i-- {
		layer := b.layers[i]
		if !layer.Visible {
			continue
		}
		lx := p.X - layer.Offset.X
		ly := p.Y - layer.Offset.Y
		if !layer.InBounds(lx, ly) {
			continue
		}
		cell := layer.CharAt(lx, ly)
		if layer.HasAlpha && cell.IsInvisible() {
			continue
		}

		switch layer.Composition {
		case CompositionCharsOnly:
			if !haveChar {
				result.Ch = cell.Ch
				haveChar = true
			}
			// attribute stays from a lower (already-composited) layer
		case CompositionAttrsOnly:
			if !haveAttr {
				result.Attr = cell.Attr
				haveAttr = true
			}
		default: // CompositionNormal
			if !haveChar {
				result.Ch = cell.Ch
				haveChar = true
			}
			if !haveAttr {
				result.Attr = cell.Attr
				haveAttr = true
			}
		}
		if haveChar && haveAttr {
			break
		}
	}
	return result
}

// SetChar routes a write to the given layer index (spec §4.1: set_char
// "routes to the current layer only"; callers such as EditState track
// which layer is current).
func (b *TextBuffer) SetChar(layerIdx int, p types.Position, c types.AttributedChar) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if layerIdx < 0 || layerIdx >= len(b.layers) {
		return types.NewError(types.KindOutOfBounds, "layer index out of range")
	}
	layer := b.layers[layerIdx]
	lx := p.X - layer.Offset.X
	ly := p.Y - layer.Offset.Y
	return layer.SetChar(lx, ly, c, b.isTerminalBuffer)
}

// SetSize changes the buffer's nominal dimensions. It does not resize
// layers (layers may legitimately differ in size/offset); callers resize
// layers individually via Layer.Resize.
func (b *TextBuffer) SetSize(s types.Size) error {
	b.mu.RLock()
	for _, l := range b.layers {
		if l.Locked {
			b.mu.RUnlock()
			return types.NewError(types.KindBufferLocked, "cannot resize buffer: a layer is locked")
		}
	}
	b.mu.RUnlock()
	b.mu.Lock()
	b.width = s.Width
	b.height = s.Height
	b.mu.Unlock()
	return nil
}

// AddLayer appends a new layer on top (end of slice = topmost).
func (b *TextBuffer) AddLayer(l *Layer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.layers = append(b.layers, l)
}

// RemoveLayer deletes the layer at index i.
func (b *TextBuffer) RemoveLayer(i int) *Layer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.layers) {
		return nil
	}
	removed := b.layers[i]
	b.layers = append(b.layers[:i], b.layers[i+1:]...)
	return removed
}

// InsertLayer inserts l at index i.
func (b *TextBuffer) InsertLayer(i int, l *Layer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i > len(b.layers) {
		i = len(b.layers)
	}
	b.layers = append(b.layers, nil)
	copy(b.layers[i+1:], b.layers[i:])
	b.layers[i] = l
}

// SetFont installs a font at slot, replacing any existing font there
// (spec §4.1).
func (b *TextBuffer) SetFont(slot uint8, f *BitFont) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fonts.Set(slot, f)
}

// FontIter yields (slot, font) pairs in slot order (spec §4.1 font_iter).
func (b *TextBuffer) FontIter(fn func(slot uint8, f *BitFont)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.fonts.Iter(fn)
}

// UsedFontPages returns the union of UsedFontPages across all layers.
func (b *TextBuffer) UsedFontPages() [4]uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var bits [4]uint64
	for _, l := range b.layers {
		lb := l.UsedFontPages()
		for i := range bits {
			bits[i] |= lb[i]
		}
	}
	return bits
}

// ClearScreen blanks every layer's cells in place (does not remove
// layers).
func (b *TextBuffer) ClearScreen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	attr := types.DefaultAttribute()
	for _, l := range b.layers {
		for i := range l.Lines {
			for j := range l.Lines[i].Chars {
				l.Lines[i].Chars[j] = types.Space(attr)
			}
		}
	}
}

// ToUnicode converts a raw byte in this buffer's BufferType to a Unicode
// scalar (spec §4.1, buffer-type conversion).
func (b *TextBuffer) ToUnicode(raw byte) rune {
	switch b.bufferType {
	case BufferCP437:
		return codepage.ToUnicode[raw]
	default:
		return rune(raw)
	}
}

// FromUnicode converts a Unicode scalar to this buffer's BufferType byte
// representation, substituting fallback when unrepresentable.
func (b *TextBuffer) FromUnicode(r rune, fallback byte) byte {
	switch b.bufferType {
	case BufferCP437:
		return codepage.ToCP437(r, fallback)
	default:
		if r > 0xFF {
			return fallback
		}
		return byte(r)
	}
}

// SetBufferType sets the codepage-translation mode.
func (b *TextBuffer) SetBufferType(t BufferType) { b.bufferType = t }
