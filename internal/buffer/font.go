package buffer

// BitFont is an 8-pixel-wide, 1..32-pixel-tall glyph matrix for up to 512
// characters (spec §3.3). Each glyph is stored as Height bytes, one byte
// per scanline, bit 7 = leftmost pixel.
type BitFont struct {
	Name      string
	Height    int // 1..32
	Is512     bool
	GlyphData []byte // len == (512 or 256) * Height
}

// NewBitFont allocates a blank font of the given height and char count.
func NewBitFont(name string, height int, is512 bool) *BitFont {
	if height < 1 {
		height = 1
	}
	if height > 32 {
		height = 32
	}
	count := 256
	if is512 {
		count = 512
	}
	return &BitFont{Name: name, Height: height, Is512: is512, GlyphData: make([]byte, count*height)}
}

// CharCount returns 256 or 512 depending on Is512.
func (f *BitFont) CharCount() int {
	if f.Is512 {
		return 512
	}
	return 256
}

// Glyph returns the scanline bytes for character ch, or nil if ch is out
// of range.
func (f *BitFont) Glyph(ch int) []byte {
	if ch < 0 || ch >= f.CharCount() {
		return nil
	}
	start := ch * f.Height
	return f.GlyphData[start : start+f.Height]
}

// SetGlyph replaces the scanline bytes for character ch. Returns false if
// ch is out of range or data has the wrong length.
func (f *BitFont) SetGlyph(ch int, data []byte) bool {
	if ch < 0 || ch >= f.CharCount() || len(data) != f.Height {
		return false
	}
	copy(f.GlyphData[ch*f.Height:(ch+1)*f.Height], data)
	return true
}

// Pixel reports whether the pixel at (x, y) within glyph ch is set.
func (f *BitFont) Pixel(ch, x, y int) bool {
	g := f.Glyph(ch)
	if g == nil || y < 0 || y >= len(g) || x < 0 || x > 7 {
		return false
	}
	return g[y]&(0x80>>uint(x)) != 0
}

// FontTable maps an 8-bit font-page slot to a BitFont.
type FontTable struct {
	slots map[uint8]*BitFont
}

// NewFontTable returns an empty font table.
func NewFontTable() *FontTable { return &FontTable{slots: make(map[uint8]*BitFont)} }

// Clone returns an independent copy of the font table and its glyph data.
func (t *FontTable) Clone() *FontTable {
	out := &FontTable{slots: make(map[uint8]*BitFont, len(t.slots))}
	for slot, f := range t.slots {
		data := make([]byte, len(f.GlyphData))
		copy(data, f.GlyphData)
		out.slots[slot] = &BitFont{Name: f.Name, Height: f.Height, Is512: f.Is512, GlyphData: data}
	}
	return out
}

// Set replaces (or installs) the font at slot. Per spec §4.1, adding to an
// occupied slot silently replaces it.
func (t *FontTable) Set(slot uint8, f *BitFont) { t.slots[slot] = f }

// Get returns the font at slot, or nil.
func (t *FontTable) Get(slot uint8) *BitFont { return t.slots[slot] }

// Remove deletes the font at slot unconditionally. Per spec §4.1 this is
// only legal if no cell references the slot; that check is the caller's
// (codec save path's) responsibility, not this accessor's.
func (t *FontTable) Remove(slot uint8) { delete(t.slots, slot) }

// Slots returns the occupied slot numbers in ascending order.
func (t *FontTable) Slots() []uint8 {
	out := make([]uint8, 0, len(t.slots))
	for s := range t.slots {
		out = append(out, s)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Iter calls fn for each (slot, font) pair in slot order (spec §4.1
// font_iter).
func (t *FontTable) Iter(fn func(slot uint8, f *BitFont)) {
	for _, s := range t.Slots() {
		fn(s, t.slots[s])
	}
}
