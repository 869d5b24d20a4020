// Package xbin implements the XBin binary format codec (spec §4.4,
// component C4): header parsing, the four-mode optimal run-length
// compression, and a streaming bounds-checked decoder. Grounded on the
// byte-layout conventions of stlalpha-vision3/internal/ansi/ansi.go's
// binary-format handling (CP437 byte <-> AttributedChar translation) and
// generalized to XBin's own header/flags/palette/font framing, which the
// teacher never implements itself.
package xbin

import (
	"encoding/binary"
	"fmt"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/logging"
	"github.com/stlalpha/textmode/internal/types"
)

const (
	magic     = "XBIN"
	headerLen = 11

	flagPalette    = 0x01
	flagFont       = 0x02
	flagCompressed = 0x04
	flagNonBlink   = 0x08
	flag512Char    = 0x10
)

// Header is the 11-byte XBin file header (spec §4.4).
type Header struct {
	Width, Height int
	FontHeight    int
	HasPalette    bool
	HasFont       bool
	Compressed    bool
	NonBlink      bool
	Is512Char     bool
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < headerLen || string(data[0:4]) != magic || data[4] != 0x1A {
		return Header{}, types.NewError(types.KindInvalidXBin, "missing XBIN magic/EOF marker")
	}
	flags := data[10]
	h := Header{
		Width:      int(binary.LittleEndian.Uint16(data[5:7])),
		Height:     int(binary.LittleEndian.Uint16(data[7:9])),
		FontHeight: int(data[9]),
		HasPalette: flags&flagPalette != 0,
		HasFont:    flags&flagFont != 0,
		Compressed: flags&flagCompressed != 0,
		NonBlink:   flags&flagNonBlink != 0,
		Is512Char:  flags&flag512Char != 0,
	}
	return h, nil
}

func (h Header) flags() byte {
	var f byte
	if h.HasPalette {
		f |= flagPalette
	}
	if h.HasFont {
		f |= flagFont
	}
	if h.Compressed {
		f |= flagCompressed
	}
	if h.NonBlink {
		f |= flagNonBlink
	}
	if h.Is512Char {
		f |= flag512Char
	}
	return f
}

// fontBytes returns the size of the font table in the file: 256 or 512
// characters, at FontHeight bytes each (spec [SUPPLEMENT]: the 512-char
// flag doubles character count, not glyph height; FontHeight still governs
// bytes-per-glyph).
func (h Header) fontBytes() int {
	chars := 256
	if h.Is512Char {
		chars = 512
	}
	return chars * h.FontHeight
}

// Decode parses a complete XBin file into a fresh TextBuffer. The decoder
// is streaming and bounds-checked: an EOF mid-run clips output to the cells
// actually read rather than panicking (spec §4.4 failure modes).
func Decode(data []byte) (*buffer.TextBuffer, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	off := headerLen

	b := buffer.NewTextBuffer(h.Width, h.Height)
	if h.NonBlink {
		b.SetIceMode(buffer.IceIce)
	}

	if h.HasPalette {
		const paletteBytes = 48
		if off+paletteBytes > len(data) {
			return nil, types.NewError(types.KindInvalidXBin, "truncated palette block")
		}
		pal := b.Palette()
		raw := data[off : off+paletteBytes]
		for i := 0; i < 16; i++ {
			r, g, bch := raw[i*3], raw[i*3+1], raw[i*3+2]
			pal.Colors[i] = types.Color{R: scale6to8(r), G: scale6to8(g), B: scale6to8(bch)}
		}
		off += paletteBytes
	}

	if h.HasFont {
		fb := h.fontBytes()
		if off+fb > len(data) {
			return nil, types.NewError(types.KindInvalidXBin, "truncated font block")
		}
		font := buffer.NewBitFont("xbin", h.FontHeight, h.Is512Char)
		copy(font.GlyphData, data[off:off+fb])
		b.SetFont(0, font)
		off += fb
	}

	table := buildAttrTable()
	layer := b.LayersMut()[0]

	if h.Compressed {
		decodeCompressed(data[off:], layer, h.Width, h.Height, table)
	} else {
		decodeUncompressed(data[off:], layer, h.Width, h.Height, table)
	}

	logging.Debug("xbin: decoded %dx%d (compressed=%v, 512char=%v)", h.Width, h.Height, h.Compressed, h.Is512Char)
	return b, nil
}

func scale6to8(v byte) byte {
	v &= 0x3F
	return byte((uint16(v)*255 + 31) / 63)
}

// attrTable precomputes a fg/bg TextAttribute for every one of the 256
// possible attribute bytes (4-bit fg, 3-bit bg, 1-bit blink), so decode is
// a single indexed read per cell (spec §4.4 decoder contract).
func buildAttrTable() [256]types.TextAttribute {
	var t [256]types.TextAttribute
	for a := 0; a < 256; a++ {
		fg := uint8(a & 0x0F)
		bg := uint8((a >> 4) & 0x07)
		blink := a&0x80 != 0
		attr := types.TextAttribute{Foreground: types.Palette(fg), Background: types.Palette(bg)}
		if blink {
			attr.Flags |= types.AttrBlink
		}
		t[a] = attr
	}
	return t
}

type cursor struct {
	x, y, width, height int
}

func (c *cursor) advance() bool {
	c.x++
	if c.x >= c.width {
		c.x = 0
		c.y++
	}
	return c.y < c.height
}

func decodeUncompressed(data []byte, layer *buffer.Layer, width, height int, table [256]types.TextAttribute) {
	cur := cursor{width: width, height: height}
	i := 0
	for cur.y < height {
		if i+1 >= len(data) {
			logging.Debug("xbin: truncated uncompressed data at (%d,%d), clipping", cur.x, cur.y)
			return
		}
		ch, a := data[i], data[i+1]
		i += 2
		_ = layer.SetChar(cur.x, cur.y, types.AttributedChar{Ch: rune(ch), Attr: table[a]}, false)
		if !cur.advance() {
			return
		}
	}
}

// decodeCompressed walks the four run-mode encoding described in spec
// §4.4: the top two bits of the run byte select Off/Char/Attr/Full, and
// the low six bits are run-length-1.
func decodeCompressed(data []byte, layer *buffer.Layer, width, height int, table [256]types.TextAttribute) {
	cur := cursor{width: width, height: height}
	i := 0
	for cur.y < height {
		if i >= len(data) {
			logging.Recovered("xbin", types.NewError(types.KindFileTooShort,
				fmt.Sprintf("EOF mid-run at (%d,%d), clipping output", cur.x, cur.y)))
			return
		}
		runByte := data[i]
		i++
		mode := runByte >> 6
		n := int(runByte&0x3F) + 1

		switch mode {
		case 0: // Off: (ch, attr) x N
			for k := 0; k < n; k++ {
				if i+1 >= len(data) {
					logging.Debug("xbin: truncated Off run, clipping")
					return
				}
				ch, a := data[i], data[i+1]
				i += 2
				_ = layer.SetChar(cur.x, cur.y, types.AttributedChar{Ch: rune(ch), Attr: table[a]}, false)
				if !cur.advance() {
					return
				}
			}
		case 1: // Char: ch, attr x N
			if i >= len(data) {
				return
			}
			ch := data[i]
			i++
			for k := 0; k < n; k++ {
				if i >= len(data) {
					logging.Debug("xbin: truncated Char run, clipping")
					return
				}
				a := data[i]
				i++
				_ = layer.SetChar(cur.x, cur.y, types.AttributedChar{Ch: rune(ch), Attr: table[a]}, false)
				if !cur.advance() {
					return
				}
			}
		case 2: // Attr: attr, ch x N
			if i >= len(data) {
				return
			}
			a := data[i]
			i++
			for k := 0; k < n; k++ {
				if i >= len(data) {
					logging.Debug("xbin: truncated Attr run, clipping")
					return
				}
				ch := data[i]
				i++
				_ = layer.SetChar(cur.x, cur.y, types.AttributedChar{Ch: rune(ch), Attr: table[a]}, false)
				if !cur.advance() {
					return
				}
			}
		case 3: // Full: ch, attr (single pair repeated N times)
			if i+1 >= len(data) {
				logging.Debug("xbin: truncated Full run, clipping")
				return
			}
			ch, a := data[i], data[i+1]
			i += 2
			for k := 0; k < n; k++ {
				_ = layer.SetChar(cur.x, cur.y, types.AttributedChar{Ch: rune(ch), Attr: table[a]}, false)
				if !cur.advance() {
					return
				}
			}
		}
	}
}
