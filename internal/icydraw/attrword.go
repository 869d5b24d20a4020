package icydraw

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// Wire constants for the per-cell attr word (spec §4.2.1): bit 0xC000 is
// the end-of-line sentinel, 0x0800|0x4000 selects short form, and a lone
// 0x8000 marks an invisible cell.
const (
	wireEOL        uint16 = 0xC000
	wireShortMask  uint16 = 0x0800 | 0x4000
	wireInvisible  uint16 = 0x8000
)

const (
	extFgRGB = 0b0000_0001
	extBgRGB = 0b0000_0010
	extFgExt = 0b0000_0100
	extBgExt = 0b0000_1000
)

// decodeLegacyColor turns a raw 32-bit wire color plus the ext_attr
// bitfield into an AttributeColor, matching the long-form decode in
// icy_draw_v0.rs's decode_legacy_color.
func decodeLegacyColor(raw uint32, extAttr byte, isForeground bool) types.AttributeColor {
	if raw == 0x8000_0000 {
		return types.Transparent
	}
	rgbFlag, extFlag := byte(extFgRGB), byte(extFgExt)
	if !isForeground {
		rgbFlag, extFlag = extBgRGB, extBgExt
	}
	switch {
	case extAttr&rgbFlag != 0:
		return types.RGB(byte(raw>>16), byte(raw>>8), byte(raw))
	case extAttr&extFlag != 0:
		return types.ExtendedPalette(byte(raw))
	default:
		return types.Palette(byte(raw))
	}
}

// encodeLegacyColor is the writer-side inverse of decodeLegacyColor,
// returning the raw 32-bit value and the ext_attr bits this side
// contributes.
func encodeLegacyColor(c types.AttributeColor, isForeground bool) (raw uint32, ext byte) {
	rgbFlag, extFlag := byte(extFgRGB), byte(extFgExt)
	if !isForeground {
		rgbFlag, extFlag = extBgRGB, extBgExt
	}
	switch c.Kind {
	case types.ColorTransparent:
		return 0x8000_0000, 0
	case types.ColorRGB:
		return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B), rgbFlag
	case types.ColorExtendedPalette:
		return uint32(c.Index), extFlag
	default:
		return uint32(c.Index), 0
	}
}

// decodeCellRun reads one layer's cell grid (width x height) from a
// continuous attr-word-framed byte stream starting at row startY,
// returning the offset consumed and the row reached (which may be less
// than height if the stream truncates mid-layer for a continuation
// chunk to resume, spec §4.2.1's `layer_num -> next_y` map).
func decodeCellRun(data []byte, layer *buffer.Layer, width, height, startY int) (consumed, resumeY int, err error) {
	o := 0
	y := startY
	for y < height {
		if o >= len(data) {
			break
		}
		for x := 0; x < width; x++ {
			if len(data) < o+2 {
				return o, y, types.NewError(types.KindFileTooShort, "icydraw cell stream truncated mid-row")
			}
			attrRaw := uint16(data[o]) | uint16(data[o+1])<<8
			o += 2
			if attrRaw == wireEOL {
				break
			}
			isShort := attrRaw&wireShortMask != 0
			attr := attrRaw &^ wireShortMask
			if attr == wireInvisible {
				continue
			}

			need := 14
			if isShort {
				need = 4
			}
			if len(data) < o+need {
				return o, y, types.NewError(types.KindFileTooShort, "icydraw cell truncated")
			}

			var ch rune
			var fg, bg uint32
			var extAttr, fontPage byte
			if isShort {
				ch = rune(data[o])
				fg = uint32(data[o+1])
				bg = uint32(data[o+2])
				fontPage = data[o+3]
				o += 4
			} else {
				ch = rune(uint32(data[o]) | uint32(data[o+1])<<8 | uint32(data[o+2])<<16 | uint32(data[o+3])<<24)
				fg = uint32(data[o+4]) | uint32(data[o+5])<<8 | uint32(data[o+6])<<16 | uint32(data[o+7])<<24
				bg = uint32(data[o+8]) | uint32(data[o+9])<<8 | uint32(data[o+10])<<16 | uint32(data[o+11])<<24
				fontPage = data[o+12]
				extAttr = data[o+13]
				o += 14
			}
			if ch > 0x10FFFF {
				return o, y, types.NewError(types.KindUnsupportedFormat, "invalid unicode scalar in icydraw cell")
			}

			ta := types.TextAttribute{Flags: types.TextAttrFlag(attr), FontPage: fontPage}
			ta.Foreground = decodeLegacyColor(fg, extAttr, true)
			ta.Background = decodeLegacyColor(bg, extAttr, false)
			_ = layer.SetChar(x, y, types.AttributedChar{Ch: ch, Attr: ta}, false)
		}
		y++
	}
	return o, y, nil
}

// encodeCellRun writes a layer's width x height cell grid using the
// short attr-word form (6 bytes/cell) whenever both colors are plain
// palette entries whose raw values fit in one byte and the character fits
// in one byte, falling back to the long form (16 bytes/cell) otherwise.
// encodeCellRun always writes full-width rows (every column, no short
// rows), so the EOL sentinel is never emitted on the write side: the
// reader's inner loop naturally exhausts at x==width without needing the
// early-terminator. EOL exists in the wire format for loaders that write
// sparse/short rows (spec §4.2.1); this writer simply doesn't produce them.
func encodeCellRun(layer *buffer.Layer, width, height int) []byte {
	out := make([]byte, 0, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := layer.CharAt(x, y)
			if c.IsInvisible() {
				out = append(out, byte(wireInvisible), byte(wireInvisible>>8))
				continue
			}
			fgRaw, fgExt := encodeLegacyColor(c.Attr.Foreground, true)
			bgRaw, bgExt := encodeLegacyColor(c.Attr.Background, false)
			extAttr := fgExt | bgExt
			useShort := extAttr == 0 && c.Ch <= 0xFF && fgRaw <= 0xFF && bgRaw <= 0xFF

			attrRaw := uint16(c.Attr.Flags)
			if useShort {
				attrRaw |= wireShortMask
				out = append(out, byte(attrRaw), byte(attrRaw>>8), byte(c.Ch), byte(fgRaw), byte(bgRaw), c.Attr.FontPage)
			} else {
				out = append(out, byte(attrRaw), byte(attrRaw>>8))
				out = appendU32LE(out, uint32(c.Ch))
				out = appendU32LE(out, fgRaw)
				out = appendU32LE(out, bgRaw)
				out = append(out, c.Attr.FontPage, extAttr)
			}
		}
	}
	return out
}

func appendU32LE(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
