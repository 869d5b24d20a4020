package icydraw

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

func bufferTypeFromByte(b byte) buffer.BufferType {
	switch b {
	case 1:
		return buffer.BufferPetscii
	case 2:
		return buffer.BufferAtascii
	case 3:
		return buffer.BufferViewdata
	case 4:
		return buffer.BufferUnicode
	default:
		return buffer.BufferCP437
	}
}

func bufferTypeToByte(t buffer.BufferType) byte { return byte(t) }

func iceModeFromByte(b byte) buffer.IceMode {
	switch b {
	case 0:
		return buffer.IceUnlimited
	case 2:
		return buffer.IceIce
	default:
		return buffer.IceBlink
	}
}

func iceModeToByte(m buffer.IceMode) byte { return byte(m) }

func fontModeFromByte(b byte) buffer.FontMode {
	switch b {
	case 1:
		return buffer.FontSauce
	case 2:
		return buffer.FontUnlimited
	case 3:
		return buffer.FontFixedSize
	default:
		return buffer.FontSingle
	}
}

func fontModeToByte(m buffer.FontMode) byte { return byte(m) }

// decodePaletteBytes parses this engine's PALETTE chunk payload: a flat
// run of 3-byte RGB triples. The original format's exact on-disk palette
// encoding isn't in the retrieved reference sources (it dispatches to a
// separate PaletteFormat::Ice loader not included in the pack); this is a
// deliberately simple, internally-consistent stand-in documented in
// DESIGN.md.
func decodePaletteBytes(data []byte) ([]types.Color, error) {
	colors := make([]types.Color, 0, len(data)/3)
	for i := 0; i+2 < len(data); i += 3 {
		colors = append(colors, types.Color{R: data[i], G: data[i+1], B: data[i+2]})
	}
	return colors, nil
}

func encodePaletteBytes(p *buffer.Palette) []byte {
	out := make([]byte, 0, len(p.Colors)*3)
	for _, c := range p.Colors {
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// decodeFontBytes parses a FONT_<slot> chunk payload: a length-prefixed
// UTF-8 name (the same read_utf8_encoded_string framing used elsewhere in
// this format), then a 1-byte height, a 1-byte is512 flag, then the raw
// glyph data.
func decodeFontBytes(data []byte) (*buffer.BitFont, error) {
	name, used, err := readUTF8String(data)
	if err != nil {
		return nil, err
	}
	rest := data[used:]
	if len(rest) < 2 {
		return nil, types.NewError(types.KindFileTooShort, "font chunk truncated at header")
	}
	height := int(rest[0])
	is512 := rest[1] != 0
	font := buffer.NewBitFont(name, height, is512)
	copy(font.GlyphData, rest[2:])
	return font, nil
}

func encodeFontBytes(f *buffer.BitFont) []byte {
	out := appendUTF8String(nil, f.Name)
	is512 := byte(0)
	if f.Is512 {
		is512 = 1
	}
	out = append(out, byte(f.Height), is512)
	out = append(out, f.GlyphData...)
	return out
}

func appendUTF8String(out []byte, s string) []byte {
	out = appendU32LE(out, uint32(len(s)))
	return append(out, []byte(s)...)
}
