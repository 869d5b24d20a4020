package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// IceDrawFormat decodes IceDraw IDF files: a 4-byte header (width,
// height as u16 LE, in characters), a 4096-byte font block (256 glyphs *
// 16 scanlines), a 48-byte VGA palette (16 * RGB, 6-bit), then the raw
// (char, attr) cell dump.
type IceDrawFormat struct{}

const (
	iceDrawFontBytes    = 4096
	iceDrawPaletteBytes = 48
	iceDrawHeaderBytes  = 4
)

func (IceDrawFormat) PrimaryExtension() string            { return "idf" }
func (IceDrawFormat) UsesParser() bool                    { return false }
func (IceDrawFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (IceDrawFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func (IceDrawFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	minLen := iceDrawHeaderBytes + iceDrawFontBytes + iceDrawPaletteBytes
	if len(data) < minLen {
		return nil, types.NewError(types.KindFileTooShort, "icedraw file shorter than header+font+palette")
	}
	width := int(data[0]) | int(data[1])<<8
	height := int(data[2]) | int(data[3])<<8
	if width <= 0 {
		width = 80
	}

	fontData := data[iceDrawHeaderBytes : iceDrawHeaderBytes+iceDrawFontBytes]
	pal := data[iceDrawHeaderBytes+iceDrawFontBytes : minLen]
	cells := data[minLen:]

	cellCount := len(cells) / 2
	if height <= 0 {
		height = cellCount / width
		if cellCount%width != 0 {
			height++
		}
	}
	if height == 0 {
		height = 1
	}

	buf := buffer.NewTextBuffer(width, height)
	buf.SetTerminalBuffer(load.AsTerminalBuffer)

	font := buffer.NewBitFont("IceDraw", 16, false)
	copy(font.GlyphData, fontData)
	buf.SetFont(0, font)

	p := buf.PaletteMut()
	colors := make([]types.Color, 0, 16)
	for i := 0; i+2 < len(pal); i += 3 {
		colors = append(colors, types.Color{
			R: scale6to8(pal[i]), G: scale6to8(pal[i+1]), B: scale6to8(pal[i+2]),
		})
	}
	p.Colors = colors

	layer := buf.LayersMut()[0]
	for i := 0; i+1 < len(cells); i += 2 {
		cellIdx := i / 2
		x, y := cellIdx%width, cellIdx/width
		if y >= height {
			break
		}
		ch, attr := cells[i], cells[i+1]
		_ = layer.SetChar(x, y, types.AttributedChar{Ch: buf.ToUnicode(ch), Attr: attrFromDOSByte(attr)}, false)
	}
	return buf, nil
}

func (IceDrawFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	d := scr.Dimensions()
	out := make([]byte, 0, iceDrawHeaderBytes+iceDrawFontBytes+iceDrawPaletteBytes+d.Width*d.Height*2)
	out = append(out, byte(d.Width), byte(d.Width>>8), byte(d.Height), byte(d.Height>>8))

	fontBytes := make([]byte, iceDrawFontBytes)
	scr.FontIter(func(slot uint8, f *buffer.BitFont) {
		if slot == 0 {
			copy(fontBytes, f.GlyphData)
		}
	})
	out = append(out, fontBytes...)

	pal := scr.Palette()
	for i := 0; i < 16; i++ {
		var r, g, b byte
		if pal != nil && i < len(pal.Colors) {
			c := pal.Colors[i]
			r, g, b = c.R, c.G, c.B
		}
		out = append(out, r>>2, g>>2, b>>2)
	}

	tb, _ := scr.(interface{ FromUnicode(r rune, fallback byte) byte })
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := scr.CharAt(types.Position{X: x, Y: y})
			var ch byte
			if tb != nil {
				ch = tb.FromUnicode(c.Ch, ' ')
			} else {
				ch = byte(c.Ch)
			}
			out = append(out, ch, attrByteDOS(c.Attr))
		}
	}
	return out, nil
}
