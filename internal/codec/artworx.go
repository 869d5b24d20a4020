package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// ArtworxFormat decodes Artworx ADF files: a 1-byte palette-marker (0x00
// or 0xFF), followed by a 192-byte palette (64 entries * RGB, 6-bit VGA
// range scaled to 8-bit like XBin's), followed by a raw (char, attr)
// cell dump at a fixed 80-column width.
type ArtworxFormat struct{}

const (
	artworxPaletteSize = 192
	artworxWidth       = 80
)

func (ArtworxFormat) PrimaryExtension() string            { return "adf" }
func (ArtworxFormat) UsesParser() bool                    { return false }
func (ArtworxFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (ArtworxFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func (ArtworxFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	if len(data) < 1+artworxPaletteSize {
		return nil, types.NewError(types.KindFileTooShort, "artworx file shorter than header+palette")
	}
	pal := data[1 : 1+artworxPaletteSize]
	cells := data[1+artworxPaletteSize:]

	width := artworxWidth
	cellCount := len(cells) / 2
	height := cellCount / width
	if cellCount%width != 0 {
		height++
	}
	if height == 0 {
		height = 1
	}

	buf := buffer.NewTextBuffer(width, height)
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	p := buf.PaletteMut()
	colors := make([]types.Color, 0, 64)
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
		ch, attr := cells[i], cells[i+1]
		a := attrFromDOSByte(attr)
		_ = layer.SetChar(x, y, types.AttributedChar{Ch: buf.ToUnicode(ch), Attr: a}, false)
	}
	return buf, nil
}

// scale6to8 widens a 0-63 VGA DAC value to 0-255, mirroring the XBin
// palette's identical scaling rule.
func scale6to8(v byte) byte {
	return byte((uint16(v)*255 + 31) / 63)
}

func (ArtworxFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	out := make([]byte, 0, 1+artworxPaletteSize)
	out = append(out, 0x00)

	pal := scr.Palette()
	for i := 0; i < 64; i++ {
		var r, g, b byte
		if pal != nil && i < len(pal.Colors) {
			c := pal.Colors[i]
			r, g, b = c.R, c.G, c.B
		}
		out = append(out, r>>2, g>>2, b>>2)
	}

	d := scr.Dimensions()
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
