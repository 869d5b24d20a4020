package codec

import (
	"bytes"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// tundraMagic trails a TundraDraw file: "TUNDRA24" followed by a 16-entry
// RGB palette (3 bytes each, full 8-bit range, unlike XBin's 6-bit VGA
// palette).
var tundraMagic = []byte("TUNDRA24")

// TundraDrawFormat decodes TundraDraw's 24-bit-color cell stream: each
// cell is `{ch byte, fgR,fgG,fgB byte, bgR,bgG,bgB byte, flags byte}`,
// row-major at load.DefaultWidth (80 when unset). The width is not read
// from a SAUCE trailer.
type TundraDrawFormat struct{}

const tundraCellSize = 8

func (TundraDrawFormat) PrimaryExtension() string            { return "tnd" }
func (TundraDrawFormat) UsesParser() bool                    { return false }
func (TundraDrawFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (TundraDrawFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func (TundraDrawFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	if idx := bytes.LastIndex(data, tundraMagic); idx >= 0 {
		data = data[:idx]
	}

	width := load.DefaultWidth
	if width == 0 {
		width = 80
	}
	cellCount := len(data) / tundraCellSize
	height := cellCount / width
	if cellCount%width != 0 {
		height++
	}
	if height == 0 {
		height = 1
	}

	buf := buffer.NewTextBuffer(width, height)
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	layer := buf.LayersMut()[0]

	for i := 0; i+tundraCellSize <= len(data); i += tundraCellSize {
		cellIdx := i / tundraCellSize
		x, y := cellIdx%width, cellIdx/width
		cell := data[i : i+tundraCellSize]
		a := types.TextAttribute{
			Foreground: types.RGB(cell[1], cell[2], cell[3]),
			Background: types.RGB(cell[4], cell[5], cell[6]),
		}
		if cell[7]&0x01 != 0 {
			a.Flags |= types.AttrBold
		}
		_ = layer.SetChar(x, y, types.AttributedChar{Ch: buf.ToUnicode(cell[0]), Attr: a}, false)
	}
	return buf, nil
}

func (TundraDrawFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	d := scr.Dimensions()
	out := make([]byte, 0, d.Width*d.Height*tundraCellSize)
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
			fr, fg, fb := rgbOf(c.Attr.Foreground)
			br, bg2, bb := rgbOf(c.Attr.Background)
			flags := byte(0)
			if c.Attr.Has(types.AttrBold) {
				flags |= 0x01
			}
			out = append(out, ch, fr, fg, fb, br, bg2, bb, flags)
		}
	}
	out = append(out, tundraMagic...)
	pal := make([]byte, 0, 48)
	for _, rgb := range vga16 {
		pal = append(pal, rgb[0], rgb[1], rgb[2])
	}
	return append(out, pal...), nil
}

// rgbOf resolves any AttributeColor kind to concrete RGB using the
// standard VGA 16-color ramp for palette indices, matching the teacher's
// own DOS-color expectations for non-RGB cells.
func rgbOf(c types.AttributeColor) (r, g, b byte) {
	if c.Kind == types.ColorRGB {
		return c.R, c.G, c.B
	}
	idx := paletteIndex(c)
	if int(idx) < len(vga16) {
		rgb := vga16[idx]
		return rgb[0], rgb[1], rgb[2]
	}
	return 0xAA, 0xAA, 0xAA
}

var vga16 = [16][3]byte{
	{0x00, 0x00, 0x00}, {0x00, 0x00, 0xAA}, {0x00, 0xAA, 0x00}, {0x00, 0xAA, 0xAA},
	{0xAA, 0x00, 0x00}, {0xAA, 0x00, 0xAA}, {0xAA, 0x55, 0x00}, {0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55}, {0x55, 0x55, 0xFF}, {0x55, 0xFF, 0x55}, {0x55, 0xFF, 0xFF},
	{0xFF, 0x55, 0x55}, {0xFF, 0x55, 0xFF}, {0xFF, 0xFF, 0x55}, {0xFF, 0xFF, 0xFF},
}
