package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/sauce"
	"github.com/stlalpha/textmode/internal/types"
)

// BinFormat is the raw (char, attr) cell-pair dump with no header (spec
// §4.2 table row "Bin"). Width is not self-describing; it comes from a
// SAUCE trailer when present, otherwise load.DefaultWidth (conventionally
// encoded in the filename as `_WWxHH`, which is a front-end concern).
type BinFormat struct{}

func (BinFormat) PrimaryExtension() string            { return "bin" }
func (BinFormat) UsesParser() bool                    { return false }
func (BinFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (BinFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func (BinFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	rec, content := sauce.Parse(data)

	width := load.DefaultWidth
	if width == 0 {
		width = 80
	}
	if rec != nil {
		if w := rec.Width(); w > 0 {
			width = w
		}
	}
	if width <= 0 {
		width = 80
	}

	cellCount := len(content) / 2
	height := cellCount / width
	if cellCount%width != 0 {
		height++
	}
	if height == 0 {
		height = 1
	}

	buf := buffer.NewTextBuffer(width, height)
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	if rec != nil && rec.HasICEColors() {
		buf.SetIceMode(buffer.IceIce)
	}
	layer := buf.LayersMut()[0]

	for i := 0; i+1 < len(content); i += 2 {
		cellIdx := i / 2
		x, y := cellIdx%width, cellIdx/width
		ch, attr := content[i], content[i+1]
		a := types.TextAttribute{
			Foreground: types.Palette(attr & 0x0F),
			Background: types.Palette((attr >> 4) & 0x07),
		}
		if attr&0x80 != 0 {
			a.Flags |= types.AttrBlink
		}
		_ = layer.SetChar(x, y, types.AttributedChar{Ch: buf.ToUnicode(ch), Attr: a}, false)
	}
	return buf, nil
}

func (BinFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	d := scr.Dimensions()
	out := make([]byte, 0, d.Width*d.Height*2)
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

// attrByteDOS packs a TextAttribute into a classic DOS (blink, bg3, fg4)
// byte, shared by the Bin/Artworx/IceDraw/TundraDraw vendor formats.
func attrByteDOS(a types.TextAttribute) byte {
	fg := paletteIndex(a.Foreground) & 0x0F
	bg := paletteIndex(a.Background) & 0x07
	b := fg | (bg << 4)
	if a.Has(types.AttrBlink) {
		b |= 0x80
	}
	return b
}

// paletteIndex extracts a DOS16 palette index from an AttributeColor,
// falling back to index 7 (light gray, for foreground and background
// alike) for RGB/extended colors this legacy wire format cannot represent.
func paletteIndex(c types.AttributeColor) byte {
	if c.Kind == types.ColorPalette {
		return c.Index
	}
	return 7
}
