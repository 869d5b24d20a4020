package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// RenegadeFormat decodes Renegade/WWIV "pipe codes": `|` followed by two
// decimal digits. 00-15 select a foreground DOS16 color (bright if >7),
// 16-23 select one of the 8 background colors.
type RenegadeFormat struct{}

func (RenegadeFormat) PrimaryExtension() string            { return "ren" }
func (RenegadeFormat) UsesParser() bool                    { return false }
func (RenegadeFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (RenegadeFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func digit(b byte) (byte, bool) {
	if b >= '0' && b <= '9' {
		return b - '0', true
	}
	return 0, false
}

func (RenegadeFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	width := load.DefaultWidth
	if width == 0 {
		width = 80
	}
	buf := buffer.NewTextBuffer(width, 25)
	buf.SetTerminalBuffer(true)
	layer := buf.LayersMut()[0]

	x, y := 0, 0
	attr := types.DefaultAttribute()
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b == '|' && i+2 < len(data) {
			if d1, ok1 := digit(data[i+1]); ok1 {
				if d2, ok2 := digit(data[i+2]); ok2 {
					code := int(d1)*10 + int(d2)
					switch {
					case code <= 15:
						f := uint8(code & 0x0F)
						attr.Foreground = types.Palette(f)
						if code > 7 {
							attr.Flags |= types.AttrBold
						}
					case code >= 16 && code <= 23:
						attr.Background = types.Palette(uint8(code - 16))
					}
					i += 2
					continue
				}
			}
		}
		switch b {
		case '\r':
			x = 0
		case '\n':
			y++
		default:
			if x < width {
				_ = layer.SetChar(x, y, types.AttributedChar{Ch: buf.ToUnicode(b), Attr: attr}, true)
			}
			x++
			if x >= width {
				x = 0
				y++
			}
		}
	}
	return buf, nil
}

func (RenegadeFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	d := scr.Dimensions()
	out := make([]byte, 0, d.Width*d.Height)
	tb, _ := scr.(interface{ FromUnicode(r rune, fallback byte) byte })
	var cur types.TextAttribute
	have := false
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := scr.CharAt(types.Position{X: x, Y: y})
			if !have || c.Attr != cur {
				fg := paletteIndex(c.Attr.Foreground)
				if c.Attr.Has(types.AttrBold) {
					fg |= 0x08
				}
				bg := paletteIndex(c.Attr.Background)
				out = append(out, '|', '0'+(fg/10), '0'+(fg%10))
				bgCode := 16 + bg
				out = append(out, '|', '0'+(bgCode/10), '0'+(bgCode%10))
				cur = c.Attr
				have = true
			}
			if tb != nil {
				out = append(out, tb.FromUnicode(c.Ch, ' '))
			} else {
				out = append(out, byte(c.Ch))
			}
		}
		out = append(out, '\r', '\n')
	}
	return out, nil
}
