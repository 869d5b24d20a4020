package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// PCBoardFormat decodes `@X` + two hex digits (background, foreground)
// color codes embedded in an otherwise plain CP437 stream (spec §4.2
// table, §6.1 "ANSI CSI, OSC (partial), PCBoard @X.. codes").
type PCBoardFormat struct{}

func (PCBoardFormat) PrimaryExtension() string            { return "pcb" }
func (PCBoardFormat) UsesParser() bool                    { return false }
func (PCBoardFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (PCBoardFormat) TerminalEmulation() TerminalEmulation { return EmulationPCBoard }

func hexNibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	default:
		return 0, false
	}
}

func (PCBoardFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
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
		if b == '@' && i+3 < len(data) && data[i+1] == 'X' {
			if bg, ok1 := hexNibble(data[i+2]); ok1 {
				if fg, ok2 := hexNibble(data[i+3]); ok2 {
					attr = types.TextAttribute{
						Foreground: types.Palette(fg),
						Background: types.Palette(bg),
					}
					i += 3
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

func (PCBoardFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
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
				bg := paletteIndex(c.Attr.Background)
				out = append(out, '@', 'X', hexDigit(bg), hexDigit(fg))
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

func hexDigit(v byte) byte {
	v &= 0x0F
	if v < 10 {
		return '0' + v
	}
	return 'A' + (v - 10)
}
