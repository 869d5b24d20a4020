package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// CtrlAFormat decodes the Celerity/WWIV-style Ctrl-A (0x01) code pairs:
// a following digit '0'-'9' selects foreground palette index 0-9 (there
// are no background codes), 'H' clears the screen, 'Z' ends the record.
type CtrlAFormat struct{}

const ctrlAPrefix = 0x01

var ctrlAFgCodes = map[byte]uint8{
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7,
	'8': 8, '9': 9,
}

func (CtrlAFormat) PrimaryExtension() string            { return "msg" }
func (CtrlAFormat) UsesParser() bool                    { return false }
func (CtrlAFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (CtrlAFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func (CtrlAFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
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
		if b == ctrlAPrefix && i+1 < len(data) {
			code := data[i+1]
			i++
			switch {
			case code == 'H':
				buf.ClearScreen()
				x, y = 0, 0
			case code == 'Z':
				return buf, nil
			case code >= '0' && code <= '9':
				idx := ctrlAFgCodes[code]
				attr.Foreground = types.Palette(idx)
			}
			continue
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

func (CtrlAFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	d := scr.Dimensions()
	out := make([]byte, 0, d.Width*d.Height)
	tb, _ := scr.(interface{ FromUnicode(r rune, fallback byte) byte })
	var curFg uint8
	have := false
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := scr.CharAt(types.Position{X: x, Y: y})
			fg := paletteIndex(c.Attr.Foreground)
			if !have || fg != curFg {
				out = append(out, ctrlAPrefix, '0'+(fg%10))
				curFg = fg
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
