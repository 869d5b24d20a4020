package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// AvatarFormat decodes the Avatar/0 control stream: 0x16 (Ctrl-P)
// followed by an attribute byte sets current color; 0x19 (Ctrl-Y)
// followed by a repeat count and a character repeats that character;
// 0x0C clears the screen; CR/LF move the caret as usual. Avatar never
// reached the full C5 parser pipeline in this build (see DESIGN.md); it
// is decoded directly here the same way the ASCII/Bin formats are.
type AvatarFormat struct{}

const (
	avatarSetAttr  = 0x16
	avatarRepeat   = 0x19
	avatarClear    = 0x0C
)

func (AvatarFormat) PrimaryExtension() string            { return "avt" }
func (AvatarFormat) UsesParser() bool                    { return false }
func (AvatarFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (AvatarFormat) TerminalEmulation() TerminalEmulation { return EmulationAvatar }

func (AvatarFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	width := load.DefaultWidth
	if width == 0 {
		width = 80
	}
	buf := buffer.NewTextBuffer(width, 25)
	buf.SetTerminalBuffer(true)
	layer := buf.LayersMut()[0]

	x, y := 0, 0
	attr := types.DefaultAttribute()
	put := func(ch rune) {
		_ = layer.SetChar(x, y, types.AttributedChar{Ch: ch, Attr: attr}, true)
		x++
		if x >= width {
			x = 0
			y++
		}
	}

	for i := 0; i < len(data); i++ {
		b := data[i]
		switch b {
		case avatarSetAttr:
			if i+1 < len(data) {
				attr = attrFromDOSByte(data[i+1])
				i++
			}
		case avatarRepeat:
			if i+2 < len(data) {
				count := int(data[i+1])
				ch := buf.ToUnicode(data[i+2])
				for n := 0; n < count; n++ {
					put(ch)
				}
				i += 2
			}
		case avatarClear:
			buf.ClearScreen()
			x, y = 0, 0
		case '\r':
			x = 0
		case '\n':
			y++
		default:
			put(buf.ToUnicode(b))
		}
	}
	return buf, nil
}

// attrFromDOSByte unpacks a classic DOS attribute byte (blink, bg3, fg4)
// into a TextAttribute, the inverse of attrByteDOS.
func attrFromDOSByte(b byte) types.TextAttribute {
	a := types.TextAttribute{
		Foreground: types.Palette(b & 0x0F),
		Background: types.Palette((b >> 4) & 0x07),
	}
	if b&0x80 != 0 {
		a.Flags |= types.AttrBlink
	}
	return a
}

func (AvatarFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	d := scr.Dimensions()
	out := make([]byte, 0, d.Width*d.Height)
	tb, _ := scr.(interface{ FromUnicode(r rune, fallback byte) byte })
	var cur types.TextAttribute
	have := false
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := scr.CharAt(types.Position{X: x, Y: y})
			if !have || c.Attr != cur {
				out = append(out, avatarSetAttr, attrByteDOS(c.Attr))
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
