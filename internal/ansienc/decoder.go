package ansienc

import (
	"strconv"
	"strings"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/logging"
	"github.com/stlalpha/textmode/internal/types"
)

// Decode replays ANSI v2 bytes produced by Encode (or any CP437 ANSI art
// stream) onto a freshly created buffer, for the roundtrip property in
// spec §8 and for callers that only need "decode this one ANSI blob" without
// going through the full streaming parser/sink in internal/parser.
//
// This is intentionally a smaller state machine than C5's: it only
// recognizes the control sequences the encoder itself emits plus the common
// ones real-world ANSI art uses (spec §4.3, "Decoder parses..."). Unknown
// sequences are consumed and logged, never aborting the decode.
func Decode(data []byte, width, height int) *buffer.TextBuffer {
	b := buffer.NewTextBuffer(width, height)
	d := &decodeState{buf: b, fg: types.Palette(7), bg: types.Palette(0)}
	d.run(data)
	return b
}

type decodeState struct {
	buf      *buffer.TextBuffer
	x, y     int
	fg, bg   types.AttributeColor
	flags    types.TextAttrFlag
	fontPage uint8
	iceOn    bool
	savedX, savedY int
}

func (d *decodeState) run(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		if b == 0x1b {
			consumed := d.dispatch(data[i:])
			if consumed <= 0 {
				consumed = 1
			}
			i += consumed
			continue
		}
		if b == '\r' {
			d.x = 0
			i++
			continue
		}
		if b == '\n' {
			d.y++
			d.x = 0
			i++
			continue
		}
		d.putRune(rune(b))
		i++
	}
}

func (d *decodeState) putRune(r rune) {
	attr := types.TextAttribute{Flags: d.flags, Foreground: d.fg, Background: d.bg, FontPage: d.fontPage}
	_ = d.buf.SetChar(0, types.Position{X: d.x, Y: d.y}, types.AttributedChar{Ch: r, Attr: attr})
	d.x++
	// Autowrap: the encoder omits CRLF after a row printed to its last
	// column, relying on the cursor advancing to the next row here.
	if w := d.buf.Dimensions().Width; w > 0 && d.x >= w {
		d.x = 0
		d.y++
	}
}

// dispatch handles one escape sequence beginning at data[0]=='\x1b' and
// returns the number of bytes consumed.
func (d *decodeState) dispatch(data []byte) int {
	if len(data) < 2 {
		return 1
	}
	switch data[1] {
	case '7':
		d.savedX, d.savedY = d.x, d.y
		return 2
	case '8':
		d.x, d.y = d.savedX, d.savedY
		return 2
	case '[':
		return d.dispatchCSI(data)
	default:
		logging.Debug("ansienc: unknown escape 0x%02x, skipping", data[1])
		return 2
	}
}

func (d *decodeState) dispatchCSI(data []byte) int {
	// data[0]==ESC, data[1]=='['
	j := 2
	private := false
	if j < len(data) && data[j] == '?' {
		private = true
		j++
	}
	paramStart := j
	for j < len(data) {
		c := data[j]
		if (c >= '0' && c <= '9') || c == ';' {
			j++
			continue
		}
		break
	}
	if j >= len(data) {
		return j // incomplete, consume what we have
	}
	params := parseParams(string(data[paramStart:j]))
	final := data[j]
	total := j + 1

	if private {
		if final == 'h' || final == 'l' {
			if len(params) == 1 && params[0] == 33 {
				d.iceOn = final == 'h'
			}
		}
		return total
	}

	switch final {
	case 'm':
		d.applySGR(params)
	case 'C':
		d.x += param1(params, 1)
	case 'D':
		if strings.Contains(string(data[paramStart:j]), ";") && len(params) == 2 {
			// font-page SCS analogue: ESC[0;<page>D
			d.fontPage = uint8(params[1])
		} else {
			d.x -= param1(params, 1)
		}
	case 'A':
		d.y -= param1(params, 1)
	case 'B':
		d.y += param1(params, 1)
	case 'H', 'f':
		row, col := 1, 1
		if len(params) > 0 {
			row = params[0]
		}
		if len(params) > 1 {
			col = params[1]
		}
		d.y, d.x = row-1, col-1
	case 'd':
		d.y = param1(params, 1) - 1
	case 'G', '`':
		d.x = param1(params, 1) - 1
	case 'b':
		if len(params) > 0 {
			d.repeatLast(params[0])
		}
	default:
		logging.Debug("ansienc: unhandled CSI final %q, skipping", string(final))
	}
	return total
}

func (d *decodeState) repeatLast(n int) {
	prevX := d.x - 1
	if prevX < 0 {
		return
	}
	last := d.buf.CharAt(types.Position{X: prevX, Y: d.y})
	for i := 0; i < n; i++ {
		d.putRune(last.Ch)
	}
}

func (d *decodeState) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			d.flags = 0
			d.fg = types.Palette(7)
			d.bg = types.Palette(0)
		case p == 1:
			d.flags |= types.AttrBold
		case p == 2:
			d.flags |= types.AttrFaint
		case p == 3:
			d.flags |= types.AttrItalic
		case p == 4:
			d.flags |= types.AttrUnderline
		case p == 5:
			d.flags |= types.AttrBlink
		case p == 8:
			d.flags |= types.AttrConcealed
		case p == 9:
			d.flags |= types.AttrCrossedOut
		case p == 21:
			d.flags |= types.AttrDoubleUnderline
		case p >= 30 && p <= 37:
			d.fg = types.Palette(uint8(p - 30))
		case p >= 90 && p <= 97:
			d.fg = types.Palette(uint8(p-90) + 8)
		case p >= 40 && p <= 47:
			d.bg = types.Palette(uint8(p - 40))
		case p >= 100 && p <= 107:
			d.bg = types.Palette(uint8(p-100) + 8)
		case p == 38 || p == 48:
			target := &d.fg
			if p == 48 {
				target = &d.bg
			}
			if i+1 < len(params) && params[i+1] == 5 && i+2 < len(params) {
				*target = types.ExtendedPalette(uint8(params[i+2]))
				i += 2
			} else if i+1 < len(params) && params[i+1] == 2 && i+4 < len(params) {
				*target = types.RGB(uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4]))
				i += 4
			}
		}
	}
}

func param1(params []int, def int) int {
	if len(params) == 0 || params[0] == 0 {
		return def
	}
	return params[0]
}

func parseParams(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, _ := strconv.Atoi(p)
		out[i] = n
	}
	return out
}
