package parser

import (
	"strconv"
	"strings"

	"github.com/stlalpha/textmode/internal/logging"
	"github.com/stlalpha/textmode/internal/types"
)

// Parser accepts arbitrarily fragmented byte input and emits commands into
// a Sink (spec §4.5). One Parser instance per source format; ANSIParser is
// the default.
type Parser interface {
	Parse(data []byte, sink Sink)
}

type csiState int

const (
	stateGround csiState = iota
	stateEsc
	stateCsiEntry
	stateCsiParam
	stateCsiIntermediate
)

// ANSIParser is the standard CSI automaton (spec §4.5): Ground -> Esc ->
// CsiEntry -> CsiParam -> CsiIntermediate -> final-byte dispatch. State
// persists across Parse calls so a CSI sequence split across two calls to
// Parse is handled identically to one call with the concatenated bytes
// (spec §8 fragmentation-invariance property).
type ANSIParser struct {
	state         csiState
	private       byte
	paramBuf      strings.Builder
	intermediates strings.Builder

	x, y           int
	savedX, savedY int
	width, height  int
	heightCapped   bool

	flags    types.TextAttrFlag
	fg, bg   types.AttributeColor
	fontPage uint8
}

// heightGrowthChunk rows are added to the parser's tracked height whenever
// a line feed runs off the bottom, up to types.MaxBufferHeight (spec §5
// "terminal buffer grows unbounded during streaming; hard cap at
// MAX_BUFFER_HEIGHT"). Growth is chunked rather than row-at-a-time so a
// long stream doesn't push one CmdResizeRequest per line.
const heightGrowthChunk = 256

func growHeight(current int) int {
	next := current + heightGrowthChunk
	if next > types.MaxBufferHeight {
		next = types.MaxBufferHeight
	}
	return next
}

// NewANSIParser returns a parser whose caret starts at the origin of a
// width x height screen.
func NewANSIParser(width, height int) *ANSIParser {
	return &ANSIParser{
		width: width, height: height,
		fg: types.Palette(7), bg: types.Palette(0),
	}
}

// Parse implements Parser. Truncated sequences leave the parser mid-CSI and
// resume correctly on the next call (spec §4.5 failure handling).
func (p *ANSIParser) Parse(data []byte, sink Sink) {
	for _, b := range data {
		p.step(b, sink)
	}
}

func (p *ANSIParser) step(b byte, sink Sink) {
	switch p.state {
	case stateGround:
		p.ground(b, sink)
	case stateEsc:
		p.esc(b, sink)
	case stateCsiEntry, stateCsiParam:
		p.csi(b, sink)
	case stateCsiIntermediate:
		p.csiIntermediate(b, sink)
	}
}

func (p *ANSIParser) ground(b byte, sink Sink) {
	switch b {
	case 0x1b:
		p.resetCSI()
		p.state = stateEsc
	case '\r':
		p.x = 0
		p.move(sink)
	case '\n':
		p.lineFeed(sink)
	case 0x08:
		if p.x > 0 {
			p.x--
			p.move(sink)
		}
	case 0x07:
		sink.Push(QueuedCommand{Kind: CmdBell})
	default:
		if b >= 0x20 {
			p.writeChar(rune(b), sink)
		}
	}
}

func (p *ANSIParser) esc(b byte, sink Sink) {
	switch b {
	case '[':
		p.state = stateCsiEntry
	case '7':
		p.savedX, p.savedY = p.x, p.y
		p.state = stateGround
	case '8':
		p.x, p.y = p.savedX, p.savedY
		p.move(sink)
		p.state = stateGround
	case 'D':
		p.lineFeed(sink)
		p.state = stateGround
	case 'E':
		p.x = 0
		p.lineFeed(sink)
		p.state = stateGround
	case 'M':
		if p.y > 0 {
			p.y--
			p.move(sink)
		}
		p.state = stateGround
	default:
		logging.Debug("parser: unrecognized escape 0x%02x, dropping", b)
		p.state = stateGround
	}
}

func (p *ANSIParser) csi(b byte, sink Sink) {
	switch {
	case b == '?' || b == '>' || b == '=' || b == '<':
		p.private = b
		p.state = stateCsiParam
	case b >= '0' && b <= '9', b == ';':
		p.paramBuf.WriteByte(b)
		p.state = stateCsiParam
	case b >= 0x20 && b <= 0x2f:
		p.intermediates.WriteByte(b)
		p.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.dispatch(b, sink)
		p.state = stateGround
	default:
		logging.Debug("parser: invalid CSI byte 0x%02x, dropping", b)
		p.state = stateGround
	}
}

func (p *ANSIParser) csiIntermediate(b byte, sink Sink) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		p.intermediates.WriteByte(b)
	case b >= 0x40 && b <= 0x7e:
		p.dispatch(b, sink)
		p.state = stateGround
	default:
		logging.Debug("parser: unrecognized intermediate byte 0x%02x, dropping", b)
		p.state = stateGround
	}
}

func (p *ANSIParser) params() []int {
	s := p.paramBuf.String()
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			n = 0 // bad parameter digits are clamped to 0, not rejected
		}
		out[i] = n
	}
	return out
}

func (p *ANSIParser) resetCSI() {
	p.paramBuf.Reset()
	p.intermediates.Reset()
	p.private = 0
}

// dispatch fires exactly one command enqueue per terminating final byte,
// guaranteeing at-most-one command per CSI (spec §4.5).
func (p *ANSIParser) dispatch(final byte, sink Sink) {
	params := p.params()
	defer p.resetCSI()

	if p.private == '?' {
		if final == 'h' || final == 'l' {
			if len(params) == 1 && params[0] == 33 {
				sink.Push(QueuedCommand{Kind: CmdIceModeToggle, IceOn: final == 'h'})
			}
		}
		return
	}

	switch final {
	case 'A':
		p.y = clampLo(p.y-arg1(params), 0)
		p.move(sink)
	case 'B':
		p.y = clampHi(p.y+arg1(params), p.height-1)
		p.move(sink)
	case 'C':
		p.x = clampHi(p.x+arg1(params), p.width-1)
		p.move(sink)
	case 'D':
		p.x = clampLo(p.x-arg1(params), 0)
		p.move(sink)
	case 'H', 'f':
		row, col := 1, 1
		if len(params) > 0 && params[0] > 0 {
			row = params[0]
		}
		if len(params) > 1 && params[1] > 0 {
			col = params[1]
		}
		p.y, p.x = clampHi(row-1, p.height-1), clampHi(col-1, p.width-1)
		p.move(sink)
	case 'd':
		p.y = clampHi(arg1(params)-1, p.height-1)
		p.move(sink)
	case 'G', '`':
		p.x = clampHi(arg1(params)-1, p.width-1)
		p.move(sink)
	case 'b':
		// REP is decoded at the codec layer (ansienc); the general parser
		// ignores it (no write, no cursor movement) since it has no "last
		// printed char" concept independent of the sink.
	case 'm':
		p.sgr(params, sink)
	}
}

func (p *ANSIParser) sgr(params []int, sink Sink) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		n := params[i]
		switch {
		case n == 0:
			p.flags, p.fg, p.bg = 0, types.Palette(7), types.Palette(0)
		case n == 1:
			p.flags |= types.AttrBold
			if p.fg.Kind == types.ColorPalette && p.fg.Index < 8 {
				p.fg = types.Palette(p.fg.Index + 8)
			}
		case n == 4:
			p.flags |= types.AttrUnderline
		case n == 5:
			p.flags |= types.AttrBlink
		case n >= 30 && n <= 37:
			p.fg = types.Palette(uint8(n - 30))
			if p.flags&types.AttrBold != 0 {
				p.fg = types.Palette(uint8(n-30) + 8)
			}
		case n >= 90 && n <= 97:
			p.fg = types.Palette(uint8(n-90) + 8)
		case n >= 40 && n <= 47:
			p.bg = types.Palette(uint8(n - 40))
		case n >= 100 && n <= 107:
			p.bg = types.Palette(uint8(n-100) + 8)
		case n == 38 || n == 48:
			target := &p.fg
			if n == 48 {
				target = &p.bg
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
	sink.Push(QueuedCommand{Kind: CmdSGRUpdate, Attr: types.TextAttribute{Flags: p.flags, Foreground: p.fg, Background: p.bg, FontPage: p.fontPage}})
}

func (p *ANSIParser) writeChar(r rune, sink Sink) {
	attr := types.TextAttribute{Flags: p.flags, Foreground: p.fg, Background: p.bg, FontPage: p.fontPage}
	sink.Push(QueuedCommand{Kind: CmdWriteChar, Ch: r, Attr: attr, Position: types.Position{X: p.x, Y: p.y}})
	p.x++
	if p.x >= p.width {
		p.x = 0
		p.lineFeed(sink)
	} else {
		p.move(sink)
	}
}

// lineFeed advances the caret to the next row, growing the parser's
// tracked height (and requesting the screen grow to match) once the
// stream outgrows its starting dimensions, instead of clamping at the
// original height forever (spec §5 buffer-growth policy). Growth stops at
// types.MaxBufferHeight; once that cap is reached, p.y stays clamped at
// the last row and heightCapped latches so the caller can abort playback.
func (p *ANSIParser) lineFeed(sink Sink) {
	if p.y >= p.height-1 {
		if p.height < types.MaxBufferHeight {
			p.height = growHeight(p.height)
			sink.Push(QueuedCommand{Kind: CmdResizeRequest, Width: p.width, Height: p.height})
		} else {
			p.heightCapped = true
		}
	}
	if p.y < p.height-1 {
		p.y++
	}
	p.move(sink)
}

// HeightCapExceeded reports whether this stream has tried to scroll past
// types.MaxBufferHeight and still needs more room. The caller (the
// streaming view thread) is responsible for stopping playback and
// surfacing an error when this is true (spec §5 hard-cap policy).
func (p *ANSIParser) HeightCapExceeded() bool { return p.heightCapped }

func (p *ANSIParser) move(sink Sink) {
	sink.Push(QueuedCommand{Kind: CmdCaretMove, Position: types.Position{X: p.x, Y: p.y}})
}

func arg1(params []int) int {
	if len(params) == 0 || params[0] == 0 {
		return 1
	}
	return params[0]
}

func clampLo(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

func clampHi(v, hi int) int {
	if v > hi {
		return hi
	}
	return v
}
