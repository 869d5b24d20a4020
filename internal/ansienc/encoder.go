package ansienc

import (
	"fmt"
	"strings"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/logging"
	"github.com/stlalpha/textmode/internal/types"
)

// Encode renders scr to ANSI v2 bytes under opts (spec §4.3). Screen is
// walked layer-composited via CharAt, one row at a time, matching the
// teacher's row-major traversal in internal/editor/screen.go.
func Encode(scr buffer.Screen, opts config.EncodingOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	dim := scr.Dimensions()
	var out strings.Builder

	if opts.UseIceColors {
		out.WriteString("\x1b[?33h")
	}

	state := freshState()
	iceMode := buffer.IceBlink
	if tb, ok := scr.(interface{ IceMode() buffer.IceMode }); ok {
		iceMode = tb.IceMode()
	}

	lineBudget := 0
	for y := 0; y < dim.Height; y++ {
		if opts.LongerTerminalOutput {
			out.WriteString(cup(y+1, 1))
		}
		lineLen, filled := encodeLine(&out, scr, y, dim.Width, &state, iceMode, opts)

		if opts.OutputLineLength > 0 {
			lineBudget += lineLen
			if lineBudget >= opts.OutputLineLength && opts.Level.SupportsCursorSaveRestore() {
				out.WriteString("\x1b7\r\n\x1b8")
				lineBudget = 0
			}
		}

		if y < dim.Height-1 && !opts.LongerTerminalOutput {
			if !filled {
				out.WriteString("\r\n")
			}
			// filled==true: autowrap advances the cursor already; emitting
			// CRLF here would double-advance (spec §4.3 step 4, "the single
			// most-tested encoder edge case"). When LongerTerminalOutput is
			// set, every row already starts with an absolute CUP, so no CRLF
			// is needed between rows at all.
		}
	}

	emitGotoXYTags(&out, scr)

	if opts.UseIceColors {
		out.WriteString("\x1b[?33l")
	}

	logging.Debug("ansienc: encoded %dx%d buffer at level %s (%d bytes)", dim.Width, dim.Height, opts.Level, out.Len())
	return []byte(out.String()), nil
}

// encodeLine encodes one row and returns its emitted length and whether the
// row was filled all the way to the last column with a printed (non-blank
// trim) cell, which suppresses the trailing CRLF.
func encodeLine(out *strings.Builder, scr buffer.Screen, y, width int, state *sgrState, iceMode buffer.IceMode, opts config.EncodingOptions) (int, bool) {
	cells := make([]types.AttributedChar, width)
	for x := 0; x < width; x++ {
		c := scr.CharAt(types.Position{X: x, Y: y})
		c.Attr = applyIceMapping(c.Attr, iceMode)
		cells[x] = c
	}

	effLen := width
	if !opts.PreserveLineLength {
		effLen = trimTrailingBlanks(cells)
	}

	start := out.Len()
	x := 0
	lastPrinted := true
	for x < effLen {
		run := runLength(cells, x, effLen)
		cell := cells[x]
		next := sgrState{flags: cell.Attr.Flags, fg: cell.Attr.Foreground, bg: cell.Attr.Background, fontPage: cell.Attr.FontPage, set: true}
		blank := cell.Ch == ' ' || cell.Ch == 0

		if next.fontPage != state.fontPage && opts.Level.SupportsFontPages() {
			fmt.Fprintf(out, "\x1b[0;%dD", next.fontPage)
			state.fontPage = next.fontPage
		}

		if params := sgrParams(*state, next, opts.Level, blank); len(params) > 0 {
			out.WriteString(sgrEscape(params))
		}
		*state = next

		if opts.UseCompression && run > 1 {
			lastPrinted = emitRun(out, cell, run, blank, opts.Level)
		} else {
			out.WriteRune(cell.Ch)
			lastPrinted = true
		}
		x += run
	}

	filled := effLen == width && width > 0 && lastPrinted
	return out.Len() - start, filled
}

// runLength returns the number of cells starting at x (up to limit) sharing
// the same rune, flags, colors and font page as cells[x].
func runLength(cells []types.AttributedChar, x, limit int) int {
	c := cells[x]
	n := 1
	for x+n < limit {
		d := cells[x+n]
		if d.Ch != c.Ch || !d.Attr.Equal(c.Attr) {
			break
		}
		n++
	}
	return n
}

// emitRun writes a run of N identical cells using the shortest available
// encoding: CUF for blank-background blank-space runs, REP where supported,
// or literal repetition as the fallback (spec §4.3 step 4). It reports
// whether the run's cells were printed (false when CUF skipped over them).
func emitRun(out *strings.Builder, cell types.AttributedChar, n int, blank bool, level config.CompatibilityLevel) bool {
	literal := n // bytes if written out rune-for-rune

	blankBg := cell.Attr.Background.Kind == types.ColorPalette && cell.Attr.Background.Index == 0
	if blank && blankBg && level.SupportsCUF() {
		cuf := fmt.Sprintf("\x1b[%dC", n)
		if len(cuf) < literal {
			out.WriteString(cuf)
			return false
		}
	}
	if level.SupportsREP() && n > 1 {
		rep := fmt.Sprintf("%c\x1b[%db", cell.Ch, n-1)
		if len(rep) < literal {
			out.WriteString(rep)
			return true
		}
	}
	for i := 0; i < n; i++ {
		out.WriteRune(cell.Ch)
	}
	return true
}

// trimTrailingBlanks returns the effective length after dropping trailing
// cells that are space/NUL, carry no non-default SGR, font page 0, bg index
// 0, and no blink (spec §4.3 step 3).
func trimTrailingBlanks(cells []types.AttributedChar) int {
	n := len(cells)
	for n > 0 {
		c := cells[n-1]
		isBlank := (c.Ch == ' ' || c.Ch == 0) &&
			c.Attr.Flags&types.AttrBlink == 0 &&
			c.Attr.FontPage == 0 &&
			c.Attr.Background.Kind == types.ColorPalette && c.Attr.Background.Index == 0 &&
			c.Attr.Flags == 0
		if !isBlank {
			break
		}
		n--
	}
	return n
}

func cup(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}

// emitGotoXYTags writes every buffer.Tag whose Placement is
// PlacementWithGotoXY as a save-cursor / CUP / text / restore-cursor
// triple (spec §4.3 step 6).
func emitGotoXYTags(out *strings.Builder, scr buffer.Screen) {
	for _, t := range scr.Tags() {
		if t.Placement != buffer.PlacementWithGotoXY {
			continue
		}
		out.WriteString("\x1b7")
		out.WriteString(cup(t.Position.Y+1, t.Position.X+1))
		out.WriteString(t.Justify())
		out.WriteString("\x1b8")
	}
}
