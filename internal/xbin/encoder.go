package xbin

import (
	"encoding/binary"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// cell is the (char, attr-byte) pair the DP and run-emitters operate on.
type cell struct {
	ch   byte
	attr byte
}

// Encode serializes scr to an XBin file. Returns Only8BitCharactersSupported
// if any cell's rune exceeds 0xFF (spec §4.4 failure modes).
func Encode(scr buffer.Screen, compressed bool) ([]byte, error) {
	dim := scr.Dimensions()
	rows, err := gatherCells(scr, dim.Width, dim.Height)
	if err != nil {
		return nil, err
	}

	h := Header{Width: dim.Width, Height: dim.Height, FontHeight: 16, Compressed: compressed}
	if tb, ok := scr.(interface{ IceMode() buffer.IceMode }); ok && tb.IceMode() == buffer.IceIce {
		h.NonBlink = true
	}

	out := make([]byte, 0, dim.Width*dim.Height*2+headerLen)
	out = append(out, magic...)
	out = append(out, 0x1A)
	var wbuf [4]byte
	binary.LittleEndian.PutUint16(wbuf[0:2], uint16(h.Width))
	binary.LittleEndian.PutUint16(wbuf[2:4], uint16(h.Height))
	out = append(out, wbuf[:]...)
	out = append(out, byte(h.FontHeight))
	out = append(out, h.flags())

	if compressed {
		for _, row := range rows {
			out = append(out, encodeLineOptimal(row)...)
		}
	} else {
		for _, row := range rows {
			for _, c := range row {
				out = append(out, c.ch, c.attr)
			}
		}
	}
	return out, nil
}

func gatherCells(scr buffer.Screen, width, height int) ([][]cell, error) {
	rows := make([][]cell, height)
	for y := 0; y < height; y++ {
		row := make([]cell, width)
		for x := 0; x < width; x++ {
			ac := scr.CharAt(types.Position{X: x, Y: y})
			if ac.Ch > 0xFF {
				return nil, types.NewError(types.KindOnly8Bit, "cell exceeds single-byte codepage")
			}
			row[x] = cell{ch: byte(ac.Ch), attr: attrByte(ac.Attr)}
		}
		rows[y] = row
	}
	return rows, nil
}

func attrByte(a types.TextAttribute) byte {
	var fg, bg uint8
	if a.Foreground.Kind == types.ColorPalette {
		fg = a.Foreground.Index & 0x0F
	}
	if a.Background.Kind == types.ColorPalette {
		bg = a.Background.Index & 0x07
	}
	b := fg | (bg << 4)
	if a.Flags&types.AttrBlink != 0 {
		b |= 0x80
	}
	return b
}

// runCost returns the byte cost of emitting run mode m for a run of length
// n, including the 1-byte run header: Off needs 2 bytes per cell,
// Char/Attr need 1 fixed + 1 per cell, Full needs a flat 2 bytes.
func runCost(mode int, n int) int {
	switch mode {
	case 0: // Off
		return 1 + 2*n
	case 1, 2: // Char, Attr
		return 1 + 1 + n
	default: // Full
		return 1 + 2
	}
}

// encodeLineOptimal runs the dynamic program described in spec §4.4:
// dp[i] = minimum bytes to encode row[0:i]; transitions try every run mode
// for every length 1..min(64, width-i). Ties break toward Off (mode 0) for
// determinism, matching "smallest state" in the spec text.
func encodeLineOptimal(row []cell) []byte {
	width := len(row)
	dp := make([]int, width+1)
	choice := make([]struct {
		mode, n int
	}, width+1)
	for i := 1; i <= width; i++ {
		dp[i] = 1 << 30
	}

	for i := 0; i < width; i++ {
		maxRun := 64
		if width-i < maxRun {
			maxRun = width - i
		}
		for n := 1; n <= maxRun; n++ {
			seg := row[i : i+n]
			for mode := 0; mode < 4; mode++ {
				if !segmentFitsMode(seg, mode) {
					continue
				}
				cost := dp[i] + runCost(mode, n)
				if cost < dp[i+n] || (cost == dp[i+n] && mode < choice[i+n].mode) {
					dp[i+n] = cost
					choice[i+n] = struct{ mode, n int }{mode, n}
				}
			}
		}
	}

	// Backtrack.
	type run struct{ start, mode, n int }
	var runs []run
	for i := width; i > 0; {
		c := choice[i]
		runs = append(runs, run{start: i - c.n, mode: c.mode, n: c.n})
		i -= c.n
	}
	for l, r := 0, len(runs)-1; l < r; l, r = l+1, r-1 {
		runs[l], runs[r] = runs[r], runs[l]
	}

	out := make([]byte, 0, width*2)
	for _, r := range runs {
		seg := row[r.start : r.start+r.n]
		header := byte(r.mode<<6) | byte(r.n-1)
		out = append(out, header)
		switch r.mode {
		case 0:
			for _, c := range seg {
				out = append(out, c.ch, c.attr)
			}
		case 1:
			out = append(out, seg[0].ch)
			for _, c := range seg {
				out = append(out, c.attr)
			}
		case 2:
			out = append(out, seg[0].attr)
			for _, c := range seg {
				out = append(out, c.ch)
			}
		case 3:
			out = append(out, seg[0].ch, seg[0].attr)
		}
	}
	return out
}

func segmentFitsMode(seg []cell, mode int) bool {
	switch mode {
	case 0:
		return true
	case 1:
		for _, c := range seg {
			if c.ch != seg[0].ch {
				return false
			}
		}
		return true
	case 2:
		for _, c := range seg {
			if c.attr != seg[0].attr {
				return false
			}
		}
		return true
	case 3:
		for _, c := range seg {
			if c.ch != seg[0].ch || c.attr != seg[0].attr {
				return false
			}
		}
		return true
	default:
		return false
	}
}
