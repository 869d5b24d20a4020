package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// LoadJASCPalette parses a JASC-PAL text palette (spec §4.2 table row
// "Palette (JASC, IceChess, etc.)", side-channel: palette only, not a
// full FileFormat since it never carries cell data).
//
// Format:
//
//	JASC-PAL
//	0100
//	<count>
//	r g b
//	...
func LoadJASCPalette(data []byte) ([]types.Color, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "JASC-PAL" {
		return nil, types.NewError(types.KindIDMismatch, "not a JASC-PAL file")
	}
	count, err := strconv.Atoi(strings.TrimSpace(lines[2]))
	if err != nil {
		return nil, types.WrapError(types.KindLoadPalette, "bad JASC-PAL color count", err)
	}
	colors := make([]types.Color, 0, count)
	for i := 0; i < count && 3+i < len(lines); i++ {
		fields := strings.Fields(lines[3+i])
		if len(fields) != 3 {
			continue
		}
		r, _ := strconv.Atoi(fields[0])
		g, _ := strconv.Atoi(fields[1])
		b, _ := strconv.Atoi(fields[2])
		colors = append(colors, types.Color{R: byte(r), G: byte(g), B: byte(b)})
	}
	return colors, nil
}

// SaveJASCPalette serializes a palette's colors to JASC-PAL text form.
func SaveJASCPalette(p *buffer.Palette) []byte {
	var b strings.Builder
	b.WriteString("JASC-PAL\n0100\n")
	fmt.Fprintf(&b, "%d\n", len(p.Colors))
	for _, c := range p.Colors {
		fmt.Fprintf(&b, "%d %d %d\n", c.R, c.G, c.B)
	}
	return []byte(b.String())
}
