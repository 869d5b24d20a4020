package codec

import (
	"bytes"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/sauce"
	"github.com/stlalpha/textmode/internal/types"
)

// AsciiFormat is the trivial raw-CP437 format (spec §4.2 table row
// "ASCII/CP437"): no escape sequences, rows split on CR/LF, decoded
// straight through the CP437 table.
type AsciiFormat struct{}

func (AsciiFormat) PrimaryExtension() string            { return "asc" }
func (AsciiFormat) UsesParser() bool                    { return false }
func (AsciiFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (AsciiFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func (AsciiFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
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

	rows := splitLines(content)
	height := len(rows)
	if height == 0 {
		height = 1
	}

	buf := buffer.NewTextBuffer(width, height)
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	attr := types.DefaultAttribute()
	layer := buf.LayersMut()[0]
	for y, row := range rows {
		for x := 0; x < width && x < len(row); x++ {
			_ = layer.SetChar(x, y, types.AttributedChar{Ch: buf.ToUnicode(row[x]), Attr: attr}, false)
		}
	}
	return buf, nil
}

// splitLines breaks raw bytes on CRLF or bare LF, matching the loader's
// tolerance for either line ending (spec §6.1: "CRLF-or-LF-only files
// accepted on load").
func splitLines(data []byte) [][]byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if len(data) == 0 {
		return nil
	}
	return bytes.Split(data, []byte("\n"))
}

func (AsciiFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	d := scr.Dimensions()
	var out bytes.Buffer
	tb, _ := scr.(interface{ FromUnicode(r rune, fallback byte) byte })
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := scr.CharAt(types.Position{X: x, Y: y})
			if tb != nil {
				out.WriteByte(tb.FromUnicode(c.Ch, '.'))
			} else {
				out.WriteByte(byte(c.Ch))
			}
		}
		out.WriteString("\r\n")
	}
	return out.Bytes(), nil
}
