package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// rawCodepageFormat is shared by PETSCII, Atascii, and Viewdata: each is a
// raw single-byte-per-cell stream (no escape sequences) whose only
// difference from ASCII/CP437 is the BufferType used for cell-to-Unicode
// translation (spec §4.1 buffer_type). TextBuffer.ToUnicode/FromUnicode
// currently pass non-CP437 types through as identity byte<->rune, which
// covers the printable-ASCII-compatible subset of all three charsets; see
// DESIGN.md for the scope this simplification leaves out.
func rawCodepageFromBytes(data []byte, load config.LoadOptions, bt buffer.BufferType) (*buffer.TextBuffer, error) {
	width := load.DefaultWidth
	if width == 0 {
		width = 80
	}
	rows := splitLines(data)
	height := len(rows)
	if height == 0 {
		height = 1
	}

	buf := buffer.NewTextBuffer(width, height)
	buf.SetBufferType(bt)
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	layer := buf.LayersMut()[0]
	attr := types.DefaultAttribute()
	for y, row := range rows {
		for x := 0; x < width && x < len(row); x++ {
			_ = layer.SetChar(x, y, types.AttributedChar{Ch: buf.ToUnicode(row[x]), Attr: attr}, false)
		}
	}
	return buf, nil
}

func rawCodepageToBytes(scr buffer.Screen) ([]byte, error) {
	d := scr.Dimensions()
	out := make([]byte, 0, d.Width*d.Height)
	tb, _ := scr.(interface{ FromUnicode(r rune, fallback byte) byte })
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := scr.CharAt(types.Position{X: x, Y: y})
			if tb != nil {
				out = append(out, tb.FromUnicode(c.Ch, '.'))
			} else {
				out = append(out, byte(c.Ch))
			}
		}
		out = append(out, '\r', '\n')
	}
	return out, nil
}

// PetsciiFormat is the Commodore PETSCII raw-byte format.
type PetsciiFormat struct{}

func (PetsciiFormat) PrimaryExtension() string            { return "seq" }
func (PetsciiFormat) UsesParser() bool                    { return false }
func (PetsciiFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (PetsciiFormat) TerminalEmulation() TerminalEmulation { return EmulationPetscii }
func (PetsciiFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	return rawCodepageFromBytes(data, load, buffer.BufferPetscii)
}
func (PetsciiFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	return rawCodepageToBytes(scr)
}

// AtasciiFormat is the Atari ATASCII raw-byte format.
type AtasciiFormat struct{}

func (AtasciiFormat) PrimaryExtension() string            { return "ata" }
func (AtasciiFormat) UsesParser() bool                    { return false }
func (AtasciiFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (AtasciiFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }
func (AtasciiFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	return rawCodepageFromBytes(data, load, buffer.BufferAtascii)
}
func (AtasciiFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	return rawCodepageToBytes(scr)
}

// ViewdataFormat is the UK Prestel/Viewdata raw-byte format.
type ViewdataFormat struct{}

func (ViewdataFormat) PrimaryExtension() string            { return "vtx" }
func (ViewdataFormat) UsesParser() bool                    { return false }
func (ViewdataFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (ViewdataFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }
func (ViewdataFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	return rawCodepageFromBytes(data, load, buffer.BufferViewdata)
}
func (ViewdataFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	return rawCodepageToBytes(scr)
}
