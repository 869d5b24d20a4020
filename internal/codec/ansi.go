package codec

import (
	"github.com/stlalpha/textmode/internal/ansienc"
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/parser"
	"github.com/stlalpha/textmode/internal/sauce"
)

// AnsiFormat loads/saves the ANSI escape-sequence stream format (spec
// §4.2 table row "ANSI"). Decoding goes through the C5 parser/sink
// pipeline rather than being decoded in place, since an ANSI file is a
// terminal bytestream; encoding goes through the C3 ANSI v2 encoder.
type AnsiFormat struct{}

func (AnsiFormat) PrimaryExtension() string            { return "ans" }
func (AnsiFormat) UsesParser() bool                    { return true }
func (AnsiFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (AnsiFormat) TerminalEmulation() TerminalEmulation { return EmulationANSI }

// FromBytes strips any SAUCE trailer, applies its geometry if present,
// then plays the remaining bytes through an ANSIParser into a
// ScreenSink-wrapped buffer (spec §4.2.3: "apply_sauce ... sets
// width/height/ice/font").
func (AnsiFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	rec, content := sauce.Parse(data)

	width := load.DefaultWidth
	if width == 0 {
		width = 80
	}
	height := 25
	if rec != nil {
		if w := rec.Width(); w > 0 {
			width = w
		}
		if h := rec.Height(); h > 0 {
			height = h
		}
	}

	buf := buffer.NewTextBuffer(width, height)
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	if rec != nil {
		if rec.HasICEColors() {
			buf.SetIceMode(buffer.IceIce)
		}
		_ = buf.ApplySauce(width, height, rec.HasICEColors(), rec.FontName)
	}

	p := parser.NewANSIParser(width, height)
	sink := parser.NewScreenSink(buf)
	p.Parse(content, sink)
	return buf, nil
}

// ToBytes encodes scr via the C3 ANSI v2 encoder, optionally appending a
// SAUCE trailer (spec §4.2.3: "Saver: append SAUCE trailer verbatim from
// caller-provided record").
func (AnsiFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	out, err := ansienc.Encode(scr, save.Encoding)
	if err != nil {
		return nil, err
	}
	if !save.SaveSauce {
		return out, nil
	}
	d := scr.Dimensions()
	rec := &sauce.Record{
		DataType:     sauce.DataTypeCharacter,
		TInfo1:       uint16(d.Width),
		TInfo2:       uint16(d.Height),
		CommentLines: save.SauceComment,
	}
	return rec.ToBytes(out), nil
}
