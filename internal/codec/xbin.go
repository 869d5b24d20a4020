package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/xbin"
)

// XBinFormat wraps the standalone C4 codec (spec §4.2 table row "XBin").
type XBinFormat struct{}

func (XBinFormat) PrimaryExtension() string            { return "xb" }
func (XBinFormat) UsesParser() bool                    { return false }
func (XBinFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (XBinFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

func (XBinFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	buf, err := xbin.Decode(data)
	if err != nil {
		return nil, err
	}
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	return buf, nil
}

func (XBinFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	return xbin.Encode(scr, save.Encoding.UseCompression)
}
