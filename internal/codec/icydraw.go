package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/icydraw"
	"github.com/stlalpha/textmode/internal/sauce"
)

// IcyDrawFormat loads IcyDraw v0 (legacy base64-in-PNG-text, read-only)
// and v1 (PNG `icYD` chunks + zstd) files, and always saves v1 (spec
// §4.2.1, §4.2.2, §6.1).
type IcyDrawFormat struct{}

func (IcyDrawFormat) PrimaryExtension() string            { return "icy" }
func (IcyDrawFormat) UsesParser() bool                    { return false }
func (IcyDrawFormat) ScreenMode() ScreenMode              { return ScreenModeDefault }
func (IcyDrawFormat) TerminalEmulation() TerminalEmulation { return EmulationNone }

// FromBytes tries the v1 container first (the live format) and falls back
// to v0 (read-only compat) on failure, since both wire formats share the
// same PNG outer shell and are distinguished only by which chunk kind
// they carry.
func (IcyDrawFormat) FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error) {
	if buf, _, err := icydraw.LoadV1(data); err == nil {
		buf.SetTerminalBuffer(load.AsTerminalBuffer)
		return buf, nil
	}
	buf, _, err := icydraw.LoadV0(data)
	if err != nil {
		return nil, err
	}
	buf.SetTerminalBuffer(load.AsTerminalBuffer)
	return buf, nil
}

// ToBytes always writes the v1 container, zstd-compressing layer records
// (spec §4.2.2 compression=2) and attaching a SAUCE record when
// save.SaveSauce is set.
func (IcyDrawFormat) ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error) {
	var rec *sauce.Record
	if save.SaveSauce {
		d := scr.Dimensions()
		rec = &sauce.Record{
			DataType:     sauce.DataTypeBinary,
			TInfo1:       uint16(d.Width),
			TInfo2:       uint16(d.Height),
			CommentLines: save.SauceComment,
		}
	}
	return icydraw.SaveV1(scr, true, rec)
}
