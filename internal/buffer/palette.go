package buffer

import "github.com/stlalpha/textmode/internal/types"

// PaletteMode selects how palette indices are interpreted and constrained
// at save time (spec §3.3, §4.1).
type PaletteMode int

const (
	PaletteRGB PaletteMode = iota
	PaletteFixed16
	PaletteFree16
	PaletteFree8
)

// dosDefaults are the 16 standard CGA/DOS colors used by Fixed16 remapping.
var dosDefaults = [16]types.Color{
	{R: 0x00, G: 0x00, B: 0x00, Name: "black"},
	{R: 0x00, G: 0x00, B: 0xAA, Name: "blue"},
	{R: 0x00, G: 0xAA, B: 0x00, Name: "green"},
	{R: 0x00, G: 0xAA, B: 0xAA, Name: "cyan"},
	{R: 0xAA, G: 0x00, B: 0x00, Name: "red"},
	{R: 0xAA, G: 0x00, B: 0xAA, Name: "magenta"},
	{R: 0xAA, G: 0x55, B: 0x00, Name: "brown"},
	{R: 0xAA, G: 0xAA, B: 0xAA, Name: "light gray"},
	{R: 0x55, G: 0x55, B: 0x55, Name: "dark gray"},
	{R: 0x55, G: 0x55, B: 0xFF, Name: "light blue"},
	{R: 0x55, G: 0xFF, B: 0x55, Name: "light green"},
	{R: 0x55, G: 0xFF, B: 0xFF, Name: "light cyan"},
	{R: 0xFF, G: 0x55, B: 0x55, Name: "light red"},
	{R: 0xFF, G: 0x55, B: 0xFF, Name: "light magenta"},
	{R: 0xFF, G: 0xFF, B: 0x55, Name: "yellow"},
	{R: 0xFF, G: 0xFF, B: 0xFF, Name: "white"},
}

// Palette holds up to 256 colors under a given PaletteMode.
type Palette struct {
	Mode   PaletteMode
	Colors []types.Color
}

// NewPalette constructs a palette pre-seeded with the 16 DOS defaults.
func NewPalette(mode PaletteMode) *Palette {
	colors := make([]types.Color, 16)
	copy(colors, dosDefaults[:])
	return &Palette{Mode: mode, Colors: colors}
}

// Clone returns an independent copy of the palette.
func (p *Palette) Clone() *Palette {
	colors := make([]types.Color, len(p.Colors))
	copy(colors, p.Colors)
	return &Palette{Mode: p.Mode, Colors: colors}
}

// Len returns the number of defined colors.
func (p *Palette) Len() int { return len(p.Colors) }

// At returns the color at index i, or black if out of range.
func (p *Palette) At(i int) types.Color {
	if i < 0 || i >= len(p.Colors) {
		return types.Color{}
	}
	return p.Colors[i]
}

// Insert appends a color, returning its index, or an error if the palette
// is full (spec §7, PaletteExhausted).
func (p *Palette) Insert(c types.Color) (int, error) {
	if len(p.Colors) >= 256 {
		return 0, types.NewError(types.KindPaletteExhausted, "palette already has 256 colors")
	}
	p.Colors = append(p.Colors, c)
	return len(p.Colors) - 1, nil
}

// IndexOf returns the index of an exact color match, or -1.
func (p *Palette) IndexOf(c types.Color) int {
	for i, pc := range p.Colors {
		if pc.R == c.R && pc.G == c.G && pc.B == c.B {
			return i
		}
	}
	return -1
}

// ClampForSave validates/remaps an index for this palette's mode at save
// time (spec §4.1). RGB accepts everything; Fixed16 wraps indices above 15
// modulo 16 onto the DOS defaults; Free16/Free8 truncate to their legal
// range.
func (p *Palette) ClampForSave(idx int) int {
	switch p.Mode {
	case PaletteRGB:
		return idx
	case PaletteFixed16:
		if idx < 0 {
			return 0
		}
		if idx > 15 {
			return idx % 16
		}
		return idx
	case PaletteFree16:
		if idx < 0 {
			return 0
		}
		if idx > 15 {
			return 15
		}
		return idx
	case PaletteFree8:
		if idx < 0 {
			return 0
		}
		if idx > 7 {
			return 7
		}
		return idx
	default:
		return idx
	}
}
