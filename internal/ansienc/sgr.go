// Package ansienc implements the compatibility-level aware ANSI v2 encoder
// and decoder (spec §4.3, component C3), grounded on the SGR-diff and
// CP437-passthrough conventions of stlalpha-vision3/internal/terminalio
// (SelectiveCP437Writer's escape-sequence scanning) and
// stlalpha-vision3/internal/terminal/parser.go's control-sequence table,
// generalized from a live-session writer into a batch buffer encoder.
package ansienc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// sgrState is the running SGR state the diff algorithm compares each cell
// against (spec §4.3 step 1).
type sgrState struct {
	flags      types.TextAttrFlag
	fg, bg     types.AttributeColor
	fontPage   uint8
	set        bool
}

func freshState() sgrState {
	return sgrState{fg: types.Palette(7), bg: types.Palette(0)}
}

// sgrParams returns the CSI parameter list (without ESC[ or final 'm')
// needed to move from prev to next, honoring level's color capabilities and
// the blank-cell fg-suppression rule (spec §4.3 step 1: "blank cells do not
// emit fg changes").
func sgrParams(prev, next sgrState, level config.CompatibilityLevel, blank bool) []string {
	var params []string

	flagDiff := prev.flags ^ next.flags
	if !prev.set || flagDiff != 0 {
		// A full reset is simplest and matches how real-world ANSI art is
		// authored: attributes rarely toggle off individually mid-run.
		if !prev.set || (prev.flags&^next.flags) != 0 {
			params = append(params, "0")
			prev = freshState()
			prev.set = false
		}
		if next.flags&types.AttrBold != 0 {
			params = append(params, "1")
		}
		if next.flags&types.AttrFaint != 0 {
			params = append(params, "2")
		}
		if next.flags&types.AttrItalic != 0 {
			params = append(params, "3")
		}
		if next.flags&types.AttrUnderline != 0 {
			params = append(params, "4")
		}
		if next.flags&types.AttrBlink != 0 {
			params = append(params, "5")
		}
		if next.flags&types.AttrConcealed != 0 {
			params = append(params, "8")
		}
		if next.flags&types.AttrCrossedOut != 0 {
			params = append(params, "9")
		}
		if next.flags&types.AttrDoubleUnderline != 0 {
			params = append(params, "21")
		}
	}

	if !blank && !prev.fg.Equal(next.fg) {
		params = append(params, fgParam(next.fg, level)...)
	}
	if !prev.bg.Equal(next.bg) {
		params = append(params, bgParam(next.bg, level)...)
	}

	return params
}

func fgParam(c types.AttributeColor, level config.CompatibilityLevel) []string {
	return colorParam(c, level, 30, 90, 38)
}

func bgParam(c types.AttributeColor, level config.CompatibilityLevel) []string {
	return colorParam(c, level, 40, 100, 48)
}

// colorParam renders c as SGR parameters for the base (30/40-style),
// bright-base (90/100-style) and extended (38/48-style) families.
func colorParam(c types.AttributeColor, level config.CompatibilityLevel, base, brightBase, extBase int) []string {
	switch c.Kind {
	case types.ColorRGB:
		if level.SupportsTrueColor() {
			return []string{strconv.Itoa(extBase), "2", strconv.Itoa(int(c.R)), strconv.Itoa(int(c.G)), strconv.Itoa(int(c.B))}
		}
		idx := nearestDOS16(c.R, c.G, c.B)
		return paletteParam(idx, base, brightBase)
	case types.ColorExtendedPalette:
		if level.Supports256Color() {
			return []string{strconv.Itoa(extBase), "5", strconv.Itoa(int(c.Index))}
		}
		return paletteParam(c.Index%16, base, brightBase)
	case types.ColorTransparent:
		return nil
	default: // ColorPalette
		return paletteParam(c.Index, base, brightBase)
	}
}

func paletteParam(idx uint8, base, brightBase int) []string {
	if idx >= 16 {
		idx %= 16
	}
	if idx >= 8 {
		return []string{strconv.Itoa(brightBase + int(idx-8))}
	}
	return []string{strconv.Itoa(base + int(idx))}
}

// nearestDOS16 maps an arbitrary RGB triplet to the closest of the 16 DOS
// palette indices by squared Euclidean distance, used when a level lacks
// truecolor but the cell carries an RGB AttributeColor.
func nearestDOS16(r, g, b byte) uint8 {
	dos := [16][3]int{
		{0, 0, 0}, {0, 0, 170}, {0, 170, 0}, {0, 170, 170},
		{170, 0, 0}, {170, 0, 170}, {170, 85, 0}, {170, 170, 170},
		{85, 85, 85}, {85, 85, 255}, {85, 255, 85}, {85, 255, 255},
		{255, 85, 85}, {255, 85, 255}, {255, 255, 85}, {255, 255, 255},
	}
	best, bestDist := 0, -1
	for i, c := range dos {
		dr, dg, db := int(r)-c[0], int(g)-c[1], int(b)-c[2]
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return uint8(best)
}

func sgrEscape(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%sm", strings.Join(params, ";"))
}

// applyIceMapping adjusts a cell's background AttributeColor and flags per
// the buffer's IceMode before SGR diffing (spec §4.3 step 2).
func applyIceMapping(attr types.TextAttribute, mode buffer.IceMode) types.TextAttribute {
	switch mode {
	case buffer.IceIce:
		if attr.Background.Kind == types.ColorPalette && attr.Background.Index >= 8 {
			attr.Flags |= types.AttrBlink
		}
	case buffer.IceUnlimited:
		if attr.Background.Kind == types.ColorPalette && attr.Background.Index > 7 &&
			attr.Background.Index != 0 {
			// Unlimited restricts bg to 0-7 unless RGB/extended; fold bright
			// background indices down rather than silently dropping color.
			attr.Background = types.Palette(attr.Background.Index % 8)
		}
	case buffer.IceBlink:
		// bit 5 of background already carries the blink flag via AttrBlink;
		// nothing to remap.
	}
	return attr
}
