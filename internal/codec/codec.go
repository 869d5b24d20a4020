// Package codec implements the format-loader/saver library (spec §4.2,
// component C2): a FileFormat interface, a registry keyed by extension, and
// concrete loaders/savers for the ANSI-art format family. The interface
// shape is grounded on stlalpha-vision3/internal/menu/door_handler.go's
// "Emulation (1=ANSI)" drop file field, generalized here into a proper
// TerminalEmulation hint used by the streaming view thread (C7) to decide
// which parser to run against a loaded byte stream.
package codec

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

// ScreenMode hints at the display geometry a format's bytes imply before
// any SAUCE record is consulted (spec §4.2 "screen_mode() ... for
// streaming loads").
type ScreenMode int

const (
	ScreenModeDefault ScreenMode = iota
	ScreenModeWide
	ScreenModeCustom
)

// TerminalEmulation hints at which control-code dialect a stream format
// uses, so the streaming view thread (C7) can select the matching C5
// parser.
type TerminalEmulation int

const (
	EmulationNone TerminalEmulation = iota
	EmulationANSI
	EmulationAvatar
	EmulationPCBoard
	EmulationPetscii
	EmulationRIP
	EmulationIGS
	EmulationSkypix
)

// FileFormat is the per-format load/save contract (spec §4.2).
type FileFormat interface {
	// FromBytes decodes data into a fresh buffer. load is consulted for
	// defaults the format itself doesn't carry (width, strict SAUCE).
	FromBytes(data []byte, load config.LoadOptions) (*buffer.TextBuffer, error)
	// ToBytes encodes scr's visible content per save.
	ToBytes(scr buffer.Screen, save config.SaveOptions) ([]byte, error)
	// PrimaryExtension is the canonical file extension, without a dot.
	PrimaryExtension() string
	// UsesParser reports whether FromBytes must be driven through a C5
	// parser/sink rather than decoded in place (spec §4.2).
	UsesParser() bool
	ScreenMode() ScreenMode
	TerminalEmulation() TerminalEmulation
}

// Registry maps file extensions to their FileFormat implementation.
type Registry struct {
	byExt map[string]FileFormat
}

// NewRegistry returns a registry preloaded with every format this module
// implements (spec §4.2's table).
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]FileFormat)}
	for _, f := range []FileFormat{
		&AnsiFormat{},
		&AsciiFormat{},
		&XBinFormat{},
		&BinFormat{},
		&AvatarFormat{},
		&PCBoardFormat{},
		&CtrlAFormat{},
		&RenegadeFormat{},
		&TundraDrawFormat{},
		&ArtworxFormat{},
		&IceDrawFormat{},
		&PetsciiFormat{},
		&AtasciiFormat{},
		&ViewdataFormat{},
		&IcyDrawFormat{},
	} {
		r.Register(f)
	}
	return r
}

// Register adds or replaces the format keyed by its primary extension.
func (r *Registry) Register(f FileFormat) {
	r.byExt[f.PrimaryExtension()] = f
}

// ByExtension looks up a format by extension (without the leading dot,
// case-insensitive match is the caller's responsibility).
func (r *Registry) ByExtension(ext string) (FileFormat, error) {
	f, ok := r.byExt[ext]
	if !ok {
		return nil, types.NewError(types.KindUnsupportedFormat, "no format registered for extension "+ext)
	}
	return f, nil
}
