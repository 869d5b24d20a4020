// Package config holds the option structs consumed by the codec, encoder,
// and view-thread packages, following the teacher's pattern of strongly
// typed structs with a Default() constructor and a Validate() method
// (see stlalpha-vision3/internal/config/config.go's LoadServerConfig for
// the defaulting style this was adapted from).
package config

import "fmt"

// CompatibilityLevel selects the ANSI v2 encoder's target terminal
// capability profile (spec §4.3).
type CompatibilityLevel int

const (
	AnsiSys CompatibilityLevel = iota
	Vt100
	IcyTerm
	Utf8Terminal
)

func (l CompatibilityLevel) String() string {
	switch l {
	case AnsiSys:
		return "AnsiSys"
	case Vt100:
		return "Vt100"
	case IcyTerm:
		return "IcyTerm"
	case Utf8Terminal:
		return "Utf8Terminal"
	default:
		return "Unknown"
	}
}

// Supports256Color reports whether l can emit 256-color SGR sequences.
func (l CompatibilityLevel) Supports256Color() bool { return l >= IcyTerm }

// SupportsTrueColor reports whether l can emit 24-bit SGR sequences.
func (l CompatibilityLevel) SupportsTrueColor() bool { return l >= IcyTerm }

// SupportsCUF reports whether l supports cursor-forward compression.
func (l CompatibilityLevel) SupportsCUF() bool { return l >= Vt100 }

// SupportsREP reports whether l supports the REP (repeat) control.
func (l CompatibilityLevel) SupportsREP() bool { return l >= IcyTerm }

// SupportsCursorSaveRestore reports DECSC/DECRC support.
func (l CompatibilityLevel) SupportsCursorSaveRestore() bool { return l >= Vt100 }

// SupportsFontPages reports SCS font-page switching support.
func (l CompatibilityLevel) SupportsFontPages() bool { return l >= IcyTerm }

// SupportsSixel reports sixel/raster-layer emission support.
func (l CompatibilityLevel) SupportsSixel() bool { return l >= IcyTerm }

// SupportsUTF8Output always reports false. This is intentional: see
// spec.md §9 Open Questions — Utf8Terminal's name is historically
// misleading, the wire format always stays CP437 byte-exact, and no
// compatibility level ever takes the UTF-8 output branch. Documented,
// not guessed.
func (l CompatibilityLevel) SupportsUTF8Output() bool { return false }

// EncodingOptions configures the ANSI v2 encoder (internal/ansienc).
type EncodingOptions struct {
	Level               CompatibilityLevel
	PreserveLineLength  bool
	UseCompression      bool
	LongerTerminalOutput bool
	UseIceColors        bool
	OutputLineLength    int // 0 disables soft-wrap splitting
}

// DefaultEncodingOptions returns the encoder's default configuration:
// IcyTerm level, trailing-blank trimming on, compression on.
func DefaultEncodingOptions() EncodingOptions {
	return EncodingOptions{
		Level:          IcyTerm,
		UseCompression: true,
	}
}

// Validate checks internal consistency of the option set.
func (o EncodingOptions) Validate() error {
	if o.OutputLineLength < 0 {
		return fmt.Errorf("config: negative OutputLineLength %d", o.OutputLineLength)
	}
	if o.OutputLineLength > 0 && !o.Level.SupportsCursorSaveRestore() {
		return fmt.Errorf("config: OutputLineLength requires cursor save/restore support at level %s", o.Level)
	}
	return nil
}

// LoadOptions configures format loaders (internal/codec).
type LoadOptions struct {
	// StrictSauce is not read by any loader in internal/codec; a malformed
	// SAUCE record is ignored whether or not it is set.
	StrictSauce bool
	// DefaultWidth is used when a format carries no width hint.
	DefaultWidth int
	// AsTerminalBuffer marks the resulting buffer as terminal-driven
	// (unbounded growth, no clipping) rather than edited-file semantics.
	AsTerminalBuffer bool
}

// DefaultLoadOptions returns the loader's default configuration.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{DefaultWidth: 80}
}

// SaveOptions configures format savers (internal/codec).
type SaveOptions struct {
	Encoding     EncodingOptions
	SauceComment []string
	SaveSauce    bool
}

// DefaultSaveOptions returns the saver's default configuration.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Encoding: DefaultEncodingOptions()}
}

// ViewThreadOptions configures the streaming view thread
// (internal/viewthread).
type ViewThreadOptions struct {
	BaudRate         int  // bits/sec; 0 disables baud emulation (full-speed 64KiB chunks)
	AutoScrollEnabled bool
	LockBudgetMillis int // bounded-lock budget per spec §4.7; 0 uses the default of 10ms
}

// DefaultViewThreadOptions returns baud emulation disabled and a 10ms lock
// budget, matching spec §4.7 and §5.
func DefaultViewThreadOptions() ViewThreadOptions {
	return ViewThreadOptions{LockBudgetMillis: 10}
}

// Validate checks internal consistency of the option set.
func (o ViewThreadOptions) Validate() error {
	if o.BaudRate < 0 {
		return fmt.Errorf("config: negative BaudRate %d", o.BaudRate)
	}
	if o.LockBudgetMillis < 0 {
		return fmt.Errorf("config: negative LockBudgetMillis %d", o.LockBudgetMillis)
	}
	return nil
}
