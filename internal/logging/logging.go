// Package logging provides the engine's debug/error logging surface: a
// global toggle gating verbose tracing, and a structured helper for
// recoverable EngineErrors (spec §7's "logged and skipped" / "logged and
// yields a last-known-good frame" propagation policy), so a decoder
// clipping a truncated XBin body logs the same way any other recovered
// structural error does.
package logging

import (
	"log"

	"github.com/stlalpha/textmode/internal/types"
)

// DebugEnabled controls whether Debug() produces output.
// Set by a consumer's -debug flag or DEBUG=1 environment variable.
var DebugEnabled bool

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

// Recovered logs a recoverable EngineError a component hit and continued
// past, independent of DebugEnabled: per spec §7's propagation policy, a
// single bad CSI or a truncated XBin run shouldn't abort the whole file,
// but it's the difference between "decoded fully" and "decoded with a
// gap" and belongs in the log regardless of -debug.
func Recovered(component string, err *types.EngineError) {
	log.Printf("%s: recovered from %s: %s", component, err.Kind, err.Detail)
}
