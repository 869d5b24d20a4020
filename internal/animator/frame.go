// Package animator runs Lua scripts that assemble sequences of terminal
// buffer frames (spec §4.8's "frame assembly script execution surface"),
// grounded on stlalpha-vision3's config-watcher background-goroutine shape
// for the worker-thread model and on original_source's
// icy_engine_scripting/src/animator/lua_buffer.rs for the script surface
// itself (caret/attribute-bearing buffer handles, next_frame snapshotting,
// a frame delay, and a script-writable log).
package animator

import (
	"github.com/google/uuid"

	"github.com/stlalpha/textmode/internal/buffer"
)

// MonitorSettings carries the CRT-emulation knobs a frame was rendered
// under. GPU shader effects are out of scope here (no non-goal of this
// module interprets these fields — they exist only so Frame keeps the
// (buffer, monitor settings, delay) shape a script can produce). The
// field set is a deliberately minimal stand-in: the original Rust
// MonitorSettings struct's definition wasn't present in the retrieved
// source, only call sites constructing it with ::default(), so this
// mirrors the handful of knobs those call sites implied (brightness,
// contrast, gamma, saturation, scanline intensity) rather than porting a
// layout that was never actually seen.
type MonitorSettings struct {
	Brightness        float64
	Contrast          float64
	Gamma             float64
	Saturation        float64
	ScanlineIntensity float64
}

// DefaultMonitorSettings returns neutral settings (no adjustment).
func DefaultMonitorSettings() MonitorSettings {
	return MonitorSettings{Brightness: 1, Contrast: 1, Gamma: 1, Saturation: 1}
}

// Frame is one snapshot captured by a script's next_frame call.
type Frame struct {
	ID      uuid.UUID
	Buffer  *buffer.TextBuffer
	Monitor MonitorSettings
	DelayMs int
}
