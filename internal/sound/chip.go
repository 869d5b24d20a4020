// Package sound implements a deterministic emulator of a 3-voice
// AY-3-8910/YM2149 chip driven by a GIST envelope/LFO driver (spec §4.9),
// ported from original_source/crates/icy_term/src/util/gist/gist_driver.rs
// — itself a 1:1 port of a 68000 assembly routine (gistdrvr.s) — preserving
// that routine's integer semantics (MULS.W truncation, SWAP, arithmetic
// shift, signed comparisons, word-vs-long struct reads) rather than
// reimplementing the envelope math from first principles. Register-map
// conventions (a Chip interface taking register index/value writes) follow
// IntuitionAmiga-IntuitionEngine/audio_chip.go's SoundChip; actual audio
// synthesis from those register writes is out of scope (spec §4.9: "a
// separate audio thread").
package sound

// Chip is the YM2149 register surface the driver writes through. Actual
// waveform synthesis from register state is a separate audio thread's
// job and out of scope here; RegisterChip below is the in-process stand-in
// used by tests and by any caller that only needs to observe register
// writes (a VU meter, a debug view) rather than produce audio.
type Chip interface {
	WriteRegister(reg uint8, value uint8)
}

// RegisterChip stores the last value written to each of the YM2149's 14
// registers (tone/noise periods, mixer, volumes per spec §4.9's register
// table), mirroring IntuitionAmiga-IntuitionEngine/audio_chip.go's
// register-indexed state without that file's full waveform synthesis.
type RegisterChip struct {
	Registers [14]uint8
}

func (c *RegisterChip) WriteRegister(reg uint8, value uint8) {
	if int(reg) < len(c.Registers) {
		c.Registers[reg] = value
	}
}
