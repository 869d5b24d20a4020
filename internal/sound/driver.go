package sound

// ymFreqs maps a 12-tone pitch (0..84, representing roughly 7 octaves) to
// a YM2149 tone-period value, reproduced verbatim from gist_driver.rs's
// YM_FREQS table.
var ymFreqs = [85]uint16{
	3822, 3608, 3405, 3214, 3034, 2863, 2703, 2551, 2408, 2273, 2145, 2025, 1911, 1804, 1703, 1607, 1517, 1432, 1351, 1276, 1204, 1136, 1073, 1012, 956, 902,
	851, 804, 758, 716, 676, 638, 602, 568, 536, 506, 478, 451, 426, 402, 379, 358, 338, 319, 301, 284, 268, 253, 239, 225, 213, 201, 190, 179, 169, 159, 150,
	142, 134, 127, 119, 113, 106, 100, 95, 89, 84, 80, 75, 71, 67, 63, 60, 56, 53, 50, 47, 45, 42, 40, 38, 36, 34, 32, 30,
}

// div15 is the volume-curve lookup the driver applies before the
// muls.w-based envelope modulation.
var div15 = [16]int16{0, 18, 35, 52, 69, 86, 103, 120, 137, 154, 171, 188, 205, 222, 239, 256}

// mixerMask clears voice-idx's tone/noise-disable bits before a fresh
// snd_on sets them for that voice only.
var mixerMask = [3]uint8{0xf6, 0xed, 0xdb}

// Driver is the GIST envelope/LFO engine: 3 voices, a shared mixer byte,
// and a tick counter (spec §4.9). Tick must be called at 200 Hz.
type Driver struct {
	voices    [numVoices]Voice
	mixer     uint8
	tickCount uint32
}

// NewDriver returns a driver with all voices idle and the mixer fully
// muted (tone+noise disabled on all three channels, 0x3f), matching
// gist_driver.rs::new.
func NewDriver() *Driver {
	return &Driver{mixer: 0x3f}
}

func (d *Driver) IsPlaying() bool {
	for i := range d.voices {
		if d.voices[i].InUse != 0 {
			return true
		}
	}
	return false
}

// StopAll silences every voice and resets the mixer to fully muted.
func (d *Driver) StopAll(chip Chip) {
	for i := range d.voices {
		d.voices[i].InUse = 0
		d.voices[i].Priority = 0
		chip.WriteRegister(8+uint8(i), 0)
	}
	d.mixer = 0x3f
	chip.WriteRegister(7, d.mixer)
}

// SndOff triggers a voice's release phase rather than hard-stopping it
// (spec §4.9).
func (d *Driver) SndOff(voiceIdx int) {
	if voiceIdx >= 0 && voiceIdx < numVoices && d.voices[voiceIdx].InUse != 0 {
		d.voices[voiceIdx].InUse = 1
		d.voices[voiceIdx].Pitch = -1
	}
}

// StopSnd hard-stops voiceIdx: zero volume, disable both tone and noise
// for that channel in the mixer, and clear every envelope/LFO phase and
// accumulator so no residual processing happens on the next Tick.
func (d *Driver) StopSnd(chip Chip, voiceIdx int) {
	if voiceIdx < 0 || voiceIdx >= numVoices {
		return
	}
	v := &d.voices[voiceIdx]
	v.InUse = 0
	v.Priority = 0
	chip.WriteRegister(8+uint8(voiceIdx), 0)

	toneDisable := uint8(1) << uint(voiceIdx)
	noiseDisable := uint8(8) << uint(voiceIdx)
	d.mixer |= toneDisable | noiseDisable
	chip.WriteRegister(7, d.mixer)

	v.VolPhase = 0
	v.FreqPhase = 0
	v.NoisePhase = 0
	v.VolEnvAcc = 0
	v.VolLFOAcc = 0
	v.FreqEnvAcc = 0
	v.FreqLFOAcc = 0
	v.NoiseEnvAcc = 0
	v.NoiseLFOAcc = 0
}

// pickVoice implements snd_on's voice-selection priority: prefer the
// requested voice if its current occupant's priority doesn't outrank the
// new sound; else the first idle voice; else the lowest-priority voice,
// if the new sound's priority is at least as high as the victim's.
func (d *Driver) pickVoice(requested *int, priority int16) (int, bool) {
	if requested != nil {
		idx := *requested
		if idx >= numVoices {
			return 0, false
		}
		if d.voices[idx].Priority <= priority {
			return idx, true
		}
	}

	for i := 0; i < numVoices; i++ {
		if d.voices[i].InUse == 0 {
			return i, true
		}
	}

	best := 0
	if d.voices[1].Priority < d.voices[0].Priority {
		best = 1
	}
	if d.voices[2].Priority <= d.voices[best].Priority {
		best = 2
	}
	if d.voices[best].Priority > priority {
		return 0, false
	}
	return best, true
}

// SndOn starts sound on the requested (or auto-picked) voice and returns
// the voice index actually used, or false if no voice could be claimed
// (spec §4.9).
func (d *Driver) SndOn(chip Chip, sound *SoundData, requestedVoice *int, volume *int16, pitch, priority int16) (int, bool) {
	if sound.Duration == 0 {
		if requestedVoice != nil {
			return *requestedVoice, true
		}
		return 0, true
	}

	voiceIdx, ok := d.pickVoice(requestedVoice, priority)
	if !ok {
		return 0, false
	}

	d.voices[voiceIdx].InUse = 0
	d.voices[voiceIdx].Priority = 0
	chip.WriteRegister(8+uint8(voiceIdx), 0)

	tpl := sound.Template
	v := &d.voices[voiceIdx]
	v.loadFromTemplate(&tpl, pitch, priority, volume)

	var tonemask uint8
	if v.Freq >= 0 {
		tonemask = 0
		if pitch >= 0 {
			p := pitch
			for p > 108 {
				p -= 12
			}
			for p < 24 {
				p += 12
			}
			if idx := int(p - 24); idx >= 0 && idx < len(ymFreqs) {
				v.Freq = int16(ymFreqs[idx])
			}
			v.Pitch = -1
		}
		chip.WriteRegister(uint8(voiceIdx*2), uint8(v.Freq&0xff))
		chip.WriteRegister(uint8(voiceIdx*2+1), uint8((v.Freq>>8)&0x0f))
	} else {
		tonemask = 1 << uint(voiceIdx)
		v.FreqPhase = 0
		v.FreqLFOLimit = 0
	}

	var noisemask uint8
	if v.NoiseFreq >= 0 {
		noisemask = 0
		chip.WriteRegister(6, uint8(v.NoiseFreq&0x1f))
	} else {
		noisemask = 8 << uint(voiceIdx)
		v.NoisePhase = 0
		v.NoiseLFOLimit = 0
	}

	d.mixer = (d.mixer & mixerMask[voiceIdx]) | tonemask | noisemask
	chip.WriteRegister(7, d.mixer)

	if v.VolPhase == 0 {
		v.VolEnvAcc = 0x000F_0000
		chip.WriteRegister(8+uint8(voiceIdx), uint8(v.Volume&0x0f))
	}

	v.InUse = sound.Duration
	return voiceIdx, true
}

// Tick advances every voice's envelopes and LFOs by one 200 Hz step and
// writes the resulting register values to chip. Voices are processed
// 2, 1, 0 — the same order gistdrvr.s used (dbf d2,vcloop) — because all
// three share the single noise-period register (6): the last voice
// written in a tick wins, so the lowest-indexed voice's noise request
// takes priority (spec §4.9).
func (d *Driver) Tick(chip Chip) {
	d.tickCount++

	for voiceIdx := numVoices - 1; voiceIdx >= 0; voiceIdx-- {
		v := &d.voices[voiceIdx]
		if v.InUse == 0 {
			continue
		}

		tickVolume(v, voiceIdx, chip)
		tickFrequency(v, voiceIdx, chip)
		tickNoise(v, voiceIdx, chip)
		tickDuration(v, voiceIdx, chip)
	}
}

func tickVolume(v *Voice, voiceIdx int, chip Chip) {
	d1 := v.VolEnvAcc
	switch v.VolPhase {
	case PhaseAttack:
		d1 += v.VolAttack
		if d1 >= 0x000F_0000 {
			d1 = 0x000F_0000
			v.VolPhase++
		}
	case PhaseDecay:
		d1 += v.VolDecay
		if d1 <= v.VolSustain {
			d1 = v.VolSustain
			v.VolPhase++
		}
	case PhaseRelease:
		d1 += v.VolRelease
		if d1 <= 0 {
			d1 = 0
			v.VolPhase = PhaseOff
			v.InUse = 1
		}
	}
	v.VolEnvAcc = d1

	if v.VolLFOLimit != 0 {
		if v.VolLFODelay > 0 {
			v.VolLFODelay--
		} else {
			lfo := v.VolLFOAcc + v.VolLFOStep
			limit := v.VolLFOLimit
			if lfo >= limit {
				lfo = limit
				v.VolLFOStep = -v.VolLFOStep
			} else if negLimit := -limit; lfo <= negLimit {
				lfo = negLimit
				v.VolLFOStep = -v.VolLFOStep
			}
			v.VolLFOAcc = lfo
		}
	}

	volLFOLimitHi := int16(v.VolLFOLimit >> 16)
	if v.VolPhase != PhaseOff || volLFOLimitHi != 0 {
		volIdx := v.Volume
		if volIdx < 0 {
			volIdx = 0
		} else if volIdx > 15 {
			volIdx = 15
		}
		d0 := int32(div15[volIdx])

		acc := v.VolEnvAcc + v.VolLFOAcc
		var level uint8
		if acc < 0 {
			level = 0
		} else {
			shifted := acc >> 8
			d1lo := int16(shifted)
			d0lo := int16(d0)
			d0 = int32(d0lo) * int32(d1lo)
			d0 = (d0 >> 16) & 0xffff
			if d0 > 0x7fff {
				d0 = int32(int16(d0))
			}
			switch {
			case d0 > 15:
				level = 15
			case d0 < 0:
				level = 0
			default:
				level = uint8(d0)
			}
		}
		chip.WriteRegister(8+uint8(voiceIdx), level)
	}
}

func tickFrequency(v *Voice, voiceIdx int, chip Chip) {
	d1 := v.FreqEnvAcc
	switch v.FreqPhase {
	case PhaseAttack:
		d1 += v.FreqAttack
		if int16(v.FreqAttack>>16) >= 0 {
			if d1 >= v.FreqAttackTarget {
				d1 = v.FreqAttackTarget
				v.FreqPhase++
			}
		} else if d1 <= v.FreqAttackTarget {
			d1 = v.FreqAttackTarget
			v.FreqPhase++
		}
	case PhaseDecay:
		d1 += v.FreqDecay
		if int16(v.FreqDecay>>16) >= 0 {
			if d1 >= v.FreqDecayTarget {
				d1 = v.FreqDecayTarget
				v.FreqPhase++
			}
		} else if d1 <= v.FreqDecayTarget {
			d1 = v.FreqDecayTarget
			v.FreqPhase++
		}
	case PhaseRelease:
		d1 += v.FreqRelease
		if int16(v.FreqRelease>>16) >= 0 {
			if d1 >= 0 {
				d1 = 0
			}
		} else if d1 <= 0 {
			d1 = 0
		}
	}
	v.FreqEnvAcc = d1

	if v.FreqLFOLimit != 0 {
		if v.FreqLFODelay > 0 {
			v.FreqLFODelay--
		} else {
			step := v.FreqLFOStep
			sum := uint32(step) + uint32(v.FreqLFOAcc)
			carry := sum < uint32(step)
			lfo := int32(sum)

			if step >= 0 {
				if carry {
					v.FreqLFOStep = v.FreqLFOResetPos
				}
				if limit := v.FreqLFOLimit; lfo >= limit {
					v.FreqLFOAcc = limit
					v.FreqLFOStep = -v.FreqLFOStep
				} else {
					v.FreqLFOAcc = lfo
				}
			} else {
				negLimit := v.FreqLFOLimitNeg
				if !carry {
					v.FreqLFOStep = v.FreqLFOResetNeg
				}
				if lfo <= negLimit {
					v.FreqLFOAcc = negLimit
					v.FreqLFOStep = -v.FreqLFOStep
				} else {
					v.FreqLFOAcc = lfo
				}
			}
		}
	}

	if v.FreqPhase != PhaseOff || int16(v.FreqLFOLimit>>16) != 0 {
		if v.Freq >= 0 {
			combined := v.FreqLFOAcc + v.FreqEnvAcc
			hi := int16(uint32(combined) >> 16)
			d0 := int32(hi) * int32(v.Freq)
			d0 = d0 << 4
			d0 = int32(int16(uint32(d0) >> 16))
			if d0 < 0 {
				d0++
			}
			d0 = int32(int16(d0) + v.Freq)
			if d0 < 0 {
				d0 = 0
			}
			if d0 > 0x0fff {
				d0 = 0x0fff
			}
			chip.WriteRegister(uint8(voiceIdx*2), uint8(d0&0xff))
			chip.WriteRegister(uint8(voiceIdx*2+1), uint8((d0>>8)&0x0f))
		}
	}
}

func tickNoise(v *Voice, voiceIdx int, chip Chip) {
	d1 := v.NoiseEnvAcc
	switch v.NoisePhase {
	case PhaseAttack:
		d1 += v.NoiseAttack
		if int16(v.NoiseAttack>>16) >= 0 {
			if d1 >= v.NoiseAttackTarget {
				d1 = v.NoiseAttackTarget
				v.NoisePhase++
			}
		} else if d1 <= v.NoiseAttackTarget {
			d1 = v.NoiseAttackTarget
			v.NoisePhase++
		}
	case PhaseDecay:
		d1 += v.NoiseDecay
		if int16(v.NoiseDecay>>16) >= 0 {
			if d1 >= v.NoiseDecayTarget {
				d1 = v.NoiseDecayTarget
				v.NoisePhase++
			}
		} else if d1 <= v.NoiseDecayTarget {
			d1 = v.NoiseDecayTarget
			v.NoisePhase++
		}
	case PhaseRelease:
		d1 += v.NoiseRelease
		if int16(v.NoiseRelease>>16) >= 0 {
			if d1 >= 0 {
				d1 = 0
			}
		} else if d1 <= 0 {
			d1 = 0
		}
	}
	v.NoiseEnvAcc = d1

	if v.NoiseLFOLimit != 0 {
		if v.NoiseLFODelay > 0 {
			v.NoiseLFODelay--
		} else {
			lfo := v.NoiseLFOAcc + v.NoiseLFOStep
			limit := v.NoiseLFOLimit
			if lfo >= limit {
				lfo = limit
				v.NoiseLFOStep = -v.NoiseLFOStep
			} else if negLimit := -limit; lfo <= negLimit {
				lfo = negLimit
				v.NoiseLFOStep = -v.NoiseLFOStep
			}
			v.NoiseLFOAcc = lfo
		}
	}

	if v.NoisePhase != PhaseOff || int16(v.NoiseLFOLimit>>16) != 0 {
		if v.NoiseFreq >= 0 {
			combined := v.NoiseLFOAcc + v.NoiseEnvAcc
			hi := int16(uint32(combined) >> 16)
			d0 := int32(hi) + int32(v.NoiseFreq)
			if d0 < 0 {
				d0 = 0
			}
			if d0 > 31 {
				d0 = 31
			}
			chip.WriteRegister(6, uint8(d0))
		}
	}
}

func tickDuration(v *Voice, voiceIdx int, chip Chip) {
	if v.Pitch >= 0 {
		return
	}
	v.InUse--
	if v.InUse != 0 {
		return
	}
	v.Priority = 0
	if v.VolPhase == 0 {
		chip.WriteRegister(8+uint8(voiceIdx), 0)
		return
	}

	v.InUse = -1
	v.VolPhase = PhaseRelease

	if v.FreqPhase != 0 {
		v.FreqPhase = PhaseRelease
		releaseHi := int16(v.FreqRelease >> 16)
		accHi := int16(v.FreqEnvAcc >> 16)
		if (releaseHi ^ accHi) >= 0 {
			v.FreqRelease = -v.FreqRelease
		}
	}

	if v.NoisePhase != 0 {
		v.NoisePhase = PhaseRelease
		releaseHi := int16(v.NoiseRelease >> 16)
		accHi := int16(v.NoiseEnvAcc >> 16)
		if (releaseHi ^ accHi) >= 0 {
			v.NoiseRelease = -v.NoiseRelease
		}
	}
}
