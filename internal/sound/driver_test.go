package sound

import "testing"

func TestSndOnWritesToneRegistersForStaticPitch(t *testing.T) {
	chip := &RegisterChip{}
	d := NewDriver()

	sound := &SoundData{
		Duration: 3,
		Template: VoiceTemplate{InitialFreq: 300, InitialNoiseFreq: -1, InitialVolume: 10},
	}
	voiceIdx, ok := d.SndOn(chip, sound, nil, nil, -1, 1)
	if !ok {
		t.Fatal("expected SndOn to claim a voice")
	}
	if voiceIdx != 0 {
		t.Fatalf("expected voice 0 to be picked first, got %d", voiceIdx)
	}
	if chip.Registers[0] != byte(300&0xff) || chip.Registers[1] != byte((300>>8)&0x0f) {
		t.Fatalf("expected tone registers set from InitialFreq=300, got %v", chip.Registers[:2])
	}
}

func TestVoiceGoesIdleAfterDurationExpires(t *testing.T) {
	chip := &RegisterChip{}
	d := NewDriver()

	sound := &SoundData{
		Duration: 3,
		Template: VoiceTemplate{InitialFreq: 100, InitialNoiseFreq: -1, InitialVolume: 10},
	}
	if _, ok := d.SndOn(chip, sound, nil, nil, -1, 1); !ok {
		t.Fatal("expected SndOn to succeed")
	}
	if !d.IsPlaying() {
		t.Fatal("expected driver to report playing right after SndOn")
	}

	for i := 0; i < 3; i++ {
		d.Tick(chip)
	}

	if d.IsPlaying() {
		t.Fatal("expected voice to go idle once duration ticks are exhausted")
	}
	if chip.Registers[8] != 0 {
		t.Fatalf("expected volume register cleared to 0 on expiry, got %d", chip.Registers[8])
	}
}

func TestStopSndDisablesToneAndNoiseInMixer(t *testing.T) {
	chip := &RegisterChip{}
	d := NewDriver()
	sound := &SoundData{Duration: 10, Template: VoiceTemplate{InitialFreq: 50, InitialNoiseFreq: -1, InitialVolume: 15}}
	voiceIdx, _ := d.SndOn(chip, sound, nil, nil, -1, 1)

	d.StopSnd(chip, voiceIdx)

	if d.voices[voiceIdx].InUse != 0 {
		t.Fatal("expected voice marked not in use after StopSnd")
	}
	toneBit := uint8(1) << uint(voiceIdx)
	noiseBit := uint8(8) << uint(voiceIdx)
	if chip.Registers[7]&toneBit == 0 || chip.Registers[7]&noiseBit == 0 {
		t.Fatalf("expected mixer to disable tone+noise for voice %d, got mixer=%#x", voiceIdx, chip.Registers[7])
	}
}

func TestNoiseRegisterArbitrationFavorsLastTickedVoice(t *testing.T) {
	chip := &RegisterChip{}
	d := NewDriver()

	for i, noiseFreq := range []int16{5, 9} {
		i := i
		sound := &SoundData{
			Duration: 100,
			Template: VoiceTemplate{
				InitialFreq:      -1,
				InitialNoiseFreq: noiseFreq,
				InitialVolume:    10,
				NoiseEnvPhase:    PhaseAttack,
				NoiseAttack:      0,
				NoiseAttackTarget: 1 << 20,
			},
		}
		idx := i
		if _, ok := d.SndOn(chip, sound, &idx, nil, -1, 1); !ok {
			t.Fatalf("expected voice %d to be claimed", idx)
		}
	}

	d.Tick(chip)

	// Tick processes voices 2,1,0 in that order, so voice 0 writes register
	// 6 last and its value wins (spec §4.9 / gist_driver.rs::tick).
	if chip.Registers[6] != 9 {
		t.Fatalf("expected voice 0's noise value (9) to win arbitration, got %d", chip.Registers[6])
	}
}
