package sound

// Envelope phases (spec §4.9): 1=Attack, 2=Decay, 3=Sustain (implicit —
// the driver never sets phase 3 explicitly; decay's terminal condition
// just stops advancing), 4=Release, 0=Off.
const (
	PhaseOff     = 0
	PhaseAttack  = 1
	PhaseDecay   = 2
	PhaseRelease = 4
)

const numVoices = 3

// Voice is the driver's 140-byte per-voice state (spec §4.9 "Voice state
// is 140 bytes, mirroring the original layout"). Field order follows the
// struct offsets gist_driver.rs documents so the tick algorithm below
// reads the same way the original byte-offset comments do; Go has no
// reason to preserve the literal byte layout since nothing here reads it
// by address, only by field.
type Voice struct {
	InUse     int16 // duration counter while pitch < 0; nonzero while playing
	Freq      int16
	NoiseFreq int16
	Volume    int16

	VolPhase   int16
	VolAttack  int32
	VolDecay   int32
	VolSustain int32
	VolRelease int32

	VolLFOLimit int32
	VolLFOStep  int32
	VolLFODelay int16

	FreqPhase        int16
	FreqAttack       int32
	FreqAttackTarget int32
	FreqDecay        int32
	FreqDecayTarget  int32
	FreqRelease      int32

	FreqLFOLimit     int32
	FreqLFOStep      int32
	FreqLFOResetPos  int32
	FreqLFOLimitNeg  int32
	FreqLFOResetNeg  int32
	FreqLFODelay     int16

	NoisePhase        int16
	NoiseAttack       int32
	NoiseAttackTarget int32
	NoiseDecay        int32
	NoiseDecayTarget  int32
	NoiseRelease      int32

	NoiseLFOLimit int32
	NoiseLFOStep  int32
	NoiseLFODelay int16

	Pitch    int16 // -1 = use duration, >=0 = play indefinitely at this pitch
	Priority int16

	VolEnvAcc   int32
	VolLFOAcc   int32
	FreqEnvAcc  int32
	FreqLFOAcc  int32
	NoiseEnvAcc int32
	NoiseLFOAcc int32
}

// VoiceTemplate is the subset of a sound effect's definition that seeds a
// Voice on snd_on. gist_data.rs (the original's template/sound-data
// source) wasn't present in the retrieved corpus — only call sites
// constructing and reading it — so this mirrors the fields
// Voice.loadFromTemplate actually consumes rather than porting a layout
// that was never seen, the same stand-in approach used for
// animator.MonitorSettings.
type VoiceTemplate struct {
	InitialFreq      int16
	InitialNoiseFreq int16
	InitialVolume    int16

	VolPhase    int16
	VolAttack   int32
	VolDecay    int32
	VolSustain  int32
	VolRelease  int32
	VolLFOLimit int32
	VolLFOStep  int32
	VolLFODelay int16

	FreqEnvPhase         int16
	FreqAttack           int32
	FreqAttackTarget     int32
	FreqDecay            int32
	FreqDecayTarget      int32
	FreqRelease          int32
	FreqLFOLimit         int32
	FreqLFOStep          int32
	FreqLFOResetPos      int32
	FreqLFONegativeLimit int32
	FreqLFOResetNeg      int32
	FreqLFODelay         int16

	NoiseEnvPhase     int16
	NoiseAttack       int32
	NoiseAttackTarget int32
	NoiseDecay        int32
	NoiseDecayTarget  int32
	NoiseRelease      int32
	NoiseLFOLimit     int32
	NoiseLFOStep      int32
	NoiseLFODelay     int16
}

// SoundData is a script/event-exposed sound definition: a duration (in
// 200 Hz ticks) plus the template snd_on loads into the chosen voice.
type SoundData struct {
	Duration int16
	Template VoiceTemplate
}

func (v *Voice) loadFromTemplate(tpl *VoiceTemplate, pitch, priority int16, volume *int16) {
	v.Freq = tpl.InitialFreq
	v.NoiseFreq = tpl.InitialNoiseFreq
	if volume != nil {
		v.Volume = *volume
	} else {
		v.Volume = tpl.InitialVolume
	}
	v.VolPhase = tpl.VolPhase
	v.VolAttack = tpl.VolAttack
	v.VolDecay = tpl.VolDecay
	v.VolSustain = tpl.VolSustain
	v.VolRelease = tpl.VolRelease
	v.VolLFOLimit = tpl.VolLFOLimit
	v.VolLFOStep = tpl.VolLFOStep
	v.VolLFODelay = tpl.VolLFODelay

	v.FreqPhase = tpl.FreqEnvPhase
	v.FreqAttack = tpl.FreqAttack
	v.FreqAttackTarget = tpl.FreqAttackTarget
	v.FreqDecay = tpl.FreqDecay
	v.FreqDecayTarget = tpl.FreqDecayTarget
	v.FreqRelease = tpl.FreqRelease
	v.FreqLFOLimit = tpl.FreqLFOLimit
	v.FreqLFOStep = tpl.FreqLFOStep
	v.FreqLFOResetPos = tpl.FreqLFOResetPos
	v.FreqLFOLimitNeg = tpl.FreqLFONegativeLimit
	v.FreqLFOResetNeg = tpl.FreqLFOResetNeg
	v.FreqLFODelay = tpl.FreqLFODelay

	v.NoisePhase = tpl.NoiseEnvPhase
	v.NoiseAttack = tpl.NoiseAttack
	v.NoiseAttackTarget = tpl.NoiseAttackTarget
	v.NoiseDecay = tpl.NoiseDecay
	v.NoiseDecayTarget = tpl.NoiseDecayTarget
	v.NoiseRelease = tpl.NoiseRelease
	v.NoiseLFOLimit = tpl.NoiseLFOLimit
	v.NoiseLFOStep = tpl.NoiseLFOStep
	v.NoiseLFODelay = tpl.NoiseLFODelay

	v.Pitch = pitch
	v.Priority = priority

	v.VolEnvAcc = 0
	v.VolLFOAcc = 0
	v.FreqEnvAcc = 0
	v.FreqLFOAcc = 0
	v.NoiseEnvAcc = 0
	v.NoiseLFOAcc = 0
}
