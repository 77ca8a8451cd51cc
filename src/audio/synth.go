package audio

// ----- Modulation Mode ----- //

const (
	modNone = iota
	modAM
	modFM
)

var modulationNames = []string{"none", "am", "fm"}

// modulationFromID maps the host ids 0..2. Anything else disables modulation.
func modulationFromID(id int) int {
	if id < 0 || id >= len(modulationNames) {
		return modNone
	}
	return id
}

func modulationFromString(s string) (int, bool) {
	for i, name := range modulationNames {
		if name == s {
			return i, true
		}
	}
	return modNone, false
}

func modulationToString(mode int) string {
	return modulationNames[modulationFromID(mode)]
}

// ----- Synth ----- //

type synth struct {
	sampleRate float64
	carrier    *osc
	modulator  *osc
	adsr       *adsr
	modulation int
	modIndex   float64 // depth for AM, deviation in Hz for FM
	baseFreq   float64 // note frequency of the carrier
}

func newSynth(sampleRate float64, p *params) *synth {
	s := &synth{
		sampleRate: sampleRate,
		carrier:    newOsc(waveSine, a4Freq, sampleRate),
		modulator:  newOsc(waveSine, 0, sampleRate),
		adsr:       newADSRFromParams(sampleRate, p.adsrParams),
		baseFreq:   a4Freq,
	}
	s.applyParams(p)
	return s
}

func (s *synth) applyParams(p *params) {
	s.setWaveform(p.wave)
	s.setModulation(p.modParams.mode, p.modParams.freq, p.modParams.index)
	s.adsr.setParams(p.adsrParams)
}

func (s *synth) setWaveform(kind int) {
	s.carrier.kind = kind
	s.modulator.kind = kind
}

func (s *synth) setModulation(mode int, modFreq float64, modIndex float64) {
	s.modulation = mode
	s.modIndex = modIndex
	if mode != modNone {
		s.modulator.setFreq(modFreq)
	} else {
		s.modulator.setFreq(0)
		s.modulator.reset()
	}
}

func (s *synth) noteOn(note int) {
	s.baseFreq = noteToFreq(note)
	s.carrier.setFreq(s.baseFreq)
	s.carrier.reset()
	s.modulator.reset()
	s.adsr.noteOn()
}

func (s *synth) noteOff() {
	s.adsr.noteOff()
}

func (s *synth) step() float64 {
	modValue := 0.0
	if s.modulation != modNone {
		modValue = s.modulator.step()
	}
	var value float64
	switch s.modulation {
	case modAM:
		value = s.carrier.step() * 0.5 * (modValue + 1) * s.modIndex
	case modFM:
		value = s.carrier.stepAt(s.baseFreq + modValue*s.modIndex)
	default:
		value = s.carrier.step()
	}
	return value * s.adsr.step()
}

// process fills every slot of out, including silence while the envelope is idle.
func (s *synth) process(out []float32) {
	for i := range out {
		out[i] = float32(s.step())
	}
}
