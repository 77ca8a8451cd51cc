package audio

import (
	"log"
	"math"
)

// ----- OSC ----- //

type osc struct {
	kind       int
	freq       float64
	phase      float64 // [0, 2π)
	sampleRate float64
	phaseInc   float64 // 2π * freq / sampleRate
}

func newOsc(kind int, freq float64, sampleRate float64) *osc {
	o := &osc{
		kind:       kind,
		sampleRate: sampleRate,
	}
	o.setFreq(freq)
	return o
}

// maxFreq is the largest frequency below sampleRate, so that phaseInc stays
// below 2π and a single subtraction wraps the phase.
func (o *osc) maxFreq() float64 {
	return math.Nextafter(o.sampleRate, 0)
}

func (o *osc) setFreq(freq float64) {
	o.freq = clampFreq(freq, 0, o.maxFreq())
	o.phaseInc = o.increment(o.freq)
}

// increment is 2π*freq/sampleRate, kept strictly inside (-2π, 2π) when
// rounding would land on the bound.
func (o *osc) increment(freq float64) float64 {
	inc := 2.0 * math.Pi * freq / o.sampleRate
	if inc >= 2*math.Pi {
		return math.Nextafter(2*math.Pi, 0)
	}
	if inc <= -2*math.Pi {
		return math.Nextafter(-2*math.Pi, 0)
	}
	return inc
}

func clampFreq(freq float64, min float64, max float64) float64 {
	if freq < min || math.IsNaN(freq) {
		if freq != min {
			log.Printf("[WARN] frequency %v clamped to %v\n", freq, min)
		}
		return min
	}
	if freq > max {
		log.Printf("[WARN] frequency %v clamped to %v\n", freq, max)
		return max
	}
	return freq
}

func (o *osc) reset() {
	o.phase = 0
}

func (o *osc) step() float64 {
	value := waveValue(o.kind, o.phase)
	o.phase = wrapPhase(o.phase + o.phaseInc)
	return value
}

// stepAt advances the phase by the increment of an instantaneous frequency
// instead of the stored one, then evaluates the waveform at the new phase.
func (o *osc) stepAt(freq float64) float64 {
	max := o.maxFreq()
	if math.IsNaN(freq) {
		freq = 0
	} else if freq > max {
		freq = max
	} else if freq < -max {
		freq = -max
	}
	o.phase = wrapPhase(o.phase + o.increment(freq))
	return waveValue(o.kind, o.phase)
}
