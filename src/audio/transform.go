package audio

import "math"

// These helpers work on whole buffers and never touch an Audio.

// SineWave renders duration seconds of a sine at freq.
func SineWave(freq float64, duration float64, sampleRate int) []float32 {
	n := int(duration * float64(sampleRate))
	if n <= 0 {
		return []float32{}
	}
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(math.Sin(2 * math.Pi * freq * t))
	}
	return out
}

// ApplyAM scales carrier by a sine modulator mapped to [0, modIndex].
func ApplyAM(carrier []float32, modFreq float64, modIndex float64, sampleRate int) []float32 {
	out := make([]float32, len(carrier))
	for i, v := range carrier {
		t := float64(i) / float64(sampleRate)
		am := 0.5 * (1 + math.Sin(2*math.Pi*modFreq*t)) * modIndex
		out[i] = float32(float64(v) * am)
	}
	return out
}

// ApplyFM treats each input value as a base frequency in Hz and renders a
// sine whose frequency is deviated by a 1Hz sine scaled by modSignal and
// deviation.
func ApplyFM(baseFreqs []float32, modSignal float64, deviation float64, sampleRate int) []float32 {
	out := make([]float32, len(baseFreqs))
	for i, f := range baseFreqs {
		t := float64(i) / float64(sampleRate)
		offset := modSignal * math.Sin(2*math.Pi*t) * deviation
		out[i] = float32(math.Sin(2 * math.Pi * (float64(f) + offset) * t))
	}
	return out
}

// ApplyADSR multiplies samples by a piecewise-linear envelope whose stage
// lengths are given in samples. The release stage ends on the last sample.
// Stages of length zero are skipped.
func ApplyADSR(samples []float32, attack int, decay int, sustain float64, release int) []float32 {
	n := len(samples)
	if release > n {
		release = n
	}
	out := make([]float32, n)
	for i, v := range samples {
		var amp float64
		switch {
		case i < attack:
			amp = float64(i) / float64(attack)
		case i < attack+decay:
			amp = 1 - float64(i-attack)/float64(decay)*(1-sustain)
		case i < n-release:
			amp = sustain
		default:
			pos := i - (n - release)
			amp = sustain * (1 - float64(pos)/float64(release))
		}
		out[i] = float32(float64(v) * amp)
	}
	return out
}
