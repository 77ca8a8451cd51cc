package audio

import (
	"math"
	"testing"
)

func TestOscPhaseStaysInRange(t *testing.T) {
	for _, freq := range []float64{1, 440, 12543.85, 22049, 30000, 44099, 44100, 90000} {
		o := newOsc(waveSaw, freq, 44100)
		for i := 0; i < 100000; i++ {
			o.step()
			if o.phase < 0 || o.phase >= 2*math.Pi {
				t.Fatalf("phase out of range at %v Hz, sample %d: %v", freq, i, o.phase)
			}
		}
	}
}

func TestOscSine(t *testing.T) {
	const freq = 440.0
	const sr = 44100.0
	o := newOsc(waveSine, freq, sr)
	ratio := sr / freq
	period := int(ratio) + 1
	for n := 0; n < period*2; n++ {
		expectNearlyEqual(t, o.step(), math.Sin(2*math.Pi*freq*float64(n)/sr))
	}
}

func TestWaveValue(t *testing.T) {
	expectNearlyEqual(t, waveValue(waveSine, math.Pi/2), 1)
	expectEqual(t, waveValue(waveSquare, 0), 1.0)
	expectEqual(t, waveValue(waveSquare, math.Pi/2), 1.0)
	expectEqual(t, waveValue(waveSquare, 3*math.Pi/2), -1.0)
	expectNearlyEqual(t, waveValue(waveSaw, 0), -1)
	expectNearlyEqual(t, waveValue(waveSaw, math.Pi), 0)
	expectNearlyEqual(t, waveValue(waveSaw, 2*math.Pi-1e-9), 1)
	expectNearlyEqual(t, waveValue(waveTriangle, 0), -1)
	expectNearlyEqual(t, waveValue(waveTriangle, math.Pi/2), 0)
	expectNearlyEqual(t, waveValue(waveTriangle, math.Pi), 1)
	expectNearlyEqual(t, waveValue(waveTriangle, 3*math.Pi/2), 0)
}

func TestOscSetFreqKeepsPhase(t *testing.T) {
	o := newOsc(waveSine, 1000, 48000)
	for i := 0; i < 10; i++ {
		o.step()
	}
	phase := o.phase
	o.setFreq(2000)
	expectEqual(t, o.phase, phase)
	expectNearlyEqual(t, o.phaseInc, 2*math.Pi*2000/48000)
}

func TestOscAboveNyquistIsKept(t *testing.T) {
	o := newOsc(waveSine, 30000, 48000)
	expectEqual(t, o.freq, 30000.0)
	expectNearlyEqual(t, o.phaseInc, 2*math.Pi*30000/48000)
	v := o.step()
	expectNearlyEqual(t, v, 0)
	expectNearlyEqual(t, o.phase, 2*math.Pi*30000/48000)
}

func TestOscClampsFrequency(t *testing.T) {
	o := newOsc(waveSine, 48000, 48000)
	if o.freq >= 48000 {
		t.Errorf("expected freq below the sample rate, but got %v", o.freq)
	}
	if o.phaseInc >= 2*math.Pi {
		t.Errorf("expected phaseInc below 2π, but got %v", o.phaseInc)
	}
	o.setFreq(100000)
	if o.freq >= 48000 {
		t.Errorf("expected freq below the sample rate, but got %v", o.freq)
	}
	expectNearlyEqual(t, o.freq, 48000)
	o.setFreq(-5)
	expectEqual(t, o.freq, 0.0)
	expectEqual(t, o.phaseInc, 0.0)
}

func TestOscStepAt(t *testing.T) {
	o := newOsc(waveSine, 100, 1000)
	v := o.stepAt(250)
	expectNearlyEqual(t, o.phase, math.Pi/2)
	expectNearlyEqual(t, v, 1)
	o.stepAt(-500)
	expectNearlyEqual(t, o.phase, 3*math.Pi/2)
}

func TestOscStepAtHighFrequency(t *testing.T) {
	const sr = 48000.0
	freq := noteToFreq(127) + 15000
	o := newOsc(waveSine, noteToFreq(127), sr)
	o.stepAt(freq)
	expectNearlyEqual(t, o.phase, 2*math.Pi*freq/sr)

	o.reset()
	o.stepAt(2 * sr)
	if o.phase < 0 || o.phase >= 2*math.Pi {
		t.Errorf("phase out of range: %v", o.phase)
	}
	o.stepAt(-2 * sr)
	if o.phase < 0 || o.phase >= 2*math.Pi {
		t.Errorf("phase out of range: %v", o.phase)
	}
}

func TestWrapPhase(t *testing.T) {
	expectNearlyEqual(t, wrapPhase(2*math.Pi+1), 1)
	expectNearlyEqual(t, wrapPhase(-1), 2*math.Pi-1)
	p := wrapPhase(-1e-300)
	if p < 0 || p >= 2*math.Pi {
		t.Errorf("phase out of range: %v", p)
	}
}

func TestWaveKindNames(t *testing.T) {
	for i, name := range []string{"sine", "square", "saw", "triangle"} {
		kind, ok := waveKindFromString(name)
		expectEqual(t, ok, true)
		expectEqual(t, kind, i)
		expectEqual(t, waveKindToString(kind), name)
		expectEqual(t, waveKindFromID(i), i)
	}
	_, ok := waveKindFromString("noise")
	expectEqual(t, ok, false)
	expectEqual(t, waveKindFromID(9), waveSine)
	expectEqual(t, waveKindFromID(-1), waveSine)
}
