package audio

import "math"

// ----- Wave Kind ----- //

const (
	waveSine = iota
	waveSquare
	waveSaw
	waveTriangle
)

var waveKindNames = []string{"sine", "square", "saw", "triangle"}

// waveKindFromID maps the host ids 0..3. Anything else is a sine.
func waveKindFromID(id int) int {
	if id < 0 || id >= len(waveKindNames) {
		return waveSine
	}
	return id
}

func waveKindFromString(s string) (int, bool) {
	for i, name := range waveKindNames {
		if name == s {
			return i, true
		}
	}
	return waveSine, false
}

func waveKindToString(kind int) string {
	return waveKindNames[waveKindFromID(kind)]
}

// waveValue evaluates one waveform at phase p in [0, 2π).
func waveValue(kind int, p float64) float64 {
	switch kind {
	case waveSquare:
		if math.Sin(p) >= 0 {
			return 1
		}
		return -1
	case waveSaw:
		return 2*(p/(2*math.Pi)) - 1
	case waveTriangle:
		if p < math.Pi {
			return -1 + 2*p/math.Pi
		}
		return 1 - 2*(p-math.Pi)/math.Pi
	default:
		return math.Sin(p)
	}
}

// wrapPhase brings p back into [0, 2π) assuming it left the range by less
// than one period.
func wrapPhase(p float64) float64 {
	if p >= 2*math.Pi {
		p -= 2 * math.Pi
	} else if p < 0 {
		p += 2 * math.Pi
	}
	// rounding at the upper edge
	if p >= 2*math.Pi {
		p = 0
	}
	return p
}
