package audio

import (
	"math"
	"strconv"
	"strings"
)

// ----- Note ----- //

const (
	a4Note = 69
	a4Freq = 440.0
)

// octaves accepted by NameToNote
const (
	minOctave = -10
	maxOctave = 20
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchClasses = map[string]int{
	"C": 0, "C#": 1, "Db": 1,
	"D": 2, "D#": 3, "Eb": 3,
	"E": 4,
	"F": 5, "F#": 6, "Gb": 6,
	"G": 7, "G#": 8, "Ab": 8,
	"A": 9, "A#": 10, "Bb": 10,
	"B": 11,
}

func noteToFreq(note int) float64 {
	return a4Freq * math.Pow(2, float64(note-a4Note)/12)
}

// NoteToFrequency converts a MIDI note number to Hz (A4 = 69 = 440Hz).
func NoteToFrequency(note int) float64 {
	return noteToFreq(note)
}

// NameToNote parses names like "A4", "c#3" or "Bb-1" into a MIDI note number.
func NameToNote(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	letter := strings.ToUpper(name[:1])
	rest := name[1:]
	if strings.HasPrefix(rest, "#") || strings.HasPrefix(rest, "b") {
		letter += rest[:1]
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil || octave < minOctave || octave > maxOctave {
		return 0, false
	}
	pitchClass, ok := pitchClasses[letter]
	if !ok {
		return 0, false
	}
	return (octave+1)*12 + pitchClass, true
}

// NameToFrequency is NameToNote followed by NoteToFrequency.
func NameToFrequency(name string) (float64, bool) {
	note, ok := NameToNote(name)
	if !ok {
		return 0, false
	}
	return noteToFreq(note), true
}

// FrequencyToName returns the name of the nearest note, like "A4" or "C#-1".
// It returns "" for non-positive or non-finite frequencies.
func FrequencyToName(freq float64) string {
	if !(freq > 0) || math.IsInf(freq, 1) {
		return ""
	}
	n := math.Round(12*math.Log2(freq/a4Freq)) + a4Note
	if n < float64((minOctave+1)*12) || n > float64((maxOctave+2)*12-1) {
		return ""
	}
	note := int(n)
	pitchClass := (note%12 + 12) % 12
	octave := (note-pitchClass)/12 - 1
	return noteNames[pitchClass] + strconv.Itoa(octave)
}
