package audio

import (
	"math"
	"testing"
)

func TestNoteToFrequency(t *testing.T) {
	expectEqual(t, NoteToFrequency(69), 440.0)
	expectNearlyEqual(t, NoteToFrequency(81), 880)
	expectNearlyEqual(t, NoteToFrequency(57), 220)
	expectNearlyEqual(t, NoteToFrequency(60), 261.6256)
}

func TestNameToFrequency(t *testing.T) {
	freq, ok := NameToFrequency("A4")
	expectEqual(t, ok, true)
	expectEqual(t, freq, NoteToFrequency(69))

	cases := []struct {
		name string
		note int
	}{
		{"C4", 60},
		{"c4", 60},
		{"C#4", 61},
		{"Db4", 61},
		{"eb3", 51},
		{"B3", 59},
		{"bb3", 58},
		{"C-1", 0},
		{"G9", 127},
		{"A10", 141},
	}
	for _, c := range cases {
		note, ok := NameToNote(c.name)
		if !ok {
			t.Errorf("%s: expected ok", c.name)
			continue
		}
		expectEqual(t, note, c.note)
	}
}

func TestNameToFrequencyInvalid(t *testing.T) {
	for _, name := range []string{"", "H4", "A", "A#", "Ax4", "Cb4", "E#4", "A4.5", "#4",
		"C99999", "C-99999", "C99999999999999999999999"} {
		if _, ok := NameToFrequency(name); ok {
			t.Errorf("%q: expected absent", name)
		}
	}
}

func TestFrequencyToName(t *testing.T) {
	expectEqual(t, FrequencyToName(440), "A4")
	expectEqual(t, FrequencyToName(445), "A4")
	expectEqual(t, FrequencyToName(261.6256), "C4")
	expectEqual(t, FrequencyToName(NoteToFrequency(0)), "C-1")
	expectEqual(t, FrequencyToName(NoteToFrequency(-1)), "B-2")
	expectEqual(t, FrequencyToName(NoteToFrequency(127)), "G9")
	expectEqual(t, FrequencyToName(0), "")
	expectEqual(t, FrequencyToName(-440), "")
	expectEqual(t, FrequencyToName(math.NaN()), "")
	expectEqual(t, FrequencyToName(math.Inf(1)), "")
	expectEqual(t, FrequencyToName(1e-300), "")
}

func TestFrequencyToNameRoundTrip(t *testing.T) {
	for _, name := range []string{"C#4", "A4", "C-1", "G9", "E0"} {
		freq, ok := NameToFrequency(name)
		expectEqual(t, ok, true)
		expectEqual(t, FrequencyToName(freq), name)
	}
	freq, _ := NameToFrequency("Bb3")
	expectEqual(t, FrequencyToName(freq), "A#3")
	for note := 0; note <= 127; note++ {
		got, ok := NameToNote(FrequencyToName(NoteToFrequency(note)))
		expectEqual(t, ok, true)
		expectEqual(t, got, note)
	}
}
