package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jinjor/monosynth/src/audio"
)

func TestParseCommand(t *testing.T) {
	command, err := parseCommand("note_on C%234")
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if len(command) != 2 || command[0] != "note_on" || command[1] != "C#4" {
		t.Errorf("unexpected command: %v", command)
	}
	command, err = parseCommand("  mod  fm 5 10 ")
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if len(command) != 4 {
		t.Errorf("unexpected command: %v", command)
	}
	if _, err := parseCommand("wave %zz"); err == nil {
		t.Errorf("expected an error")
	}
}

func TestFormatFFT(t *testing.T) {
	got := formatFFT([]float64{0, 0.5})
	if got != "fft 0.000000 0.500000\n" {
		t.Errorf("unexpected report: %q", got)
	}
}

func TestFormatNote(t *testing.T) {
	spectrum := make([]float64, 1024)
	spectrum[19] = 0.8
	spectrum[20] = 0.3
	// 19 * 48000 / 2048
	got := formatNote(spectrum, 48000)
	if got != "note 445.31 A4\n" {
		t.Errorf("unexpected report: %q", got)
	}
	if got := formatNote(make([]float64, 1024), 48000); got != "" {
		t.Errorf("expected no report for silence, but got %q", got)
	}
	if got := formatNote(nil, 48000); got != "" {
		t.Errorf("expected no report for an empty spectrum, but got %q", got)
	}
}

func TestFormatNoteFromRenderedAudio(t *testing.T) {
	a := audio.NewAudio(48000, "")
	defer a.Close()
	a.NoteOn(69)
	buf := make([]float32, 4096)
	a.Render(buf)
	got := formatNote(a.GetFFT(), a.SampleRate())
	if !strings.HasPrefix(got, "note ") || !strings.HasSuffix(got, " A4\n") {
		t.Errorf("unexpected report: %q", got)
	}
}

func TestKeyToNote(t *testing.T) {
	note, ok := keyToNote('a', 60)
	if !ok || note != 60 {
		t.Errorf("expected 60, but got %d", note)
	}
	note, ok = keyToNote('k', 48)
	if !ok || note != 60 {
		t.Errorf("expected 60, but got %d", note)
	}
	if _, ok := keyToNote('1', 60); ok {
		t.Errorf("expected no note for a digit")
	}
}

func TestHandleKeys(t *testing.T) {
	a := audio.NewAudio(48000, "")
	defer a.Close()
	err := handleKeys(context.Background(), strings.NewReader("3ah q"), a)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	var snapshot struct {
		Params struct {
			Wave string `json:"wave"`
		} `json:"params"`
	}
	if err := json.Unmarshal(a.ToJSON(), &snapshot); err != nil {
		t.Fatal(err)
	}
	if snapshot.Params.Wave != "saw" {
		t.Errorf("expected saw, but got %s", snapshot.Params.Wave)
	}
}

func TestHandleKeysEOF(t *testing.T) {
	a := audio.NewAudio(48000, "")
	defer a.Close()
	if err := handleKeys(context.Background(), strings.NewReader("a"), a); err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}
