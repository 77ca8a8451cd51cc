package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jinjor/monosynth/src/audio"
	"golang.org/x/term"
)

// one chromatic octave and a half, starting at C
const keyRow = "awsedftgyhujkolp;'"

const (
	keyQuit     = 'q'
	keyCtrlC    = 0x03
	keyRelease  = ' '
	keyOctDown  = 'z'
	keyOctUp    = 'x'
	keyNextMod  = 'm'
	defaultBase = 60
)

var modPresets = []struct {
	mode  int
	freq  float64
	index float64
	label string
}{
	{0, 0, 0, "none"},
	{1, 5, 1, "am 5Hz"},
	{2, 6, 8, "fm 6Hz +-8Hz"},
	{2, 220, 300, "fm 220Hz +-300Hz"},
}

func keyToNote(b byte, base int) (int, bool) {
	for i := 0; i < len(keyRow); i++ {
		if keyRow[i] == b {
			return base + i, true
		}
	}
	return 0, false
}

// playKeyboard puts the terminal into raw mode and plays notes until q is
// pressed.
func playKeyboard(ctx context.Context, in *os.File, a *audio.Audio) error {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer func() {
			if err := term.Restore(fd, oldState); err != nil {
				log.Printf("failed to restore terminal: %v\n", err)
			}
		}()
	}
	fmt.Print("keys: " + keyRow + "  space: release  z/x: octave  1-4: wave  m: modulation  q: quit\r\n")
	return handleKeys(ctx, in, a)
}

func handleKeys(ctx context.Context, r io.Reader, a *audio.Audio) error {
	keyCh := make(chan byte)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case keyCh <- buf[0]:
				case <-done:
					return
				}
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()
	base := defaultBase
	mod := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return err
		case b := <-keyCh:
			switch {
			case b == keyQuit || b == keyCtrlC:
				return nil
			case b == keyRelease:
				a.NoteOff()
			case b == keyOctDown && base >= 12:
				base -= 12
			case b == keyOctUp && base+12+len(keyRow) <= 128:
				base += 12
			case b >= '1' && b <= '4':
				a.SetWaveform(int(b - '1'))
			case b == keyNextMod:
				mod = (mod + 1) % len(modPresets)
				p := modPresets[mod]
				a.SetModulation(p.mode, p.freq, p.index)
				fmt.Printf("modulation: %s\r\n", p.label)
			default:
				if note, ok := keyToNote(b, base); ok {
					a.NoteOn(note)
				}
			}
		}
	}
}
