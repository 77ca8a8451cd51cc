package audio

import (
	"context"
	"errors"
	"log"
	"strings"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

var errNoMidiIn = errors.New("MIDI IN not found")

// selectMidiIn returns the first port whose name contains name, or the first
// port at all when name is empty.
func selectMidiIn(ins []midi.In, name string) (midi.In, error) {
	for _, in := range ins {
		if name == "" || strings.Contains(in.String(), name) {
			return in, nil
		}
	}
	return nil, errNoMidiIn
}

// ListenToMidiIn forwards raw messages of the selected MIDI IN port until
// ctx is done. The channel is closed when listening stops.
func ListenToMidiIn(ctx context.Context, name string) <-chan []byte {
	ch := make(chan []byte, 256)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		in, err := selectMidiIn(ins, name)
		if err != nil {
			log.Printf("WARN: %v (%q)\n", err, name)
			return
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := make([]byte, len(data))
			copy(msg, data)
			select {
			case ch <- msg:
			default:
				log.Println("[WARN] MIDI message dropped")
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}
