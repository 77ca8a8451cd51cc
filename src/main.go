package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jinjor/monosynth/src/audio"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		sockFile   = flag.String("sock", "/tmp/monosynth.sock", "unix socket for commands and reports")
		midiIn     = flag.String("midi", "", "MIDI IN port name (substring), \"-\" to disable")
		presetDir  = flag.String("presets", "", "directory with preset JSON files")
		keys       = flag.Bool("keys", false, "play from the computer keyboard instead of listening on the socket")
	)
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	synth := audio.NewAudio(*sampleRate, *presetDir)
	defer synth.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return synth.Start(ctx)
	})
	if *midiIn != "-" {
		g.Go(func() error {
			return forwardMidi(ctx, audio.ListenToMidiIn(ctx, *midiIn), synth)
		})
	}
	if *keys {
		g.Go(func() error {
			err := playKeyboard(ctx, os.Stdin, synth)
			cancel()
			return err
		})
	} else {
		g.Go(func() error {
			return withIPCConnection(ctx, *sockFile, func(conn net.Conn) error {
				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return receiveCommands(ctx, conn, synth.CommandCh)
				})
				g.Go(func() error {
					return sendReports(ctx, conn, synth)
				})
				return g.Wait()
			})
		})
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func forwardMidi(ctx context.Context, midiCh <-chan []byte, a *audio.Audio) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-midiCh:
			if !ok {
				log.Println("forwardMidi() ended.")
				return nil
			}
			a.AddMidiEvent(data)
		}
	}
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	log.Printf("start listening on %s...\n", sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			if ctx.Err() != nil {
				break loop
			}
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		line = line[:0]
		if err != nil {
			log.Printf("bad command: %v\n", err)
			continue
		}
		if len(command) == 0 {
			continue
		}
		commandCh <- command
		log.Printf("received: %v\n", command)
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	items := strings.Fields(line)
	for i, item := range items {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		items[i] = escaped
	}
	return items, nil
}

func sendReports(ctx context.Context, conn net.Conn, a *audio.Audio) error {
	t := time.NewTicker(time.Second / 30)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			spectrum := a.GetFFT()
			report := formatFFT(spectrum) + formatNote(spectrum, a.SampleRate())
			if _, err := conn.Write([]byte(report)); err != nil {
				if ctx.Err() != nil {
					break loop
				}
				return err
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}

func formatFFT(result []float64) string {
	var sb strings.Builder
	sb.WriteString("fft")
	for _, value := range result {
		sb.WriteString(" ")
		sb.WriteString(strconv.FormatFloat(value, 'f', 6, 64))
	}
	sb.WriteString("\n")
	return sb.String()
}

// minPeak is the magnitude below which the spectrum counts as silence.
const minPeak = 0.01

// formatNote reports the loudest bin of a half spectrum as a frequency and
// the nearest note name. Silence reports nothing.
func formatNote(spectrum []float64, sampleRate int) string {
	peak := 0
	for i, value := range spectrum {
		if value > spectrum[peak] {
			peak = i
		}
	}
	if len(spectrum) == 0 || peak == 0 || spectrum[peak] < minPeak {
		return ""
	}
	freq := float64(peak) * float64(sampleRate) / float64(2*len(spectrum))
	return fmt.Sprintf("note %s %s\n", strconv.FormatFloat(freq, 'f', 2, 64), audio.FrequencyToName(freq))
}
