package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/hajimehoshi/oto"
)

const (
	channelNum      = 2
	bitDepthInBytes = 2
	samplesPerCycle = 1024
	fftSize         = 2048 // multiple of samplesPerCycle
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096

// ErrPoisoned is the panic value of every accessor once a panic has escaped
// while the state lock was held.
var ErrPoisoned = errors.New("synth state poisoned by an earlier panic")

var errUnknownKey = errors.New("unknown key")
var errUnknownValue = errors.New("unknown value")

// ----- Utility ----- //

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}

// ----- State ----- //

type state struct {
	sync.Mutex
	poisoned   bool
	sampleRate int
	params     *params
	synth      *synth
	note       int       // sounding note, -1 if none
	pos        int64     // samples rendered since Init
	out        []float32 // length: fftSize
	buf        []float32 // scratch for Read
}

func newState(sampleRate int) *state {
	s := &state{
		params: newParams(),
		out:    make([]float32, fftSize),
		buf:    make([]float32, samplesPerCycle),
	}
	s.init(sampleRate)
	return s
}

func (s *state) init(sampleRate int) {
	s.sampleRate = sampleRate
	s.synth = newSynth(float64(sampleRate), s.params)
	s.note = -1
	s.pos = 0
	for i := range s.out {
		s.out[i] = 0
	}
}

func (s *state) render(buf []float32) {
	s.synth.process(buf)
	for _, v := range buf {
		s.out[s.pos%fftSize] = v
		s.pos++
	}
}

func (s *state) noteOn(note int) {
	if note < 0 || note > 127 {
		log.Printf("[WARN] note %d out of range\n", note)
		return
	}
	s.note = note
	s.synth.noteOn(note)
}

func (s *state) noteOff() {
	s.note = -1
	s.synth.noteOff()
}

func (s *state) setWave(kind int) {
	s.params.wave = kind
	s.synth.setWaveform(kind)
}

func (s *state) setModulation(mode int, freq float64, index float64) {
	s.params.modParams.mode = mode
	s.params.modParams.freq = freq
	s.params.modParams.index = index
	s.synth.setModulation(mode, freq, index)
}

// ----- Audio ----- //

// Audio owns one monophonic synth and serialises every control and render
// call on it behind a single lock.
type Audio struct {
	ctx       context.Context
	CommandCh chan []string
	state     *state
	presets   *presetManager
	closeOnce sync.Once
	deviceMu  sync.Mutex
	deviceSR  int // sample rate of the open device, 0 if none
}

var _ io.Reader = (*Audio)(nil)

// NewAudio creates an Audio without touching any device. presetDir may be
// empty.
func NewAudio(sampleRate int, presetDir string) *Audio {
	commandCh := make(chan []string, 256)
	audio := &Audio{
		ctx:       context.Background(),
		CommandCh: commandCh,
		state:     newState(sampleRate),
	}
	if presetDir != "" {
		audio.presets = newPresetManager(presetDir)
	}
	go processCommands(audio, commandCh)
	return audio
}

func (a *Audio) withState(f func(s *state)) {
	a.state.Lock()
	defer a.state.Unlock()
	if a.state.poisoned {
		panic(ErrPoisoned)
	}
	defer func() {
		if r := recover(); r != nil {
			a.state.poisoned = true
			panic(r)
		}
	}()
	f(a.state)
}

// Init rebuilds the synth at sampleRate. It reports false instead of
// panicking when the state is poisoned. A device opened by Start keeps its
// own rate until it is reopened.
func (a *Audio) Init(sampleRate int) bool {
	if sampleRate <= 0 {
		return false
	}
	if deviceSR := a.deviceSampleRate(); deviceSR != 0 && deviceSR != sampleRate {
		log.Printf("[WARN] sample rate %d differs from the open device (%d); restart to apply\n", sampleRate, deviceSR)
	}
	a.state.Lock()
	defer a.state.Unlock()
	if a.state.poisoned {
		return false
	}
	a.state.init(sampleRate)
	return true
}

// SampleRate ...
func (a *Audio) SampleRate() int {
	var sr int
	a.withState(func(s *state) {
		sr = s.sampleRate
	})
	return sr
}

// SetWaveform takes 0=sine, 1=square, 2=saw, 3=triangle.
func (a *Audio) SetWaveform(id int) {
	a.withState(func(s *state) {
		s.setWave(waveKindFromID(id))
	})
}

// SetModulation takes 0=none, 1=AM, 2=FM.
func (a *Audio) SetModulation(mode int, modFreq float64, modIndex float64) {
	a.withState(func(s *state) {
		s.setModulation(modulationFromID(mode), modFreq, modIndex)
	})
}

// NoteOn ...
func (a *Audio) NoteOn(note int) {
	a.withState(func(s *state) {
		s.noteOn(note)
	})
}

// NoteOff ...
func (a *Audio) NoteOff() {
	a.withState(func(s *state) {
		s.noteOff()
	})
}

// Render fills the whole of buf with the next samples.
func (a *Audio) Render(buf []float32) {
	a.withState(func(s *state) {
		s.render(buf)
	})
}

type audioJSON struct {
	SampleRate int             `json:"sampleRate"`
	Params     json.RawMessage `json:"params"`
}

// ApplyJSON ...
func (a *Audio) ApplyJSON(data []byte) {
	a.withState(func(s *state) {
		var j audioJSON
		err := json.Unmarshal(data, &j)
		if err != nil {
			log.Println("failed to apply JSON to Audio", err)
			return
		}
		if j.Params != nil {
			s.params.applyJSON(j.Params)
			s.synth.applyParams(s.params)
		}
	})
}

// ToJSON ...
func (a *Audio) ToJSON() []byte {
	var bytes []byte
	a.withState(func(s *state) {
		var err error
		bytes, err = json.Marshal(&audioJSON{
			SampleRate: s.sampleRate,
			Params:     s.params.toJSON(),
		})
		if err != nil {
			panic(err)
		}
	})
	return bytes
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	bufSamples := len(buf) / bytesPerSample
	a.withState(func(s *state) {
		if cap(s.buf) < bufSamples {
			s.buf = make([]float32, bufSamples)
		}
		out := s.buf[:bufSamples]
		s.render(out)
		writeBuffer(out, buf, 0)
		writeBuffer(out, buf, 1)
	})
	return bufSamples * bytesPerSample, nil
}

func writeBuffer(out []float32, buf []byte, ch int) {
	for i, value := range out {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		const max = 32767
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

func processCommands(audio *Audio, commandCh <-chan []string) {
	for command := range commandCh {
		if err := audio.update(command); err != nil {
			log.Printf("command %v: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

func (a *Audio) update(command []string) error {
	if len(command) == 0 {
		return errors.New("empty command")
	}
	if command[0] == "preset" {
		if len(command) != 2 {
			return fmt.Errorf("invalid preset command %v", command)
		}
		return a.applyPreset(command[1])
	}
	var err error
	a.withState(func(s *state) {
		err = s.update(command)
	})
	return err
}

func (s *state) update(command []string) error {
	args := command[1:]
	switch command[0] {
	case "wave":
		if len(args) != 1 {
			return fmt.Errorf("invalid wave command %v", command)
		}
		kind, ok := waveKindFromString(args[0])
		if !ok {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("wave %q: %w", args[0], errUnknownValue)
			}
			kind = waveKindFromID(id)
		}
		s.setWave(kind)
	case "mod":
		if len(args) != 3 {
			return fmt.Errorf("invalid mod command %v", command)
		}
		mode, ok := modulationFromString(args[0])
		if !ok {
			return fmt.Errorf("modulation %q: %w", args[0], errUnknownValue)
		}
		freq, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return err
		}
		index, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return err
		}
		s.setModulation(mode, freq, index)
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("invalid key-value pair %v", args)
		}
		switch args[0] {
		case "adsr":
			if err := s.params.adsrParams.set(args[1], args[2]); err != nil {
				return fmt.Errorf("adsr %s: %w", args[1], err)
			}
			s.synth.adsr.setParams(s.params.adsrParams)
		case "mod":
			if err := s.params.modParams.set(args[1], args[2]); err != nil {
				return fmt.Errorf("mod %s: %w", args[1], err)
			}
			m := s.params.modParams
			s.synth.setModulation(m.mode, m.freq, m.index)
		default:
			return fmt.Errorf("set %q: %w", args[0], errUnknownKey)
		}
	case "note_on":
		if len(args) != 1 {
			return fmt.Errorf("invalid note_on command %v", command)
		}
		note, ok := NameToNote(args[0])
		if !ok {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("note %q: %w", args[0], errUnknownValue)
			}
			note = n
		}
		s.noteOn(note)
	case "note_off":
		s.noteOff()
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	return nil
}

func (a *Audio) applyPreset(name string) error {
	if a.presets == nil {
		return errors.New("no preset directory")
	}
	data, err := a.presets.load(name)
	if err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}
	a.withState(func(s *state) {
		s.params.applyJSON(data)
		s.synth.applyParams(s.params)
	})
	return nil
}

// Close stops the command goroutine.
func (a *Audio) Close() error {
	a.closeOnce.Do(func() {
		log.Println("Closing Audio...")
		close(a.CommandCh)
	})
	return nil
}

// Start plays the synth on the default output device until ctx is done.
func (a *Audio) Start(ctx context.Context) error {
	sampleRate := a.SampleRate()
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return err
	}
	a.setDeviceSampleRate(sampleRate)
	defer func() {
		a.setDeviceSampleRate(0)
		if err := otoContext.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	p := otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	a.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

func (a *Audio) deviceSampleRate() int {
	a.deviceMu.Lock()
	defer a.deviceMu.Unlock()
	return a.deviceSR
}

func (a *Audio) setDeviceSampleRate(sampleRate int) {
	a.deviceMu.Lock()
	defer a.deviceMu.Unlock()
	a.deviceSR = sampleRate
}

// GetFFT returns the magnitude spectrum of the last fftSize rendered samples.
// Each call returns a new slice.
func (a *Audio) GetFFT() []float64 {
	result := make([]float64, fftSize)
	a.withState(func(s *state) {
		// out:    | 4 | 1 | 2 | 3 |
		// offset:     ^
		// result: | 1 | 2 | 3 | 4 |
		offset := int(s.pos % fftSize)
		for i := range result {
			result[i] = float64(s.out[(offset+i)%fftSize])
		}
	})
	Hann(result)
	fftMu.Lock()
	fft.CalcAbs(result)
	fftMu.Unlock()
	for i, value := range result {
		result[i] = value * 2 / fftSize
	}
	return result[:fftSize/2]
}

// AddMidiEvent handles raw note-on/note-off messages. A note-off only
// releases the note that is currently sounding.
func (a *Audio) AddMidiEvent(data []byte) {
	if len(data) < 3 {
		return
	}
	a.withState(func(s *state) {
		status := data[0] >> 4
		note := int(data[1])
		if status == 8 || status == 9 && data[2] == 0 {
			log.Printf("got note-off: %v\n", data)
			if note == s.note {
				s.noteOff()
			}
		} else if status == 9 && data[2] > 0 {
			log.Printf("got note-on: %v\n", data)
			s.noteOn(note)
		}
	})
}
