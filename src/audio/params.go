package audio

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
)

// ----- Modulation Params ----- //

type modParams struct {
	mode  int
	freq  float64 // Hz
	index float64 // depth (AM) or Hz (FM)
}
type modJSON struct {
	Mode  string  `json:"mode"`
	Freq  float64 `json:"freq"`
	Index float64 `json:"index"`
}

func (m *modParams) applyJSON(data json.RawMessage) {
	var j modJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to modParams")
		return
	}
	mode, ok := modulationFromString(j.Mode)
	if !ok {
		log.Printf("unknown modulation %q, using none\n", j.Mode)
	}
	m.mode = mode
	m.freq = j.Freq
	m.index = j.Index
}
func (m *modParams) toJSON() json.RawMessage {
	return toRawMessage(&modJSON{
		Mode:  modulationToString(m.mode),
		Freq:  m.freq,
		Index: m.index,
	})
}
func (m *modParams) set(key string, value string) error {
	switch key {
	case "mode":
		mode, ok := modulationFromString(value)
		if !ok {
			return fmt.Errorf("modulation %q: %w", value, errUnknownValue)
		}
		m.mode = mode
	case "freq":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		m.freq = v
	case "index":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		m.index = v
	default:
		return errUnknownKey
	}
	return nil
}

// ----- Params ----- //

type params struct {
	wave       int
	modParams  *modParams
	adsrParams *adsrParams
}

func newParams() *params {
	return &params{
		wave:       waveSine,
		modParams:  &modParams{mode: modNone},
		adsrParams: &adsrParams{attack: 10, decay: 100, sustain: 0.8, release: 300},
	}
}

type paramsJSON struct {
	Wave       string          `json:"wave"`
	Modulation json.RawMessage `json:"modulation"`
	Adsr       json.RawMessage `json:"adsr"`
}

func (p *params) applyJSON(data json.RawMessage) {
	var j paramsJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println(err)
		log.Println("failed to apply JSON to params")
		return
	}
	wave, ok := waveKindFromString(j.Wave)
	if !ok {
		log.Printf("unknown wave %q, using sine\n", j.Wave)
	}
	p.wave = wave
	if j.Modulation != nil {
		p.modParams.applyJSON(j.Modulation)
	}
	if j.Adsr != nil {
		p.adsrParams.applyJSON(j.Adsr)
	}
}
func (p *params) toJSON() json.RawMessage {
	return toRawMessage(&paramsJSON{
		Wave:       waveKindToString(p.wave),
		Modulation: p.modParams.toJSON(),
		Adsr:       p.adsrParams.toJSON(),
	})
}
