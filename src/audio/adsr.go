package audio

import (
	"encoding/json"
	"log"
	"strconv"
)

// ----- ADSR Params ----- //

type adsrParams struct {
	attack  float64 // ms
	decay   float64 // ms
	sustain float64 // 0-1
	release float64 // ms
}
type adsrJSON struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

func (a *adsrParams) applyJSON(data json.RawMessage) {
	var j adsrJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to adsrParams")
		return
	}
	a.attack = j.Attack
	a.decay = j.Decay
	a.sustain = j.Sustain
	a.release = j.Release
}
func (a *adsrParams) toJSON() json.RawMessage {
	return toRawMessage(&adsrJSON{
		Attack:  a.attack,
		Decay:   a.decay,
		Sustain: a.sustain,
		Release: a.release,
	})
}
func (a *adsrParams) set(key string, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "attack":
		a.attack = v
	case "decay":
		a.decay = v
	case "sustain":
		a.sustain = v
	case "release":
		a.release = v
	default:
		return errUnknownKey
	}
	return nil
}

// ----- ADSR ----- //

/*
  1 +     x
    |    / \
    |   /   \
  s +  /     x-------x
    | /               \
    |/                 \
  0 +-----+---+-------+---
    |a    |d  |       |r |
*/

// adsrStage is one of adsrIdle, adsrAttack, adsrDecay, adsrSustain and
// adsrRelease.
type adsrStage interface {
	stageName() string
}

type adsrIdle struct{}
type adsrAttack struct{}
type adsrDecay struct{}
type adsrSustain struct{}
type adsrRelease struct {
	decrement float64 // per sample, fixed when the stage is entered
}

func (adsrIdle) stageName() string    { return "idle" }
func (adsrAttack) stageName() string  { return "attack" }
func (adsrDecay) stageName() string   { return "decay" }
func (adsrSustain) stageName() string { return "sustain" }
func (adsrRelease) stageName() string { return "release" }

type adsr struct {
	sampleRate float64
	sustain    float64 // 0-1
	release    float64 // sec
	attackInc  float64
	decayDec   float64
	stage      adsrStage
	level      float64 // 0-1
}

// newADSR takes times in seconds.
func newADSR(sampleRate, attack, decay, sustain, release float64) *adsr {
	a := &adsr{
		sampleRate: sampleRate,
		stage:      adsrIdle{},
	}
	a.setTimes(attack, decay, sustain, release)
	return a
}

func newADSRFromParams(sampleRate float64, p *adsrParams) *adsr {
	return newADSR(sampleRate, p.attack/1000, p.decay/1000, p.sustain, p.release/1000)
}

func (a *adsr) setTimes(attack, decay, sustain, release float64) {
	if sustain < 0 {
		sustain = 0
	} else if sustain > 1 {
		sustain = 1
	}
	a.sustain = sustain
	a.release = release
	if attack > 0 {
		a.attackInc = 1 / (attack * a.sampleRate)
	} else {
		a.attackInc = 1
	}
	if decay > 0 {
		a.decayDec = (1 - sustain) / (decay * a.sampleRate)
	} else {
		a.decayDec = 1 - sustain
	}
}

// setParams changes the rates for the following samples. The current stage
// and level are kept.
func (a *adsr) setParams(p *adsrParams) {
	a.setTimes(p.attack/1000, p.decay/1000, p.sustain, p.release/1000)
}

func (a *adsr) noteOn() {
	a.stage = adsrAttack{}
	a.level = 0
}

func (a *adsr) noteOff() {
	switch a.stage.(type) {
	case adsrIdle, adsrRelease:
		return
	}
	decrement := a.level
	if a.release > 0 {
		decrement = a.level / (a.release * a.sampleRate)
	}
	a.stage = adsrRelease{decrement: decrement}
}

// step advances exactly one sample and returns the new level.
func (a *adsr) step() float64 {
	switch s := a.stage.(type) {
	case adsrAttack:
		a.level += a.attackInc
		if a.level >= 1 {
			a.level = 1
			a.stage = adsrDecay{}
		}
	case adsrDecay:
		a.level -= a.decayDec
		if a.level <= a.sustain {
			a.level = a.sustain
			a.stage = adsrSustain{}
		}
	case adsrSustain:
		a.level = a.sustain
	case adsrRelease:
		a.level -= s.decrement
		if a.level <= 0 {
			a.level = 0
			a.stage = adsrIdle{}
		}
	default:
		a.level = 0
	}
	return a.level
}

func (a *adsr) idle() bool {
	_, ok := a.stage.(adsrIdle)
	return ok
}

func (a *adsr) value() float64 {
	return a.level
}
