// Package sparse decodes and encodes the run-length pitch event streams that
// several synthesis engines persist instead of point curves.
//
// An event is (index?, repeat?, value?) in engine frames. A present index
// starts a new position, repeat is the number of frames the value holds for
// (default 1), and an absent field continues from the previous event. Each
// engine differs only in the resolution of its tempo table, the length of a
// frame and the unit of its values, so one Codec serves all of them through
// an Engine value.
package sparse

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrOutOfRange is returned by a ValueTransform for values that have no
// representable pitch.
var ErrOutOfRange = errors.New("pitch value out of range")

// ValueTransform converts between an engine's value unit and semicents.
type ValueTransform interface {
	ToSemicent(value float64) (int, error)
	FromSemicent(semicent int) float64
}

// Engine describes one engine family.
type Engine struct {
	Name string
	// TempoTicksPerBeat is the resolution of the engine's tempo table.
	TempoTicksPerBeat int
	// FramesPerSecond is the length of one event index step.
	FramesPerSecond float64
	Transform       ValueTransform
}

var (
	// CeVIO stores natural-log f0 in 5 ms frames; its tempo table uses 960
	// ticks per beat.
	CeVIO = Engine{Name: "cevio", TempoTicksPerBeat: 960, FramesPerSecond: 200, Transform: LogFrequency{}}
	// VoiSona stores natural-log f0 in 5 ms frames; its tempo table uses 1920
	// ticks per beat.
	VoiSona = Engine{Name: "voisona", TempoTicksPerBeat: 1920, FramesPerSecond: 200, Transform: LogFrequency{}}
)

// Engines lists the built-in engines.
var Engines = []Engine{CeVIO, VoiSona}

// EngineByName looks a built-in engine up, ignoring case.
func EngineByName(name string) (Engine, bool) {
	for _, e := range Engines {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Engine{}, false
}

// LogFrequency values are ln(Hz).
type LogFrequency struct{}

// ToSemicent returns round(hz_to_midi(e^value)*100).
func (LogFrequency) ToSemicent(value float64) (int, error) {
	hz := math.Exp(value)
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return 0, fmt.Errorf("%w: ln(f0)=%g", ErrOutOfRange, value)
	}
	semicent := math.Round(HzToMIDI(hz) * 100)
	if semicent > math.MaxInt32 || semicent < math.MinInt32 {
		return 0, fmt.Errorf("%w: ln(f0)=%g", ErrOutOfRange, value)
	}
	return int(semicent), nil
}

// FromSemicent returns ln(midi_to_hz(semicent/100)).
func (LogFrequency) FromSemicent(semicent int) float64 {
	return math.Log(MIDIToHz(float64(semicent) / 100))
}

// HzToMIDI converts a frequency to a fractional MIDI key (A4 = 69 = 440 Hz).
func HzToMIDI(hz float64) float64 {
	return 69 + 12*math.Log2(hz/440)
}

// MIDIToHz converts a fractional MIDI key to a frequency.
func MIDIToHz(key float64) float64 {
	return 440 * math.Exp2((key-69)/12)
}
