// Package timing converts between canonical ticks and wall-clock seconds under
// a piecewise-constant tempo map, and between ticks and bars under a meter map.
package timing

import (
	"fmt"
	"math"

	"github.com/james-see/svsbridge/pkg/bisect"
	"github.com/james-see/svsbridge/pkg/model"
)

// Synchronizer maps ticks to seconds and back. Each tempo entry opens a
// constant-rate segment that lasts until the next entry; the first segment
// also extends below tick 0 and the last one to infinity, so both directions
// are defined, strictly increasing and mutually inverse everywhere.
type Synchronizer struct {
	ticksPerBeat int
	tempos       []model.SongTempo
	positions    []int

	tickToSecond model.PiecewiseIntervalDict
	secondToTick model.PiecewiseIntervalDict
}

// NewSynchronizer builds a synchronizer from tempos expressed at the given
// resolution. The list is normalized first, so an empty list means a single
// DefaultBPM segment and a list not starting at tick 0 gets a leading segment
// at its first bpm.
func NewSynchronizer(tempos []model.SongTempo, ticksPerBeat int) *Synchronizer {
	if ticksPerBeat <= 0 {
		ticksPerBeat = model.TicksPerBeat
	}
	s := &Synchronizer{
		ticksPerBeat: ticksPerBeat,
		tempos:       model.NormalizeTempos(tempos),
	}
	s.positions = make([]int, len(s.tempos))

	second := 0.0
	for i, tempo := range s.tempos {
		s.positions[i] = tempo.Position
		tick0 := float64(tempo.Position)
		secondsPerTick := 60 / (tempo.BPM * float64(ticksPerBeat))

		tickFrom, secondFrom := tick0, second
		if i == 0 {
			tickFrom, secondFrom = math.Inf(-1), math.Inf(-1)
		}
		tickTo, secondTo := math.Inf(1), math.Inf(1)
		if i+1 < len(s.tempos) {
			tickTo = float64(s.tempos[i+1].Position)
			secondTo = second + (tickTo-tick0)*secondsPerTick
		}

		mustSet(&s.tickToSecond, tickFrom, tickTo, model.Linear(tick0, second, secondsPerTick))
		mustSet(&s.secondToTick, secondFrom, secondTo, model.Linear(second, tick0, 1/secondsPerTick))
		second = secondTo
	}
	return s
}

// mustSet panics on overlapping segments, which normalized tempos never produce.
func mustSet(d *model.PiecewiseIntervalDict, from, to float64, fn func(float64) float64) {
	if err := d.Set(from, to, fn); err != nil {
		panic(fmt.Sprintf("timing: %v", err))
	}
}

// TicksToSeconds returns the wall-clock time of tick.
func (s *Synchronizer) TicksToSeconds(tick float64) float64 {
	v, _ := s.tickToSecond.Get(tick)
	return v
}

// SecondsToTicks returns the (fractional) tick at the given time.
func (s *Synchronizer) SecondsToTicks(seconds float64) float64 {
	v, _ := s.secondToTick.Get(seconds)
	return v
}

// Duration returns the seconds elapsed between two ticks.
func (s *Synchronizer) Duration(startTick, endTick float64) float64 {
	return s.TicksToSeconds(endTick) - s.TicksToSeconds(startTick)
}

// TempoAt returns the tempo entry in effect at tick. A tick on a tempo change
// is governed by the new tempo.
func (s *Synchronizer) TempoAt(tick int) model.SongTempo {
	i := bisect.Floor(s.positions, tick)
	if i < 0 {
		i = 0
	}
	return s.tempos[i]
}

// Tempos returns the normalized tempo list.
func (s *Synchronizer) Tempos() []model.SongTempo {
	return s.tempos
}

// TicksPerBeat returns the resolution the synchronizer was built with.
func (s *Synchronizer) TicksPerBeat() int {
	return s.ticksPerBeat
}
