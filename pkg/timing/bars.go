package timing

import "github.com/james-see/svsbridge/pkg/model"

// DefaultBarTicks is one 4/4 bar at the given resolution.
func DefaultBarTicks(ticksPerBeat int) int {
	return 4 * ticksPerBeat
}

// BarTicks is the length of one bar of ts at the given resolution.
func BarTicks(ts model.TimeSignature, ticksPerBeat int) int {
	if ts.Numerator <= 0 || ts.Denominator <= 0 {
		return DefaultBarTicks(ticksPerBeat)
	}
	return 4 * ticksPerBeat * ts.Numerator / ts.Denominator
}

// FirstBarTicks is the length of bar 0.
func FirstBarTicks(signatures []model.TimeSignature, ticksPerBeat int) int {
	return BarTicks(model.NormalizeTimeSignatures(signatures)[0], ticksPerBeat)
}

// BarToTick returns the tick at which bar starts.
func BarToTick(signatures []model.TimeSignature, bar, ticksPerBeat int) int {
	sigs := model.NormalizeTimeSignatures(signatures)
	tick := 0
	for i, ts := range sigs {
		if bar <= ts.BarIndex {
			break
		}
		until := bar
		if i+1 < len(sigs) && sigs[i+1].BarIndex < bar {
			until = sigs[i+1].BarIndex
		}
		tick += (until - ts.BarIndex) * BarTicks(ts, ticksPerBeat)
	}
	return tick
}

// TickToBar returns the bar containing tick and the tick offset inside it.
func TickToBar(signatures []model.TimeSignature, tick, ticksPerBeat int) (bar, offset int) {
	sigs := model.NormalizeTimeSignatures(signatures)
	start := 0
	for i, ts := range sigs {
		length := BarTicks(ts, ticksPerBeat)
		if i+1 < len(sigs) {
			next := start + (sigs[i+1].BarIndex-ts.BarIndex)*length
			if tick >= next {
				start = next
				continue
			}
		}
		n := (tick - start) / length
		return ts.BarIndex + n, tick - start - n*length
	}
	return 0, tick
}
