package sparse

import (
	"math"
	"slices"

	"github.com/james-see/svsbridge/pkg/model"
	"github.com/james-see/svsbridge/pkg/pitch"
	"github.com/james-see/svsbridge/pkg/timing"
)

// Event is one entry of a stored stream.
type Event struct {
	Index  Optional[int]     `json:"index"`
	Repeat Optional[int]     `json:"repeat"`
	Value  Optional[float64] `json:"value"`
}

// Run is an event with its position resolved, in engine frames. A run with
// an absent value is silence.
type Run struct {
	Index  int
	Repeat int
	Value  Optional[float64]
	// Restart marks a run that follows silence in the source curve; the
	// encoder never merges it into its predecessor.
	Restart bool
}

// TickRun is a run converted to canonical ticks.
type TickRun struct {
	Tick    int
	Length  int
	Value   Optional[float64]
	Restart bool
}

// Codec converts streams of one engine under one engine tempo table.
type Codec struct {
	engine    Engine
	sync      *timing.Synchronizer
	tickScale float64
}

// NewCodec returns a codec for engine. tempos are positioned in the engine's
// own ticks (Engine.TempoTicksPerBeat).
func NewCodec(engine Engine, tempos []model.SongTempo) *Codec {
	if engine.TempoTicksPerBeat <= 0 {
		engine.TempoTicksPerBeat = model.TicksPerBeat
	}
	return &Codec{
		engine:    engine,
		sync:      timing.NewSynchronizer(tempos, engine.TempoTicksPerBeat),
		tickScale: float64(model.TicksPerBeat) / float64(engine.TempoTicksPerBeat),
	}
}

// Engine returns the engine the codec was built for.
func (c *Codec) Engine() Engine {
	return c.engine
}

// Decode runs the full decode pipeline: gap-fill, tick normalization,
// shaping, and curve construction. Samples whose value has no pitch are
// dropped with a warning.
func (c *Codec) Decode(events []Event, w *model.Warnings) model.ParamCurve {
	return c.ToCurve(Shape(c.NormalizeToTick(GapFill(events))), w)
}

// Encode turns an absolute pitch curve into a compact stream.
func (c *Codec) Encode(curve model.ParamCurve) []Event {
	return Compress(c.NormalizeToFrame(c.FromCurve(curve)))
}

// GapFill resolves every event to an explicit index and repeat and inserts a
// silent run wherever the stream jumps forward. An event that starts before
// the end of earlier runs truncates them. An absent value carries the
// previous event's value.
func GapFill(events []Event) []Run {
	runs := make([]Run, 0, len(events))
	cursor := 0
	var carried Optional[float64]
	for i, e := range events {
		index := e.Index.Or(cursor)
		repeat := e.Repeat.Or(1)
		value := e.Value
		if !value.Exists() {
			value = carried
		}
		for len(runs) > 0 && runs[len(runs)-1].Index >= index {
			runs = runs[:len(runs)-1]
		}
		if n := len(runs); n > 0 && runs[n-1].Index+runs[n-1].Repeat > index {
			runs[n-1].Repeat = index - runs[n-1].Index
		}
		if i > 0 && index > cursor {
			runs = append(runs, Run{Index: cursor, Repeat: index - cursor})
		}
		runs = append(runs, Run{Index: index, Repeat: repeat, Value: value})
		cursor = index + max(repeat, 0)
		carried = value
	}
	return runs
}

// NormalizeToTick converts run positions from engine frames to canonical
// ticks through the engine tempo table. Adjacent runs share their boundary
// tick exactly.
func (c *Codec) NormalizeToTick(runs []Run) []TickRun {
	out := make([]TickRun, 0, len(runs))
	for _, r := range runs {
		start := c.frameToTick(r.Index)
		end := c.frameToTick(r.Index + r.Repeat)
		out = append(out, TickRun{Tick: start, Length: end - start, Value: r.Value, Restart: r.Restart})
	}
	return out
}

// Shape drops runs with no length and collapses runs landing on the same
// tick, keeping the last.
func Shape(runs []TickRun) []TickRun {
	sorted := slices.Clone(runs)
	slices.SortStableFunc(sorted, func(a, b TickRun) int { return a.Tick - b.Tick })
	out := sorted[:0]
	for _, r := range sorted {
		if r.Length <= 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Tick == r.Tick {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

// ToCurve maps runs to canonical points: one point per voiced run, a
// sentinel pair per silent run, and a closing sentinel after a voiced run
// that nothing follows directly. A run whose value has no pitch is reported
// to w and treated as silence.
func (c *Codec) ToCurve(runs []TickRun, w *model.Warnings) model.ParamCurve {
	out := make([]model.Point, 0, len(runs)+4)
	out = append(out, model.StartPoint(model.PitchSentinel))
	silence := func(x int) {
		if last := out[len(out)-1]; last.X == x && last.Y == model.PitchSentinel {
			return
		}
		out = append(out, model.PitchPoint(x, model.Silent()))
	}
	for i, r := range runs {
		end := r.Tick + r.Length
		value, ok := r.Value.Unpack()
		if !ok {
			silence(r.Tick)
			out = append(out, model.PitchPoint(end, model.Silent()))
			continue
		}
		semicent, err := c.engine.Transform.ToSemicent(value)
		if err != nil {
			w.Add(c.engine.Name, "dropped pitch sample at tick %d: %v", r.Tick, err)
			silence(r.Tick)
			out = append(out, model.PitchPoint(end, model.Silent()))
			continue
		}
		out = append(out, model.PitchPoint(r.Tick, model.Voiced(semicent)))
		if i+1 == len(runs) || runs[i+1].Tick != end {
			out = append(out, model.PitchPoint(end, model.Silent()))
		}
	}
	out = append(out, model.EndPoint(model.PitchSentinel))
	return model.ParamCurve{Points: out}
}

// FromCurve is the inverse of ToCurve: one run per voiced sample, spanning
// to the next point of the curve. Silence is left implicit.
func (c *Codec) FromCurve(curve model.ParamCurve) []TickRun {
	samples := pitch.Samples(curve)
	out := make([]TickRun, 0, len(samples))
	for _, s := range samples {
		out = append(out, TickRun{
			Tick:    s.Start,
			Length:  s.End - s.Start,
			Value:   Some(c.engine.Transform.FromSemicent(s.Semicent)),
			Restart: s.Restart,
		})
	}
	return out
}

// NormalizeToFrame converts tick runs back to engine frames. A run that
// rounds to no frames keeps one frame when the next run leaves room for it,
// and is dropped otherwise.
func (c *Codec) NormalizeToFrame(runs []TickRun) []Run {
	out := make([]Run, 0, len(runs))
	for i, r := range runs {
		index := c.tickToFrame(r.Tick)
		repeat := c.tickToFrame(r.Tick+r.Length) - index
		if repeat <= 0 {
			if i+1 < len(runs) && c.tickToFrame(runs[i+1].Tick) <= index {
				continue
			}
			repeat = 1
		}
		if n := len(out); n > 0 && out[n-1].Index+out[n-1].Repeat > index {
			out[n-1].Repeat = index - out[n-1].Index
			if out[n-1].Repeat <= 0 {
				out = out[:n-1]
			}
		}
		out = append(out, Run{Index: index, Repeat: repeat, Value: r.Value, Restart: r.Restart})
	}
	return out
}

// Compress removes redundancy from resolved runs: an index equal to the end
// of the previous run is left implicit, and a repeat of 1 is left implicit.
// Contiguous runs with equal values are merged into the first of them, but
// the last run of such a chain stays separate: the decoder ramps from its
// start to whatever follows. A run that restarts after silence is never
// merged.
func Compress(runs []Run) []Event {
	merged := make([]Run, 0, len(runs))
	for i, r := range runs {
		if n := len(merged); n > 0 && !r.Restart && holdsOn(runs, i) {
			last := &merged[n-1]
			if last.Index+last.Repeat == r.Index && last.Value == r.Value {
				last.Repeat += r.Repeat
				continue
			}
		}
		merged = append(merged, r)
	}

	events := make([]Event, 0, len(merged))
	cursor := 0
	for _, r := range merged {
		e := Event{Value: r.Value}
		if r.Index != cursor {
			e.Index = Some(r.Index)
		}
		if r.Repeat != 1 {
			e.Repeat = Some(r.Repeat)
		}
		events = append(events, e)
		cursor = r.Index + r.Repeat
	}
	return events
}

// holdsOn reports whether runs[i] is directly followed by a run with the same
// value, so the decoded curve needs no point at its start.
func holdsOn(runs []Run, i int) bool {
	if i+1 >= len(runs) {
		return false
	}
	r, next := runs[i], runs[i+1]
	return !next.Restart && r.Index+r.Repeat == next.Index && r.Value == next.Value
}

func (c *Codec) frameToTick(frame int) int {
	seconds := float64(frame) / c.engine.FramesPerSecond
	return int(math.Round(c.sync.SecondsToTicks(seconds) * c.tickScale))
}

func (c *Codec) tickToFrame(tick int) int {
	seconds := c.sync.TicksToSeconds(float64(tick) / c.tickScale)
	return int(math.Round(seconds * c.engine.FramesPerSecond))
}
