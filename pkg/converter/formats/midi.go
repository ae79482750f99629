package formats

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/text/encoding"

	"github.com/james-see/svsbridge/pkg/bisect"
	"github.com/james-see/svsbridge/pkg/converter"
	"github.com/james-see/svsbridge/pkg/model"
	"github.com/james-see/svsbridge/pkg/pitch"
	"github.com/james-see/svsbridge/pkg/timing"
)

const (
	midiSource = "midi"

	ccRPNMSB      = 101
	ccRPNLSB      = 100
	ccDataEntry   = 6
	ccDataEntryLS = 38

	bendRange = 8192
)

// MIDIOptions configures the Standard MIDI File adapter
type MIDIOptions struct {
	// PitchBendSensitivity is the bend range in semitones assumed until an
	// RPN 0 message changes it. It is also written on export.
	PitchBendSensitivity int
	LyricEncoding        string
	ImportPitch          bool
	ExportPitch          bool
	// DefaultLyric is given to notes without a lyric event.
	DefaultLyric string
}

// DefaultMIDIOptions returns the options used when nothing is configured
func DefaultMIDIOptions() MIDIOptions {
	return MIDIOptions{
		PitchBendSensitivity: 2,
		LyricEncoding:        EncodingUTF8,
		ImportPitch:          true,
		ExportPitch:          true,
		DefaultLyric:         "la",
	}
}

// MIDI reads and writes Standard MIDI Files. Every track holding notes
// becomes a singing track; lyric meta events name the notes and pitch bends
// become the pitch curve.
type MIDI struct {
	opts MIDIOptions
}

// NewMIDI creates a MIDI plugin
func NewMIDI(opts MIDIOptions) *MIDI {
	if opts.PitchBendSensitivity <= 0 {
		opts.PitchBendSensitivity = 2
	}
	if opts.DefaultLyric == "" {
		opts.DefaultLyric = "la"
	}
	return &MIDI{opts: opts}
}

func (m *MIDI) Name() string             { return "Standard MIDI File" }
func (m *MIDI) Format() converter.Format { return converter.FormatMIDI }
func (m *MIDI) Extensions() []string     { return []string{".mid", ".midi"} }

type meterEvent struct {
	tick        int
	numerator   int
	denominator int
}

type bendEvent struct {
	tick  int
	cents int
}

type trackData struct {
	name   string
	tempos []model.SongTempo
	meters []meterEvent
	notes  []model.Note
	bends  []bendEvent
}

// Load parses MIDI data into a project
func (m *MIDI) Load(data []byte, w *model.Warnings) (*model.Project, error) {
	enc, err := LookupEncoding(m.opts.LyricEncoding)
	if err != nil {
		return nil, err
	}

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks.Resolution() == 0 {
		return nil, errors.New("only metric MIDI time formats are supported")
	}
	scale := float64(model.TicksPerBeat) / float64(ticks.Resolution())
	toTick := func(abs int64) int {
		return int(math.Round(float64(abs) * scale))
	}

	project := &model.Project{}
	var meters []meterEvent
	for i, track := range s.Tracks {
		td := m.readTrack(track, toTick, enc, w)
		project.SongTempoList = append(project.SongTempoList, td.tempos...)
		meters = append(meters, td.meters...)
		if len(td.notes) == 0 {
			continue
		}

		title := td.name
		if title == "" {
			title = fmt.Sprintf("Track %d", i+1)
		}
		t := model.NewSingingTrack(title)
		t.NoteList = repairOverlaps(td.notes, title, w)
		if m.opts.ImportPitch && len(td.bends) > 0 {
			t.EditedParams.Pitch = pitch.ToAbsolute(bendPoints(td.bends, t.NoteList), t.NoteList)
		}
		project.TrackList = append(project.TrackList, t)
	}
	project.TimeSignatureList = meterSignatures(meters, w)

	return project, nil
}

// rpnState follows RPN selection per channel to catch pitch bend range changes.
type rpnState struct {
	msb, lsb    uint8
	sensitivity int
}

func (r *rpnState) control(controller, value uint8) {
	switch controller {
	case ccRPNMSB:
		r.msb = value
	case ccRPNLSB:
		r.lsb = value
	case ccDataEntry:
		if r.msb == 0 && r.lsb == 0 {
			r.sensitivity = int(value)
		}
	}
}

func (m *MIDI) readTrack(track smf.Track, toTick func(int64) int, enc encoding.Encoding, w *model.Warnings) trackData {
	var td trackData
	var abs int64
	var lastTick int

	type held struct{ channel, key uint8 }
	open := make(map[held]model.Note)
	lyrics := make(map[int]string)
	rpn := make(map[uint8]*rpnState)
	channelState := func(ch uint8) *rpnState {
		st, ok := rpn[ch]
		if !ok {
			st = &rpnState{msb: 127, lsb: 127, sensitivity: m.opts.PitchBendSensitivity}
			rpn[ch] = st
		}
		return st
	}
	closeNote := func(k held, tick int) {
		n, ok := open[k]
		if !ok {
			return
		}
		delete(open, k)
		n.Length = tick - n.StartPos
		if n.Length <= 0 {
			w.Add(midiSource, "dropped empty note %d at tick %d", n.KeyNumber, n.StartPos)
			return
		}
		td.notes = append(td.notes, n)
	}

	for _, ev := range track {
		abs += int64(ev.Delta)
		tick := toTick(abs)
		lastTick = tick

		var (
			ch, key, vel, controller, value uint8
			num, denom, cpt, dsqpq         uint8
			bpm                            float64
			text                           string
			rel                            int16
			absBend                        uint16
		)
		msg := ev.Message
		channelMsg := midi.Message(msg)

		switch {
		case msg.GetMetaTempo(&bpm):
			td.tempos = append(td.tempos, model.SongTempo{Position: tick, BPM: bpm})
		case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
			td.meters = append(td.meters, meterEvent{tick: tick, numerator: int(num), denominator: int(denom)})
		case msg.GetMetaTrackName(&text):
			td.name = m.decode(enc, text, w)
		case msg.GetMetaLyric(&text):
			lyrics[tick] = m.decode(enc, text, w)
		case channelMsg.GetNoteStart(&ch, &key, &vel):
			k := held{ch, key}
			closeNote(k, tick)
			open[k] = model.Note{StartPos: tick, KeyNumber: int(key)}
		case channelMsg.GetNoteEnd(&ch, &key):
			closeNote(held{ch, key}, tick)
		case channelMsg.GetControlChange(&ch, &controller, &value):
			channelState(ch).control(controller, value)
		case channelMsg.GetPitchBend(&ch, &rel, &absBend):
			sens := channelState(ch).sensitivity
			cents := int(math.Round(float64(rel) / bendRange * float64(sens) * 100))
			td.bends = append(td.bends, bendEvent{tick: tick, cents: cents})
		}
	}

	for k, n := range open {
		w.Add(midiSource, "note %d at tick %d was never released", n.KeyNumber, n.StartPos)
		closeNote(k, lastTick)
	}

	slices.SortStableFunc(td.notes, func(a, b model.Note) int { return a.StartPos - b.StartPos })
	for i := range td.notes {
		if lyric, ok := lyrics[td.notes[i].StartPos]; ok && lyric != "" {
			td.notes[i].Lyric = lyric
		} else {
			td.notes[i].Lyric = m.opts.DefaultLyric
		}
	}
	return td
}

func (m *MIDI) decode(enc encoding.Encoding, raw string, w *model.Warnings) string {
	s, err := decodeText(enc, raw)
	if err != nil {
		w.Add(midiSource, "could not decode text %q as %s: %v", raw, m.opts.LyricEncoding, err)
		return raw
	}
	return s
}

// repairOverlaps trims each note that is still sounding when the next one
// starts. MIDI allows overlaps; the canonical model does not.
func repairOverlaps(notes []model.Note, title string, w *model.Warnings) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if k := len(out); k > 0 && n.StartPos < out[k-1].EndPos() {
			prev := &out[k-1]
			if n.StartPos > prev.StartPos {
				w.Add(midiSource, "track %q: note at tick %d trimmed to end where the next one starts", title, prev.StartPos)
				prev.Length = n.StartPos - prev.StartPos
			} else {
				w.Add(midiSource, "track %q: dropped note at tick %d starting together with another", title, prev.StartPos)
				out = out[:k-1]
			}
		}
		out = append(out, n)
	}
	return out
}

// bendPoints samples the held bend value at every note start and keeps
// each bend change inside a note.
func bendPoints(bends []bendEvent, notes []model.Note) []model.Point {
	tickOf := func(b bendEvent) int { return b.tick }
	var out []model.Point
	for _, n := range notes {
		heldCents := 0
		if i := bisect.FloorFunc(bends, n.StartPos, tickOf); i >= 0 {
			heldCents = bends[i].cents
		}
		out = append(out, model.Point{X: n.StartPos, Y: heldCents})
		for i := bisect.CeilFunc(bends, n.StartPos+1, tickOf); i < len(bends) && bends[i].tick < n.EndPos(); i++ {
			out = append(out, model.Point{X: bends[i].tick, Y: bends[i].cents})
		}
	}
	return out
}

// meterSignatures places each meter change on the bar it falls in. A meter
// change in the middle of a bar moves to the next bar line.
func meterSignatures(meters []meterEvent, w *model.Warnings) []model.TimeSignature {
	slices.SortStableFunc(meters, func(a, b meterEvent) int { return a.tick - b.tick })
	var sigs []model.TimeSignature
	for _, ev := range meters {
		if ev.numerator <= 0 || ev.denominator <= 0 {
			continue
		}
		bar, offset := timing.TickToBar(sigs, ev.tick, model.TicksPerBeat)
		if offset != 0 {
			w.Add(midiSource, "meter %d/%d at tick %d is not on a bar line; moved to bar %d", ev.numerator, ev.denominator, ev.tick, bar+1)
			bar++
		}
		sigs = append(sigs, model.TimeSignature{BarIndex: bar, Numerator: ev.numerator, Denominator: ev.denominator})
		sigs = model.NormalizeTimeSignatures(sigs)
	}
	return sigs
}

const (
	prioNoteOff = iota
	prioMeta
	prioControl
	prioBend
	prioLyric
	prioNoteOn
)

type timedEvent struct {
	tick int
	prio int
	msg  []byte
}

// Dump writes project as a format 1 Standard MIDI File: a conductor track
// followed by one track per singing track.
func (m *MIDI) Dump(project *model.Project, w *model.Warnings) ([]byte, error) {
	if project == nil {
		return nil, errors.New("nil project")
	}
	enc, err := LookupEncoding(m.opts.LyricEncoding)
	if err != nil {
		return nil, err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(model.TicksPerBeat)

	var conductor []timedEvent
	for _, t := range model.NormalizeTempos(project.SongTempoList) {
		conductor = append(conductor, timedEvent{t.Position, prioMeta, smf.MetaTempo(t.BPM)})
	}
	sigs := model.NormalizeTimeSignatures(project.TimeSignatureList)
	for _, ts := range sigs {
		tick := timing.BarToTick(sigs, ts.BarIndex, model.TicksPerBeat)
		conductor = append(conductor, timedEvent{tick, prioMeta, smf.MetaTimeSig(uint8(ts.Numerator), uint8(ts.Denominator), 24, 8)})
	}
	if err := s.Add(buildTrack(conductor)); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	n := 0
	for i := range project.TrackList {
		t := &project.TrackList[i]
		if !t.IsSinging() {
			w.Add(midiSource, "track %q: audio tracks cannot be stored in MIDI and were skipped", t.Title)
			continue
		}
		events := m.singingEvents(t, uint8(n%16), enc, w)
		if err := s.Add(buildTrack(events)); err != nil {
			return nil, fmt.Errorf("failed to add track: %w", err)
		}
		n++
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *MIDI) singingEvents(t *model.Track, ch uint8, enc encoding.Encoding, w *model.Warnings) []timedEvent {
	var events []timedEvent
	events = append(events, timedEvent{0, prioMeta, smf.MetaTrackSequenceName(m.encode(enc, t.Title, w))})

	sens := m.opts.PitchBendSensitivity
	events = append(events,
		timedEvent{0, prioControl, midi.ControlChange(ch, ccRPNMSB, 0)},
		timedEvent{0, prioControl, midi.ControlChange(ch, ccRPNLSB, 0)},
		timedEvent{0, prioControl, midi.ControlChange(ch, ccDataEntry, uint8(sens))},
		timedEvent{0, prioControl, midi.ControlChange(ch, ccDataEntryLS, 0)},
	)

	skipped := 0
	for _, n := range t.NoteList {
		if n.StartPos < 0 || n.KeyNumber < 0 || n.KeyNumber > 127 {
			skipped++
			continue
		}
		key := uint8(n.KeyNumber)
		if n.Lyric != "" {
			events = append(events, timedEvent{n.StartPos, prioLyric, smf.MetaLyric(m.encode(enc, n.Lyric, w))})
		}
		events = append(events,
			timedEvent{n.StartPos, prioNoteOn, midi.NoteOn(ch, key, 100)},
			timedEvent{n.EndPos(), prioNoteOff, midi.NoteOff(ch, key)})
	}
	if skipped > 0 {
		w.Add(midiSource, "track %q: skipped %d notes outside the MIDI range", t.Title, skipped)
	}

	if m.opts.ExportPitch && t.EditedParams.Pitch.Len() > 0 {
		events = append(events, m.bendEvents(t, ch, w)...)
	}
	return events
}

// bendEvents writes the pitch curve as bends relative to the sounding note.
// The bend is reset at the end of each bent note.
func (m *MIDI) bendEvents(t *model.Track, ch uint8, w *model.Warnings) []timedEvent {
	var events []timedEvent
	scale := bendRange / (float64(m.opts.PitchBendSensitivity) * 100)
	current := int16(0)
	clamped := false
	emit := func(tick int, value int16) {
		if tick < 0 || value == current {
			return
		}
		current = value
		events = append(events, timedEvent{tick, prioBend, midi.Pitchbend(ch, value)})
	}

	relative := pitch.ToRelative(t.EditedParams.Pitch, t.NoteList)
	owner := -1
	for _, p := range relative {
		idx := pitch.NoteIndexAt(t.NoteList, p.X)
		if idx != owner && owner >= 0 {
			emit(t.NoteList[owner].EndPos(), 0)
		}
		owner = idx
		v := math.Round(float64(p.Y) * scale)
		if v < -bendRange || v > bendRange-1 {
			clamped = true
			v = max(-bendRange, min(bendRange-1, v))
		}
		emit(p.X, int16(v))
	}
	if owner >= 0 {
		emit(t.NoteList[owner].EndPos(), 0)
	}
	if clamped {
		w.Add(midiSource, "track %q: pitch deviations beyond ±%d semitones were clamped", t.Title, m.opts.PitchBendSensitivity)
	}
	return events
}

func (m *MIDI) encode(enc encoding.Encoding, s string, w *model.Warnings) string {
	raw, err := encodeText(enc, s)
	if err != nil {
		w.Add(midiSource, "could not encode %q as %s: %v", s, m.opts.LyricEncoding, err)
		return s
	}
	return raw
}

// buildTrack orders events by tick and priority and turns them into delta
// times.
func buildTrack(events []timedEvent) smf.Track {
	slices.SortStableFunc(events, func(a, b timedEvent) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		return cmp.Compare(a.prio, b.prio)
	})

	var track smf.Track
	last := 0
	for _, e := range events {
		track.Add(uint32(e.tick-last), e.msg)
		last = e.tick
	}
	track.Close(0)
	return track
}
