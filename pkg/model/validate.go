package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

var (
	// ErrOverlappingNotes is wrapped by CheckNoteOverlaps.
	ErrOverlappingNotes = errors.New("overlapping notes")
	// ErrEmptyNote is returned for notes with non-positive length.
	ErrEmptyNote = errors.New("note has no length")
)

// NormalizeTempos returns a tempo list that is non-empty, sorted by position,
// free of duplicate positions (the last entry wins) and starts at tick 0. A
// missing leading entry takes the first declared bpm.
func NormalizeTempos(tempos []SongTempo) []SongTempo {
	valid := make([]SongTempo, 0, len(tempos)+1)
	for _, t := range tempos {
		if t.BPM > 0 && t.Position >= 0 {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return []SongTempo{{Position: 0, BPM: DefaultBPM}}
	}
	slices.SortStableFunc(valid, func(a, b SongTempo) int { return a.Position - b.Position })
	out := valid[:0]
	for _, t := range valid {
		if n := len(out); n > 0 && out[n-1].Position == t.Position {
			out[n-1] = t
			continue
		}
		out = append(out, t)
	}
	if out[0].Position != 0 {
		out = slices.Insert(out, 0, SongTempo{Position: 0, BPM: out[0].BPM})
	}
	return out
}

// NormalizeTimeSignatures returns a sorted, de-duplicated meter list starting
// at bar 0, defaulting to 4/4.
func NormalizeTimeSignatures(signatures []TimeSignature) []TimeSignature {
	valid := make([]TimeSignature, 0, len(signatures)+1)
	for _, ts := range signatures {
		if ts.Numerator > 0 && ts.Denominator > 0 && ts.BarIndex >= 0 {
			valid = append(valid, ts)
		}
	}
	slices.SortStableFunc(valid, func(a, b TimeSignature) int { return a.BarIndex - b.BarIndex })
	out := valid[:0]
	for _, ts := range valid {
		if n := len(out); n > 0 && out[n-1].BarIndex == ts.BarIndex {
			out[n-1] = ts
			continue
		}
		out = append(out, ts)
	}
	if len(out) == 0 || out[0].BarIndex != 0 {
		out = slices.Insert(out, 0, TimeSignature{BarIndex: 0, Numerator: 4, Denominator: 4})
	}
	return out
}

// Normalize applies the tempo and meter defaults and sorts every note list.
func (p *Project) Normalize() {
	p.SongTempoList = NormalizeTempos(p.SongTempoList)
	p.TimeSignatureList = NormalizeTimeSignatures(p.TimeSignatureList)
	for i := range p.TrackList {
		slices.SortStableFunc(p.TrackList[i].NoteList, func(a, b Note) int { return a.StartPos - b.StartPos })
	}
}

// CheckNoteOverlaps scans every singing track and fails on the first note
// that is empty or overlaps an earlier one. The error names the track.
func CheckNoteOverlaps(p *Project) error {
	for i := range p.TrackList {
		track := &p.TrackList[i]
		if !track.IsSinging() {
			continue
		}
		notes := slices.Clone(track.NoteList)
		slices.SortStableFunc(notes, func(a, b Note) int { return a.StartPos - b.StartPos })
		var covered RangeInterval
		for _, note := range notes {
			if note.Length <= 0 {
				return fault.Wrap(ErrEmptyNote,
					fmsg.WithDesc(
						fmt.Sprintf("track %d (%q): note at tick %d has length %d", i, track.Title, note.StartPos, note.Length),
						fmt.Sprintf("Track %q has an empty note at tick %d", track.Title, note.StartPos)),
					ftag.With(ftag.InvalidArgument))
			}
			if covered.Overlaps(note.StartPos, note.EndPos()) {
				return fault.Wrap(ErrOverlappingNotes,
					fmsg.WithDesc(
						fmt.Sprintf("track %d (%q): note [%d, %d) overlaps a previous note", i, track.Title, note.StartPos, note.EndPos()),
						fmt.Sprintf("Track %q has overlapping notes at tick %d", track.Title, note.StartPos)),
					ftag.With(ftag.InvalidArgument))
			}
			covered.Add(note.StartPos, note.EndPos())
		}
	}
	return nil
}
