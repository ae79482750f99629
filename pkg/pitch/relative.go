// Package pitch converts between note-relative pitch deviations and the
// canonical absolute pitch curve.
package pitch

import (
	"slices"

	"github.com/james-see/svsbridge/pkg/bisect"
	"github.com/james-see/svsbridge/pkg/model"
)

// NoteIndexAt returns the index of the note sounding at tick, or -1. Notes
// must be sorted and must not overlap. Notes are half-open, so a tick shared
// by the end of one note and the start of the next belongs to the next.
func NoteIndexAt(notes []model.Note, tick int) int {
	i := bisect.FloorFunc(notes, tick, func(n model.Note) int { return n.StartPos })
	if i < 0 || tick >= notes[i].EndPos() {
		return -1
	}
	return i
}

// ToAbsolute turns samples of cents relative to the sounding note into an
// absolute pitch curve in semicents. Samples outside every note are dropped.
// Each time the owning note changes, a pair of sentinels closes the previous
// run at its last sample and reopens at the new note's start, so consumers
// never interpolate across a note boundary.
func ToAbsolute(relative []model.Point, notes []model.Note) model.ParamCurve {
	points := slices.Clone(relative)
	slices.SortStableFunc(points, func(a, b model.Point) int { return a.X - b.X })

	out := make([]model.Point, 0, len(points)+4)
	out = append(out, model.StartPoint(model.PitchSentinel))
	owner := -1
	for _, p := range points {
		idx := NoteIndexAt(notes, p.X)
		if idx < 0 {
			continue
		}
		note := notes[idx]
		if idx != owner {
			if owner >= 0 {
				lastX := out[len(out)-1].X
				resume := min(max(note.StartPos, lastX), p.X)
				out = append(out,
					model.PitchPoint(lastX, model.Silent()),
					model.PitchPoint(resume, model.Silent()))
			}
			owner = idx
		}
		out = append(out, model.PitchPoint(p.X, model.Voiced(note.KeyNumber*100+p.Y)))
	}
	if owner >= 0 {
		out = append(out, model.PitchPoint(out[len(out)-1].X, model.Silent()))
	}
	out = append(out, model.EndPoint(model.PitchSentinel))
	return model.ParamCurve{Points: out}
}

// ToRelative is the inverse of ToAbsolute: voiced points inside a note become
// cents relative to that note's key.
func ToRelative(curve model.ParamCurve, notes []model.Note) []model.Point {
	var out []model.Point
	for _, p := range curve.Inner() {
		semicent, voiced := model.PitchOf(p.Y).Unpack()
		if !voiced {
			continue
		}
		idx := NoteIndexAt(notes, p.X)
		if idx < 0 {
			continue
		}
		out = append(out, model.Point{X: p.X, Y: semicent - notes[idx].KeyNumber*100})
	}
	return out
}
