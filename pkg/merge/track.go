package merge

import (
	"slices"

	"github.com/james-see/svsbridge/pkg/bisect"
	"github.com/james-see/svsbridge/pkg/model"
)

// GuardTicks is how far an override window extends past the inserted notes
// when no existing note is closer.
const GuardTicks = 120

// Window is a tick range [Start, End] an override applies to.
type Window struct {
	Start int
	End   int
}

// TrackOverrideWith inserts newNotes into track and overrides every named
// curve of track with newParams around them.
//
// Mutually touching new notes form one group. Each group's window is the
// group extended by GuardTicks on both sides, or only up to the midpoint with
// the nearest existing note when that is closer. The new notes are appended
// to the existing ones and the list is re-sorted; existing notes are never
// dropped, so a collision is left for CheckNoteOverlaps to report.
// firstBarTick shifts note windows into curve positions. The returned track
// owns fresh note and curve slices.
func TrackOverrideWith(track model.Track, newNotes []model.Note, newParams model.Params, firstBarTick int) model.Track {
	inserted := slices.Clone(newNotes)
	slices.SortStableFunc(inserted, byStart)

	groups := touchingGroups(inserted)

	existing := make([]model.Note, 0, len(track.NoteList)+len(inserted))
	existing = append(existing, track.NoteList...)
	slices.SortStableFunc(existing, byStart)

	params := cloneParams(track.EditedParams)
	for _, g := range groups {
		w := overrideWindow(existing, g)
		for _, name := range model.CurveNames {
			main, over := params.Curve(name), newParams.Curve(name)
			if main.Len() == 0 && over.Len() == 0 {
				continue
			}
			*main = Override(*main, *over, w.Start+firstBarTick, w.End+firstBarTick, model.Termination(name))
		}
	}

	result := track
	result.NoteList = append(existing, inserted...)
	slices.SortStableFunc(result.NoteList, byStart)
	result.EditedParams = params
	return result
}

// touchingGroups joins sorted notes whose ranges touch or overlap.
func touchingGroups(notes []model.Note) []Window {
	var groups []Window
	for _, n := range notes {
		if k := len(groups); k > 0 && n.StartPos <= groups[k-1].End {
			groups[k-1].End = max(groups[k-1].End, n.EndPos())
			continue
		}
		groups = append(groups, Window{Start: n.StartPos, End: n.EndPos()})
	}
	return groups
}

// overrideWindow computes the window of group g against existing notes sorted
// by start. Only notes ending at or before the group and starting at or after
// it bound the window.
func overrideWindow(existing []model.Note, g Window) Window {
	w := Window{Start: g.Start - GuardTicks, End: g.End + GuardTicks}
	if i := bisect.FloorFunc(existing, g.Start, endPos); i >= 0 {
		w.Start = max(w.Start, (existing[i].EndPos()+g.Start)/2)
	}
	if j := bisect.CeilFunc(existing, g.End, startPos); j < len(existing) {
		w.End = min(w.End, (g.End+existing[j].StartPos)/2)
	}
	return w
}

func cloneParams(p model.Params) model.Params {
	out := p
	for _, name := range model.CurveNames {
		c := out.Curve(name)
		*c = c.Clone()
	}
	return out
}

func byStart(a, b model.Note) int { return a.StartPos - b.StartPos }

func startPos(n model.Note) int { return n.StartPos }

func endPos(n model.Note) int { return n.EndPos() }
