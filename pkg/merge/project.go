package merge

import (
	"errors"
	"math"
	"slices"

	"github.com/james-see/svsbridge/pkg/model"
	"github.com/james-see/svsbridge/pkg/timing"
)

// ErrNoProjects is returned when there is nothing to merge.
var ErrNoProjects = errors.New("no projects to merge")

// Projects merges projects into the first one. The first project's tempo map
// and meters win; tracks of later projects with a different tempo map are
// re-timed so they keep their wall-clock position. The n-th singing track of
// a later project is merged into the n-th singing track of the result with
// TrackOverrideWith; surplus tracks are appended. The merged project is
// validated and a note overlap is fatal.
func Projects(projects []*model.Project, w *model.Warnings) (*model.Project, error) {
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}
	base := cloneProject(projects[0])
	base.Normalize()
	baseSync := timing.NewSynchronizer(base.SongTempoList, model.TicksPerBeat)

	for k, other := range projects[1:] {
		other := cloneProject(other)
		other.Normalize()
		if !slices.Equal(other.SongTempoList, base.SongTempoList) {
			w.Add("merge", "project %d has a different tempo map; its tracks were re-timed", k+1)
			otherSync := timing.NewSynchronizer(other.SongTempoList, model.TicksPerBeat)
			for i := range other.TrackList {
				other.TrackList[i] = retimeTrack(other.TrackList[i], otherSync, baseSync)
			}
		}
		if !slices.Equal(other.TimeSignatureList, base.TimeSignatureList) {
			w.Add("merge", "project %d has different time signatures; keeping the first project's", k+1)
		}

		var singing []int
		for i := range base.TrackList {
			if base.TrackList[i].IsSinging() {
				singing = append(singing, i)
			}
		}
		next := 0
		for _, track := range other.TrackList {
			if track.IsSinging() && next < len(singing) {
				idx := singing[next]
				base.TrackList[idx] = TrackOverrideWith(base.TrackList[idx], track.NoteList, track.EditedParams, 0)
				next++
				continue
			}
			base.TrackList = append(base.TrackList, track)
		}
	}

	if err := model.CheckNoteOverlaps(base); err != nil {
		return nil, err
	}
	return base, nil
}

// retimeTrack moves every tick of track from one tempo map to another,
// keeping wall-clock positions.
func retimeTrack(track model.Track, from, to *timing.Synchronizer) model.Track {
	move := func(tick int) int {
		return int(math.Round(to.SecondsToTicks(from.TicksToSeconds(float64(tick)))))
	}
	out := track
	out.Offset = move(track.Offset)
	out.NoteList = make([]model.Note, len(track.NoteList))
	for i, n := range track.NoteList {
		start, end := move(n.StartPos), move(n.EndPos())
		n.StartPos, n.Length = start, max(end-start, 1)
		out.NoteList[i] = n
	}
	out.EditedParams = cloneParams(track.EditedParams)
	for _, name := range model.CurveNames {
		c := out.EditedParams.Curve(name)
		for i, p := range c.Points {
			if p.X > model.StartPointX && p.X < model.EndPointX {
				c.Points[i].X = move(p.X)
			}
		}
	}
	return out
}

func cloneProject(p *model.Project) *model.Project {
	out := &model.Project{
		SongTempoList:     slices.Clone(p.SongTempoList),
		TimeSignatureList: slices.Clone(p.TimeSignatureList),
		TrackList:         make([]model.Track, len(p.TrackList)),
	}
	for i, t := range p.TrackList {
		t.NoteList = slices.Clone(t.NoteList)
		t.EditedParams = cloneParams(t.EditedParams)
		out.TrackList[i] = t
	}
	return out
}
