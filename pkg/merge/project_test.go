package merge

import (
	"errors"
	"testing"

	"github.com/Southclaws/fault/fmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/svsbridge/pkg/model"
)

func singing(title string, notes ...model.Note) model.Track {
	t := model.NewSingingTrack(title)
	t.NoteList = notes
	return t
}

func TestProjects(t *testing.T) {
	first := &model.Project{
		SongTempoList: []model.SongTempo{{Position: 0, BPM: 120}},
		TrackList: []model.Track{
			singing("lead", note(0, 480, "a")),
			model.NewInstrumentalTrack("backing", "backing.wav", 0),
		},
	}
	second := &model.Project{
		SongTempoList: []model.SongTempo{{Position: 0, BPM: 120}},
		TrackList: []model.Track{
			singing("lead take 2", note(960, 480, "b")),
			singing("harmony", note(0, 240, "h")),
		},
	}

	var w model.Warnings
	got, err := Projects([]*model.Project{first, second}, &w)
	require.NoError(t, err)
	assert.Zero(t, w.Len())

	require.Len(t, got.TrackList, 3)
	assert.Equal(t, "lead", got.TrackList[0].Title)
	assert.Len(t, got.TrackList[0].NoteList, 2)
	assert.Equal(t, model.TrackInstrumental, got.TrackList[1].Kind)
	assert.Equal(t, "harmony", got.TrackList[2].Title)
	assert.Len(t, first.TrackList[0].NoteList, 1, "inputs must stay untouched")
}

func TestProjectsRetimesDifferentTempo(t *testing.T) {
	first := &model.Project{
		SongTempoList: []model.SongTempo{{Position: 0, BPM: 120}},
		TrackList:     []model.Track{singing("lead", note(0, 480, "a"))},
	}
	second := &model.Project{
		SongTempoList: []model.SongTempo{{Position: 0, BPM: 60}},
		TrackList:     []model.Track{singing("lead", note(480, 480, "b"))},
	}

	var w model.Warnings
	got, err := Projects([]*model.Project{first, second}, &w)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Len())

	notes := got.TrackList[0].NoteList
	require.Len(t, notes, 2)
	assert.Equal(t, 960, notes[1].StartPos)
	assert.Equal(t, 960, notes[1].Length)
}

func TestProjectsErrors(t *testing.T) {
	_, err := Projects(nil, nil)
	assert.ErrorIs(t, err, ErrNoProjects)

	bad := &model.Project{TrackList: []model.Track{singing("lead", note(0, 480, "a"), note(240, 480, "b"))}}
	_, err = Projects([]*model.Project{bad}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrOverlappingNotes))
}

func TestProjectsRejectsCollidingNotes(t *testing.T) {
	first := &model.Project{TrackList: []model.Track{singing("lead", note(0, 960, "long"))}}
	second := &model.Project{TrackList: []model.Track{singing("lead take 2", note(480, 480, "short"))}}

	var w model.Warnings
	got, err := Projects([]*model.Project{first, second}, &w)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, model.ErrOverlappingNotes)
	assert.Contains(t, fmsg.GetIssue(err), `Track "lead"`)
	assert.Len(t, first.TrackList[0].NoteList, 1)
}
