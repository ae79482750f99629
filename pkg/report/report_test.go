package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/svsbridge/pkg/model"
)

func testProject() *model.Project {
	lead := model.NewSingingTrack("Lead")
	lead.NoteList = []model.Note{
		{StartPos: 480, Length: 480, KeyNumber: 60, Lyric: "do"},
		{StartPos: 1920, Length: 960, KeyNumber: 67, Lyric: "so"},
	}
	return &model.Project{
		SongTempoList: []model.SongTempo{{Position: 0, BPM: 120}, {Position: 1920, BPM: 60}},
		TrackList:     []model.Track{lead, model.NewInstrumentalTrack("", "bgm.wav", 0)},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("song.yaml", testProject(), nil)

	assert.Equal(t, 2880, s.EndTick)
	assert.InDelta(t, 4.0, s.DurationSeconds, 1e-9)
	require.Len(t, s.Tracks, 2)

	lead := s.Tracks[0]
	assert.Equal(t, 2, lead.Notes)
	assert.Equal(t, 60, lead.LowestKey)
	assert.Equal(t, 67, lead.HighestKey)
	assert.InDelta(t, 0.5, lead.StartSeconds, 1e-9)
	assert.InDelta(t, 4.0, lead.EndSeconds, 1e-9)
	assert.Equal(t, "do so", lead.Lyrics)

	assert.Equal(t, "bgm.wav", s.Tracks[1].AudioFile)
	assert.Zero(t, s.Tracks[1].EndTick)
}

func TestRenderDefaultTemplate(t *testing.T) {
	warnings := []model.Warning{{Source: "midi", Message: "trimmed a note"}}
	var out strings.Builder
	require.NoError(t, Render(&out, DefaultTemplate, Summarize("/tmp/song.yaml", testProject(), warnings)))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "song.yaml\n"))
	assert.Contains(t, text, "length   4.00s (2880 ticks)")
	assert.Contains(t, text, "tempo    120@0, 60@1920")
	assert.Contains(t, text, "meter    4/4@bar0")
	assert.Contains(t, text, `[1] "Lead" SINGING 2 notes, keys 60-67`)
	assert.Contains(t, text, `[2] "untitled" INSTRUMENTAL bgm.wav`)
	assert.Contains(t, text, "- midi: trimmed a note")
}

func TestRenderBadTemplate(t *testing.T) {
	var out strings.Builder
	assert.Error(t, Render(&out, "{{ .Nope", Summary{}))
	assert.Error(t, Render(&out, "{{ .Nope }}", Summary{}))
}
