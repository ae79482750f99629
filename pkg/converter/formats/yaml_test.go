package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/svsbridge/pkg/model"
)

func TestYAMLRoundTrip(t *testing.T) {
	project := testProject()
	lead := &project.TrackList[0]
	lead.NoteList[0].Vibrato = &model.VibratoParam{StartPercent: 0.2, EndPercent: 1, Frequency: 5.5, Amplitude: 30}
	lead.EditedParams.Volume = model.ParamCurve{Points: []model.Point{{X: 0, Y: 10}, {X: 960, Y: -5}}}

	plugin := NewYAML()
	data, err := plugin.Dump(project, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format: svsbridge")

	var w model.Warnings
	got, err := plugin.Load(data, &w)
	require.NoError(t, err)
	assert.Zero(t, w.Len())

	assert.Equal(t, project.SongTempoList, got.SongTempoList)
	assert.Equal(t, project.TimeSignatureList, got.TimeSignatureList)
	require.Len(t, got.TrackList, 2)
	assert.Equal(t, project.TrackList[0].NoteList, got.TrackList[0].NoteList)
	assert.Equal(t, project.TrackList[0].EditedParams.Volume, got.TrackList[0].EditedParams.Volume)
	assert.Equal(t, model.TrackInstrumental, got.TrackList[1].Kind)
	assert.Equal(t, "backing.wav", got.TrackList[1].AudioFilePath)
}

func TestYAMLLoad(t *testing.T) {
	t.Run("missing marker warns and infers kinds", func(t *testing.T) {
		doc := "tracks:\n  - title: lead\n    notes:\n      - {start: 0, length: 480, key: 60, lyric: a}\n  - title: bgm\n    audio: bgm.wav\n"
		var w model.Warnings
		got, err := NewYAML().Load([]byte(doc), &w)
		require.NoError(t, err)
		assert.Equal(t, 1, w.Len())
		require.Len(t, got.TrackList, 2)
		assert.Equal(t, model.TrackSinging, got.TrackList[0].Kind)
		assert.Equal(t, model.TrackInstrumental, got.TrackList[1].Kind)
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "format: svsbridge\nversion: 1\nsurprise: true\n"},
		{"foreign format", "format: other\nversion: 1\n"},
		{"newer version", "format: svsbridge\nversion: 99\n"},
		{"empty", ""},
		{"malformed", "tracks: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAML().Load([]byte(tt.doc), nil)
			assert.Error(t, err)
		})
	}

	_, err := NewYAML().Load([]byte("format: svsbridge\nversion: 2\n"), nil)
	assert.ErrorIs(t, err, ErrNewerVersion)
}
