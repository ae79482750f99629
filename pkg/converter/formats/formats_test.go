package formats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault/ftag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/svsbridge/pkg/converter"
	"github.com/james-see/svsbridge/pkg/model"
)

func newConverter() *converter.Converter {
	return converter.New(NewMIDI(DefaultMIDIOptions()), NewYAML())
}

func TestConvertYAMLToMIDIAndBack(t *testing.T) {
	c := newConverter()
	doc, err := NewYAML().Dump(testProject(), nil)
	require.NoError(t, err)

	toMIDI, err := c.Convert(doc, converter.FormatYAML, converter.FormatMIDI)
	require.NoError(t, err)
	assert.Equal(t, converter.FormatMIDI, converter.DetectFormatFromContent(toMIDI.Data))
	require.Len(t, toMIDI.Warnings, 1)
	assert.Equal(t, "midi", toMIDI.Warnings[0].Source)

	back, err := c.Convert(toMIDI.Data, converter.FormatMIDI, converter.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, converter.FormatYAML, converter.DetectFormatFromContent(back.Data))
	assert.Len(t, back.Project.TrackList, 1)
	assert.Len(t, back.Project.TrackList[0].NoteList, 3)
}

func TestConvertRejectsOverlaps(t *testing.T) {
	doc := "format: svsbridge\nversion: 1\ntracks:\n  - kind: singing\n    title: lead\n    notes:\n" +
		"      - {start: 0, length: 480, key: 60, lyric: a}\n" +
		"      - {start: 240, length: 480, key: 62, lyric: b}\n"
	_, err := newConverter().Convert([]byte(doc), converter.FormatYAML, converter.FormatMIDI)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrOverlappingNotes)
	assert.Equal(t, ftag.InvalidArgument, ftag.Get(err))
}

func TestConvertAndMergeFiles(t *testing.T) {
	dir := t.TempDir()
	c := newConverter()

	first := testProject()
	second := &model.Project{TrackList: []model.Track{model.NewSingingTrack("Lead")}}
	second.TrackList[0].NoteList = []model.Note{{StartPos: 1920, Length: 480, KeyNumber: 67, Lyric: "れ"}}

	write := func(name string, p *model.Project) string {
		data, err := NewYAML().Dump(p, nil)
		require.NoError(t, err)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0644))
		return path
	}
	a := write("a.yaml", first)
	b := write("b.yml", second)

	mid := filepath.Join(dir, "a.mid")
	_, err := c.ConvertFile(a, mid)
	require.NoError(t, err)

	merged := filepath.Join(dir, "merged.yaml")
	result, err := c.MergeFiles([]string{mid, b}, merged)
	require.NoError(t, err)

	project, _, err := c.LoadFile(merged)
	require.NoError(t, err)
	assert.Equal(t, result.Project.TrackList[0].NoteList, project.TrackList[0].NoteList)
	require.Len(t, project.TrackList[0].NoteList, 4)
	assert.Equal(t, "れ", project.TrackList[0].NoteList[3].Lyric)

	_, err = c.ConvertFile(a, filepath.Join(dir, "out.txt"))
	assert.Error(t, err)
}
