package pitch

import (
	"slices"
	"testing"

	"github.com/james-see/svsbridge/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoNotes = []model.Note{
	{StartPos: 0, Length: 480, KeyNumber: 60},
	{StartPos: 480, Length: 480, KeyNumber: 62},
	{StartPos: 1920, Length: 480, KeyNumber: 64},
}

func TestNoteIndexAt(t *testing.T) {
	tests := []struct {
		tick int
		want int
	}{
		{-1, -1},
		{0, 0},
		{479, 0},
		{480, 1},
		{959, 1},
		{960, -1},
		{1920, 2},
		{2400, -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NoteIndexAt(twoNotes, tt.tick), "tick %d", tt.tick)
	}
}

func TestToAbsoluteEmpty(t *testing.T) {
	got := ToAbsolute(nil, twoNotes)
	assert.Equal(t, model.NewParamCurve(model.PitchSentinel), got)
}

func TestToAbsolute(t *testing.T) {
	relative := []model.Point{
		{X: 100, Y: 0}, {X: 200, Y: -50},
		{X: 500, Y: 20},
		{X: 1000, Y: 300}, // between notes: dropped
		{X: 2000, Y: 0},
	}

	got := ToAbsolute(relative, twoNotes)

	s := model.PitchSentinel
	want := []model.Point{
		model.StartPoint(s),
		{X: 100, Y: 6000}, {X: 200, Y: 5950},
		{X: 200, Y: s}, {X: 480, Y: s},
		{X: 500, Y: 6220},
		{X: 500, Y: s}, {X: 1920, Y: s},
		{X: 2000, Y: 6400},
		{X: 2000, Y: s},
		model.EndPoint(s),
	}
	assert.Equal(t, want, got.Points)
	assert.True(t, slices.IsSortedFunc(got.Points, func(a, b model.Point) int { return a.X - b.X }),
		"resume sentinels never move before the previous sample")

	segments := got.SplitIntoSegments(s)
	require.Len(t, segments, 3)
}

func TestToAbsoluteNeverEmitsSentinelFromData(t *testing.T) {
	notes := []model.Note{{StartPos: 0, Length: 480, KeyNumber: 0}}
	got := ToAbsolute([]model.Point{{X: 10, Y: -100}}, notes)
	require.Len(t, got.Points, 4)
	assert.NotEqual(t, model.PitchSentinel, got.Points[1].Y)
}

func TestToRelativeInvertsToAbsolute(t *testing.T) {
	relative := []model.Point{{X: 0, Y: 10}, {X: 240, Y: -20}, {X: 600, Y: 35}, {X: 2100, Y: 0}}
	assert.Equal(t, relative, ToRelative(ToAbsolute(relative, twoNotes), twoNotes))
}

func TestSamples(t *testing.T) {
	curve := ToAbsolute([]model.Point{{X: 100, Y: 0}, {X: 200, Y: 0}, {X: 500, Y: 0}}, twoNotes)

	got := Samples(curve)

	want := []Sample{
		{Start: 100, End: 200, Semicent: 6000, Restart: true},
		{Start: 200, End: 200, Semicent: 6000, Restart: false},
		{Start: 500, End: 500, Semicent: 6200, Restart: true},
	}
	assert.Equal(t, want, got)
	assert.Empty(t, Samples(model.NewParamCurve(model.PitchSentinel)))
}
