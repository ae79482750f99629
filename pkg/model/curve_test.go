package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(xy ...int) []Point {
	out := make([]Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestSplitIntoSegments(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   [][]Point
	}{
		{
			name:   "single sentinel between voiced points does not split",
			points: pts(1, 1, 2, 1, 3, 0, 4, 1, 5, 1),
			want:   [][]Point{pts(1, 1, 2, 1, 3, 0, 4, 1, 5, 1)},
		},
		{
			name:   "sentinel pairs split",
			points: pts(1, 0, 2, 0, 3, 1, 4, 1, 5, 0, 6, 0, 7, 1, 8, 1, 9, 0, 10, 0),
			want:   [][]Point{pts(3, 1, 4, 1), pts(7, 1, 8, 1)},
		},
		{
			name:   "all sentinel",
			points: pts(1, 0, 2, 0, 3, 0),
			want:   nil,
		},
		{
			name:   "single voiced point",
			points: pts(0, 0, 5, 3, 6, 0, 7, 0),
			want:   [][]Point{pts(5, 3)},
		},
		{
			name:   "voiced points before zero are ignored",
			points: pts(-10, 4, -5, 0, -4, 0, 2, 4),
			want:   [][]Point{pts(2, 4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParamCurve{Points: tt.points}.SplitIntoSegments(0)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResamplePreservesTopology(t *testing.T) {
	curve := ParamCurve{Points: []Point{StartPoint(PitchSentinel)}}
	for x := 0; x <= 100; x++ {
		curve.Points = append(curve.Points, Point{X: x, Y: 6000 + x})
	}
	curve.Points = append(curve.Points, Point{X: 100, Y: PitchSentinel}, Point{X: 200, Y: PitchSentinel})
	for x := 200; x <= 230; x += 3 {
		curve.Points = append(curve.Points, Point{X: x, Y: 6200})
	}
	curve.Points = append(curve.Points, Point{X: 230, Y: PitchSentinel}, EndPoint(PitchSentinel))

	got := curve.Resample(10, PitchSentinel)

	require.Less(t, got.Len(), curve.Len())
	assert.Equal(t, StartPoint(PitchSentinel), got.Points[0])
	assert.Equal(t, EndPoint(PitchSentinel), got.Points[got.Len()-1])

	segments := got.SplitIntoSegments(PitchSentinel)
	require.Len(t, segments, 2)
	assert.Equal(t, Point{X: 0, Y: 6000}, segments[0][0])
	assert.Equal(t, Point{X: 100, Y: 6100}, segments[0][len(segments[0])-1])
	assert.Equal(t, Point{X: 200, Y: 6200}, segments[1][0])
	for i := 1; i < got.Len(); i++ {
		assert.LessOrEqual(t, got.Points[i-1].X, got.Points[i].X)
	}
	assert.Equal(t, 117, curve.Len(), "input must stay untouched")
}

func TestResampleIdempotent(t *testing.T) {
	curve := ParamCurve{Points: []Point{StartPoint(PitchSentinel)}}
	for x := 0; x < 500; x += 7 {
		curve.Points = append(curve.Points, Point{X: x, Y: 6000 + (x*13)%50})
	}
	curve.Points = append(curve.Points, EndPoint(PitchSentinel))

	once := curve.Resample(20, PitchSentinel)
	twice := once.Resample(20, PitchSentinel)

	assert.Equal(t, once, twice)
}

func TestResampleSmallIntervalIsCopy(t *testing.T) {
	curve := ParamCurve{Points: pts(0, 1, 1, 2, 2, 3)}
	got := curve.Resample(1, 0)
	assert.Equal(t, curve, got)
	got.Points[0].Y = 42
	assert.Equal(t, 1, curve.Points[0].Y)
}

func TestValueAt(t *testing.T) {
	curve := ParamCurve{Points: []Point{
		StartPoint(PitchSentinel),
		{X: 0, Y: 6000}, {X: 100, Y: 6100},
		{X: 100, Y: PitchSentinel}, {X: 200, Y: PitchSentinel},
		{X: 200, Y: 6400},
		EndPoint(PitchSentinel),
	}}

	tests := []struct {
		name    string
		x       float64
		want    float64
		defined bool
	}{
		{"interpolated", 50, 6050, true},
		{"on point", 0, 6000, true},
		{"duplicate x takes last point", 100, 0, false},
		{"inside gap", 150, 0, false},
		{"gap closes with value", 200, 6400, true},
		{"next to end sentinel", 300, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := curve.ValueAt(tt.x, PitchSentinel)
			assert.Equal(t, tt.defined, ok)
			if ok {
				assert.InDelta(t, tt.want, v, 1e-9)
			}
		})
	}
}

func TestParamsCurve(t *testing.T) {
	var p Params
	for _, name := range CurveNames {
		require.NotNil(t, p.Curve(name), name)
	}
	p.Curve(CurveVolume).Points = pts(1, 2)
	assert.Equal(t, pts(1, 2), p.Volume.Points)
	assert.Nil(t, p.Curve("tension"))
	assert.Equal(t, PitchSentinel, Termination(CurvePitch))
	assert.Equal(t, 0, Termination(CurveBreath))
}

func TestPitchVariant(t *testing.T) {
	v, ok := Voiced(6000).Unpack()
	assert.True(t, ok)
	assert.Equal(t, 6000, v)

	assert.Equal(t, PitchSentinel, Silent().Y())
	assert.False(t, PitchOf(PitchSentinel).IsVoiced())
	assert.True(t, PitchOf(0).IsVoiced())

	collided := Voiced(PitchSentinel)
	assert.True(t, collided.IsVoiced())
	assert.NotEqual(t, PitchSentinel, collided.Y())

	assert.Equal(t, Point{X: 10, Y: PitchSentinel}, PitchPoint(10, Silent()))
}
