package model

import (
	"math"
	"slices"

	"github.com/james-see/svsbridge/pkg/bisect"
	"github.com/viterin/vek"
)

const (
	// PitchSentinel is the reserved pitch value meaning "no pitch".
	PitchSentinel = -100
	// StartPointX and EndPointX bound every non-empty curve.
	StartPointX = -192000
	EndPointX   = 1<<30 - 1
)

// Point is a single curve sample. X is in canonical ticks.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// StartPoint returns the opening boundary point of a curve.
func StartPoint(y int) Point {
	return Point{X: StartPointX, Y: y}
}

// EndPoint returns the closing boundary point of a curve.
func EndPoint(y int) Point {
	return Point{X: EndPointX, Y: y}
}

// ParamCurve is an ordered point sequence. A non-empty curve always opens with
// StartPoint and closes with EndPoint so callers can iterate Points[1:len-1].
type ParamCurve struct {
	Points []Point `yaml:"points,flow,omitempty" json:"points,omitempty"`
}

// NewParamCurve returns a curve holding only the two boundary points.
func NewParamCurve(termination int) ParamCurve {
	return ParamCurve{Points: []Point{StartPoint(termination), EndPoint(termination)}}
}

// Clone returns a deep copy.
func (c ParamCurve) Clone() ParamCurve {
	return ParamCurve{Points: slices.Clone(c.Points)}
}

// Len returns the number of points including boundaries.
func (c ParamCurve) Len() int {
	return len(c.Points)
}

// Inner returns the points between the boundary points.
func (c ParamCurve) Inner() []Point {
	if len(c.Points) < 2 {
		return nil
	}
	return c.Points[1 : len(c.Points)-1]
}

// SplitIntoSegments returns the maximal voiced spans of the curve.
//
// A lone sentinel with voiced points on both sides does not break a span: it
// is kept inside the current segment. Voiced points before tick 0 are ignored.
func (c ParamCurve) SplitIntoSegments(sentinel int) [][]Point {
	var segments [][]Point
	var buffer []Point
	for i, p := range c.Points {
		if p.Y != sentinel {
			if p.X >= 0 {
				buffer = append(buffer, p)
			}
			continue
		}
		if len(buffer) == 0 {
			continue
		}
		if i+1 < len(c.Points) && c.Points[i+1].Y != sentinel {
			buffer = append(buffer, p)
			continue
		}
		segments = append(segments, buffer)
		buffer = nil
	}
	if len(buffer) > 0 {
		segments = append(segments, buffer)
	}
	return segments
}

// Resample thins the voiced spans of the curve. Interior points of a span are
// bucketed by interval ticks counted from the span's first point and each
// bucket is replaced by the mean of its points. Sentinels and the first and
// last point of every span are kept as they are.
//
// The input is left untouched; the result is a new curve.
func (c ParamCurve) Resample(interval, sentinel int) ParamCurve {
	if interval <= 1 || len(c.Points) == 0 {
		return c.Clone()
	}
	out := make([]Point, 0, len(c.Points))
	xs := make([]float64, 0, interval)
	ys := make([]float64, 0, interval)
	bucket, spanStart := -1, 0
	flush := func() {
		if len(xs) > 0 {
			out = append(out, Point{
				X: int(math.Round(vek.Mean(xs))),
				Y: int(math.Round(vek.Mean(ys))),
			})
			xs, ys = xs[:0], ys[:0]
		}
	}
	for i, p := range c.Points {
		if p.Y == sentinel {
			flush()
			out = append(out, p)
			continue
		}
		prevVoiced := i > 0 && c.Points[i-1].Y != sentinel
		nextVoiced := i+1 < len(c.Points) && c.Points[i+1].Y != sentinel
		if !prevVoiced {
			flush()
			bucket, spanStart = -1, p.X
			out = append(out, p)
			continue
		}
		if !nextVoiced {
			flush()
			out = append(out, p)
			continue
		}
		if k := (p.X - spanStart) / interval; k != bucket {
			flush()
			bucket = k
		}
		xs = append(xs, float64(p.X))
		ys = append(ys, float64(p.Y))
	}
	flush()
	return ParamCurve{Points: out}
}

// ValueAt linearly interpolates the curve at x. The second result is false
// when the curve is undefined there: no neighbour on one side, or one of the
// neighbours is the termination value. When several points share x the last
// one wins.
func (c ParamCurve) ValueAt(x float64, termination int) (float64, bool) {
	i := bisect.FloorFunc(c.Points, x, func(p Point) float64 { return float64(p.X) })
	if i < 0 {
		return 0, false
	}
	p := c.Points[i]
	if float64(p.X) == x {
		return float64(p.Y), p.Y != termination
	}
	if i+1 >= len(c.Points) {
		return 0, false
	}
	q := c.Points[i+1]
	if p.Y == termination || q.Y == termination {
		return 0, false
	}
	r := (x - float64(p.X)) / float64(q.X-p.X)
	return float64(p.Y) + r*float64(q.Y-p.Y), true
}

// CurveName identifies one of the curves in Params.
type CurveName string

const (
	CurvePitch    CurveName = "pitch"
	CurveVolume   CurveName = "volume"
	CurveBreath   CurveName = "breath"
	CurveGender   CurveName = "gender"
	CurveStrength CurveName = "strength"
)

// CurveNames lists every named curve in a fixed order.
var CurveNames = []CurveName{CurvePitch, CurveVolume, CurveBreath, CurveGender, CurveStrength}

// Termination returns the "undefined" value used by the named curve.
func Termination(name CurveName) int {
	if name == CurvePitch {
		return PitchSentinel
	}
	return 0
}

// Params bundles the editable parameter curves of a singing track.
type Params struct {
	Pitch    ParamCurve `yaml:"pitch,omitempty" json:"pitch"`
	Volume   ParamCurve `yaml:"volume,omitempty" json:"volume"`
	Breath   ParamCurve `yaml:"breath,omitempty" json:"breath"`
	Gender   ParamCurve `yaml:"gender,omitempty" json:"gender"`
	Strength ParamCurve `yaml:"strength,omitempty" json:"strength"`
}

// Curve returns a pointer to the named curve, or nil for an unknown name.
func (p *Params) Curve(name CurveName) *ParamCurve {
	switch name {
	case CurvePitch:
		return &p.Pitch
	case CurveVolume:
		return &p.Volume
	case CurveBreath:
		return &p.Breath
	case CurveGender:
		return &p.Gender
	case CurveStrength:
		return &p.Strength
	}
	return nil
}
