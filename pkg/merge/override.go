// Package merge combines curves and notes coming from independently loaded
// projects or from range-confined edits.
package merge

import (
	"math"

	"github.com/james-see/svsbridge/pkg/model"
)

// Override returns main with its content inside [start, end] replaced by the
// content of override over the same window.
//
// At each edge the boundary value is interpolated from whichever curve is
// defined there. When only one of the two is defined, a termination point is
// inserted at the edge so the result never suggests a continuity neither
// input had. Neither argument is modified.
func Override(main, override model.ParamCurve, start, end, termination int) model.ParamCurve {
	if start > end {
		return main.Clone()
	}
	if main.Len() == 0 {
		main = model.NewParamCurve(termination)
	}
	fs, fe := float64(start), float64(end)
	mainStart, mainStartOK := main.ValueAt(fs, termination)
	overStart, overStartOK := override.ValueAt(fs, termination)
	mainEnd, mainEndOK := main.ValueAt(fe, termination)
	overEnd, overEndOK := override.ValueAt(fe, termination)

	out := make([]model.Point, 0, main.Len()+override.Len()+4)
	for _, p := range main.Points {
		if p.X < start {
			out = append(out, p)
		}
	}
	closeRun := func(x int) {
		if n := len(out); n > 0 && out[n-1].Y != termination {
			out = append(out, model.Point{X: x, Y: termination})
		}
	}

	switch {
	case mainStartOK && overStartOK:
		out = append(out, point(start, overStart))
	case mainStartOK:
		out = append(out, point(start, mainStart), model.Point{X: start, Y: termination})
	case overStartOK:
		out = append(out, model.Point{X: start, Y: termination}, point(start, overStart))
	default:
		closeRun(start)
	}

	for _, p := range override.Points {
		if p.X > start && p.X < end {
			out = append(out, p)
		}
	}

	switch {
	case mainEndOK && overEndOK:
		out = append(out, point(end, overEnd))
	case overEndOK:
		out = append(out, point(end, overEnd), model.Point{X: end, Y: termination})
	case mainEndOK:
		out = append(out, model.Point{X: end, Y: termination}, point(end, mainEnd))
	default:
		closeRun(end)
	}

	for _, p := range main.Points {
		if p.X > end {
			out = append(out, p)
		}
	}
	return model.ParamCurve{Points: out}
}

func point(x int, y float64) model.Point {
	return model.Point{X: x, Y: int(math.Round(y))}
}
