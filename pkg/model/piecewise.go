package model

import (
	"fmt"
	"math"
	"slices"

	"github.com/james-see/svsbridge/pkg/bisect"
)

// PiecewiseIntervalDict maps half-open intervals [start, end) to functions of
// the query. A query exactly on a boundary is answered by the interval that
// starts there. Use math.Inf for unbounded ends.
type PiecewiseIntervalDict struct {
	pieces []piece
}

type piece struct {
	start, end float64
	fn         func(x float64) float64
}

// Set maps [start, end) to fn. Intervals must not overlap.
func (d *PiecewiseIntervalDict) Set(start, end float64, fn func(x float64) float64) error {
	if !(start < end) {
		return fmt.Errorf("empty interval [%g, %g)", start, end)
	}
	i := bisect.CeilFunc(d.pieces, start, pieceStart)
	if i > 0 && d.pieces[i-1].end > start {
		return fmt.Errorf("interval [%g, %g) overlaps [%g, %g)", start, end, d.pieces[i-1].start, d.pieces[i-1].end)
	}
	if i < len(d.pieces) && d.pieces[i].start < end {
		return fmt.Errorf("interval [%g, %g) overlaps [%g, %g)", start, end, d.pieces[i].start, d.pieces[i].end)
	}
	d.pieces = slices.Insert(d.pieces, i, piece{start: start, end: end, fn: fn})
	return nil
}

// SetValue maps [start, end) to a constant.
func (d *PiecewiseIntervalDict) SetValue(start, end, value float64) error {
	return d.Set(start, end, func(float64) float64 { return value })
}

// Get evaluates the function of the interval containing x.
func (d *PiecewiseIntervalDict) Get(x float64) (float64, bool) {
	if math.IsNaN(x) {
		return 0, false
	}
	i := bisect.FloorFunc(d.pieces, x, pieceStart)
	if i < 0 || x >= d.pieces[i].end {
		return 0, false
	}
	return d.pieces[i].fn(x), true
}

// Len returns the number of intervals.
func (d *PiecewiseIntervalDict) Len() int {
	return len(d.pieces)
}

func pieceStart(p piece) float64 { return p.start }

// Linear returns the line through (x0, y0) with the given slope.
func Linear(x0, y0, slope float64) func(float64) float64 {
	return func(x float64) float64 { return y0 + (x-x0)*slope }
}
