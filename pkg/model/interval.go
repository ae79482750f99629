package model

import (
	"slices"

	"github.com/james-see/svsbridge/pkg/bisect"
)

// Range is a half-open integer range [Start, End).
type Range struct {
	Start int
	End   int
}

// RangeInterval is a set of ticks stored as sorted, disjoint, non-touching
// half-open ranges.
type RangeInterval struct {
	ranges []Range
}

// NewRangeInterval builds a set from arbitrary ranges. Empty ranges are
// dropped and touching or overlapping ranges are joined.
func NewRangeInterval(ranges ...Range) RangeInterval {
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < r.End {
			rs = append(rs, r)
		}
	}
	slices.SortFunc(rs, func(a, b Range) int { return a.Start - b.Start })
	merged := rs[:0]
	for _, r := range rs {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			merged[n-1].End = max(merged[n-1].End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return RangeInterval{ranges: merged}
}

// SubRanges returns a copy of the normalized ranges.
func (ri RangeInterval) SubRanges() []Range {
	return slices.Clone(ri.ranges)
}

// IsEmpty reports whether the set contains no tick.
func (ri RangeInterval) IsEmpty() bool {
	return len(ri.ranges) == 0
}

// Union returns the set of ticks in either operand.
func (ri RangeInterval) Union(other RangeInterval) RangeInterval {
	return NewRangeInterval(append(slices.Clone(ri.ranges), other.ranges...)...)
}

// Intersection returns the set of ticks in both operands.
func (ri RangeInterval) Intersection(other RangeInterval) RangeInterval {
	var out []Range
	i, j := 0, 0
	for i < len(ri.ranges) && j < len(other.ranges) {
		a, b := ri.ranges[i], other.ranges[j]
		if lo, hi := max(a.Start, b.Start), min(a.End, b.End); lo < hi {
			out = append(out, Range{lo, hi})
		}
		if a.End < b.End {
			i++
		} else {
			j++
		}
	}
	return RangeInterval{ranges: out}
}

// Add inserts [start, end) into the set, joining neighbours it touches.
func (ri *RangeInterval) Add(start, end int) {
	if start >= end {
		return
	}
	lo := bisect.CeilFunc(ri.ranges, start, rangeEnd)
	hi := bisect.FloorFunc(ri.ranges, end, rangeStart) + 1
	if lo < hi {
		start = min(start, ri.ranges[lo].Start)
		end = max(end, ri.ranges[hi-1].End)
	}
	ri.ranges = slices.Replace(ri.ranges, lo, max(lo, hi), Range{start, end})
}

// Includes reports whether tick x is in the set.
func (ri RangeInterval) Includes(x int) bool {
	i := bisect.FloorFunc(ri.ranges, x, rangeStart)
	return i >= 0 && x < ri.ranges[i].End
}

// Covers reports whether every tick of [start, end) is in the set.
func (ri RangeInterval) Covers(start, end int) bool {
	if start >= end {
		return true
	}
	i := bisect.FloorFunc(ri.ranges, start, rangeStart)
	return i >= 0 && end <= ri.ranges[i].End
}

// Overlaps reports whether any tick of [start, end) is in the set.
func (ri RangeInterval) Overlaps(start, end int) bool {
	if start >= end {
		return false
	}
	i := bisect.FloorFunc(ri.ranges, start, rangeStart)
	if i >= 0 && start < ri.ranges[i].End {
		return true
	}
	return i+1 < len(ri.ranges) && ri.ranges[i+1].Start < end
}

func rangeStart(r Range) int { return r.Start }

func rangeEnd(r Range) int { return r.End }
