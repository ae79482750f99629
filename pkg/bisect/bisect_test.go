package bisect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloor(t *testing.T) {
	boundaries := []int{0, 480, 960, 960, 1920}

	tests := []struct {
		name string
		x    int
		want int
	}{
		{"before first", -1, -1},
		{"on first boundary", 0, 0},
		{"inside first segment", 479, 0},
		{"on boundary belongs to segment starting there", 480, 1},
		{"duplicate boundary picks last", 960, 3},
		{"past last", 5000, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Floor(boundaries, tt.x))
		})
	}
}

func TestFloorFunc(t *testing.T) {
	type seg struct{ start float64 }
	segs := []seg{{0}, {1.5}, {3}}
	key := func(s seg) float64 { return s.start }

	assert.Equal(t, -1, FloorFunc(segs, -0.1, key))
	assert.Equal(t, 1, FloorFunc(segs, 1.5, key))
	assert.Equal(t, 1, FloorFunc(segs, 2.99, key))
	assert.Equal(t, 2, FloorFunc(segs, 100.0, key))
}

func TestCeil(t *testing.T) {
	xs := []int{10, 20, 20, 30}

	assert.Equal(t, 0, Ceil(xs, 5))
	assert.Equal(t, 1, Ceil(xs, 20))
	assert.Equal(t, 3, Ceil(xs, 21))
	assert.Equal(t, 4, Ceil(xs, 31))
	assert.Equal(t, 1, CeilFunc(xs, 11, func(v int) int { return v }))
}
