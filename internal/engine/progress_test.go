package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	cases := []struct {
		points   int
		level    int
		into     int
		fraction float64
	}{
		{0, 1, 0, 0},
		{99, 1, 99, 0.99},
		{100, 2, 0, 0},
		{101, 2, 1, 0.01},
		{250, 3, 50, 0.5},
		{-5, 1, 0, 0}, // negative totals clamp to zero
	}
	for _, tc := range cases {
		got := Progress(tc.points)
		assert.Equal(t, tc.level, got.Level, "points=%d", tc.points)
		assert.Equal(t, tc.into, got.PointsIntoLevel, "points=%d", tc.points)
		assert.InDelta(t, tc.fraction, got.Fraction, 1e-9, "points=%d", tc.points)
	}
}
