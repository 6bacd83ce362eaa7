package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianOf(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "single", values: []float64{3}, want: 3},
		{name: "odd", values: []float64{5, 1, 3}, want: 3},
		{name: "even averages middle pair", values: []float64{4, 1, 3, 2}, want: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, medianOf(tt.values))
		})
	}

	assert.True(t, math.IsNaN(medianOf(nil)))

	in := []float64{3, 1, 2}
	medianOf(in)
	assert.Equal(t, []float64{3, 1, 2}, in, "input must not be reordered")
}

func TestSampleStdOf(t *testing.T) {
	got := sampleStdOf([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.True(t, got.Valid)
	assert.InDelta(t, math.Sqrt(32.0/7), got.Value, 1e-12)

	assert.False(t, sampleStdOf([]float64{1}).Valid)
	assert.False(t, sampleStdOf(nil).Valid)
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: 20.333333, want: 20.33},
		{in: 10.5, want: 10.5},
		{in: 2.675, want: 2.67}, // 2.675 is stored just below the midpoint
		{in: 0.125, want: 0.12}, // exact midpoint rounds to even
		{in: 0.375, want: 0.38},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, round2(tt.in), "round2(%v)", tt.in)
	}
}

func TestMeanOf(t *testing.T) {
	assert.False(t, meanOf(nil).Valid)

	m := meanOf([]float64{1, 2, 6})
	assert.True(t, m.Valid)
	assert.InDelta(t, 3.0, m.Value, 1e-12)
}
