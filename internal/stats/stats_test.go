package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	t.Parallel()

	oneToHundred := make([]float64, 100)
	for i := range oneToHundred {
		oneToHundred[i] = float64(i + 1)
	}

	tests := []struct {
		name     string
		xs       []float64
		p        float64
		expected float64
	}{
		{name: "p90_of_1_to_100", xs: oneToHundred, p: 90, expected: 90.1},
		{name: "p50_of_1_to_100", xs: oneToHundred, p: 50, expected: 50.5},
		{name: "p10_of_1_to_100", xs: oneToHundred, p: 10, expected: 10.9},
		{name: "p1_of_1_to_100", xs: oneToHundred, p: 1, expected: 1.99},
		{name: "p0_is_min", xs: []float64{3, 1, 2}, p: 0, expected: 1},
		{name: "p100_is_max", xs: []float64{3, 1, 2}, p: 100, expected: 3},
		{name: "single_element", xs: []float64{42}, p: 75, expected: 42},
		{name: "unsorted_input", xs: []float64{5, 1, 3}, p: 50, expected: 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Percentile(tt.xs, tt.p)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	xs := []float64{9, 1, 5}
	_ = Percentile(xs, 50)
	assert.Equal(t, []float64{9, 1, 5}, xs)
}

func TestPercentileEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestPopStdDev(t *testing.T) {
	t.Parallel()

	// Population std of [2,4,4,4,5,5,7,9] is exactly 2.
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, PopStdDev(xs), 1e-12)

	// Sample std would be larger; make sure we use the population flavor.
	assert.Less(t, PopStdDev([]float64{1, 2, 3}), 1.0)
}

func TestCumSum(t *testing.T) {
	t.Parallel()

	got := CumSum([]float64{1, 2, 3, -1})
	require.Equal(t, []float64{1, 3, 6, 5}, got)
	assert.Empty(t, CumSum(nil))
}

func TestMean(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.Zero(t, Mean(nil))
}
