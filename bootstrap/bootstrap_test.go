package bootstrap

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/priips/internal/stats"
	"github.com/rustyeddy/priips/market"
)

func histSeries(rates ...float64) []market.HistoricalRate {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.HistoricalRate, len(rates))
	for i, r := range rates {
		out[i] = market.HistoricalRate{Date: base.AddDate(0, 0, i), Rate: r}
	}
	return out
}

func TestLogReturns(t *testing.T) {
	t.Parallel()

	series := histSeries(1.0, 1.1, 1.05)
	got := LogReturns(series)
	require.Len(t, got, len(series)-1)
	assert.InDelta(t, math.Log(1.1), got[0], 1e-12)
	assert.InDelta(t, math.Log(1.05/1.1), got[1], 1e-12)

	// Unsorted input is sorted by date before differencing.
	shuffled := []market.HistoricalRate{series[2], series[0], series[1]}
	assert.Equal(t, got, LogReturns(shuffled))

	assert.Empty(t, LogReturns(nil))
	assert.Empty(t, LogReturns(series[:1]))
}

func TestFileSourceDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		row      []float64
		n        int
		nReturns int
		expected []int
	}{
		{
			name:     "uniform_floats",
			row:      []float64{0.0, 0.25, 0.5, 0.999},
			n:        4,
			nReturns: 10,
			// First value 0.0 is not strictly inside (0,1), so the row
			// reads as 1-based integers.
			expected: []int{0, 0, 0, 0},
		},
		{
			name:     "uniform_floats_strict",
			row:      []float64{0.05, 0.25, 0.5, 0.999},
			n:        4,
			nReturns: 10,
			expected: []int{0, 2, 5, 9},
		},
		{
			name:     "one_based_integers",
			row:      []float64{1, 5, 10, 3},
			n:        4,
			nReturns: 10,
			expected: []int{0, 4, 9, 2},
		},
		{
			name:     "integers_clipped_high",
			row:      []float64{1, 99, 2, 4},
			n:        4,
			nReturns: 10,
			expected: []int{0, 9, 1, 3},
		},
		{
			name:     "integers_clipped_low",
			row:      []float64{0, 5, 2, 4},
			n:        4,
			nReturns: 10,
			expected: []int{0, 4, 1, 3},
		},
		{
			name:     "detection_uses_first_and_last_of_n",
			row:      []float64{0.5, 0.5, 0.5, 7},
			n:        3,
			nReturns: 10,
			// Only the first n entries matter; entry n-1 is 0.5, so the
			// row reads as uniform variates.
			expected: []int{5, 5, 5},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := NewFileSourceFromMatrix([][]float64{tt.row})
			got, err := src.Indices(0, tt.n, tt.nReturns)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFileSourceExhaustion(t *testing.T) {
	t.Parallel()

	src := NewFileSourceFromMatrix([][]float64{{1, 2, 3}})

	_, err := src.Indices(1, 3, 10)
	assert.ErrorIs(t, err, ErrIndexExhausted)

	_, err = src.Indices(0, 4, 10)
	assert.ErrorIs(t, err, ErrIndexExhausted)

	assert.Equal(t, 3, src.Steps())
	assert.Equal(t, 1, src.Draws())
}

func TestGeneratorSourceBounds(t *testing.T) {
	t.Parallel()

	src := NewGeneratorSource(42, "EURUSD", FMU)
	idx, err := src.Indices(0, 1000, 7)
	require.NoError(t, err)
	for _, i := range idx {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 7)
	}
	assert.Equal(t, -1, src.Steps())
}

func TestSeedForIndependence(t *testing.T) {
	t.Parallel()

	base := SeedFor(42, "EURUSD", FMU)
	assert.Equal(t, base, SeedFor(42, "EURUSD", FMU))
	assert.NotEqual(t, base, SeedFor(42, "EURUSD", Stressed))
	assert.NotEqual(t, base, SeedFor(42, "GBPUSD", FMU))
	assert.NotEqual(t, base, SeedFor(43, "EURUSD", FMU))
}

func TestItoTerm(t *testing.T) {
	t.Parallel()

	lr := []float64{0.01, -0.01, 0.01, -0.01}
	sigma := stats.PopStdDev(lr)
	got := ItoTerm(lr, 3)
	require.Len(t, got, 3)
	for i, v := range got {
		assert.InDelta(t, -0.5*sigma*sigma*float64(i+1), v, 1e-15)
	}
}

func TestStressedVolatility(t *testing.T) {
	t.Parallel()

	// Nine returns, window length 6 -> three windows of seven.
	lr := []float64{0.01, -0.02, 0.015, 0.005, -0.01, 0.02, -0.005, 0.01, -0.015}
	sds := []float64{
		stats.PopStdDev(lr[0:7]),
		stats.PopStdDev(lr[1:8]),
		stats.PopStdDev(lr[2:9]),
	}
	want := stats.Percentile(sds, 99)

	got, err := StressedVolatility(lr, 6)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-15)
}

func TestStressedVolatilityWindowTable(t *testing.T) {
	t.Parallel()

	lr := make([]float64, 80)
	for i := range lr {
		lr[i] = 0.01 * math.Sin(float64(i))
	}

	tests := []struct {
		name    string
		window  int
		wantErr bool
	}{
		{name: "window_12_p90", window: 12},
		{name: "window_16_p90", window: 16},
		{name: "window_63_p90", window: 63},
		{name: "window_6_p99", window: 6},
		{name: "window_8_p99", window: 8},
		{name: "window_21_p99", window: 21},
		{name: "window_10_undefined", window: 10, wantErr: true},
		{name: "window_0_undefined", window: 0, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sv, err := StressedVolatility(lr, tt.window)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Positive(t, sv)
		})
	}
}

func TestStressedVolatilityInsufficientData(t *testing.T) {
	t.Parallel()

	_, err := StressedVolatility([]float64{0.01, 0.02}, 21)
	assert.Error(t, err)
}

func TestRescaleAndShift(t *testing.T) {
	t.Parallel()

	lr := []float64{0.02, -0.01, 0.015, -0.025, 0.005}
	sv := 0.05
	rescaled := RescaleReturns(lr, sv)
	assert.InDelta(t, sv, stats.PopStdDev(rescaled), 1e-12)

	shift := ShiftTerm(rescaled, sv, 2)
	mu := stats.Mean(rescaled)
	assert.InDelta(t, -0.5*sv*sv-mu, shift[0], 1e-15)
	assert.InDelta(t, 2*(-0.5*sv*sv-mu), shift[1], 1e-15)
}

func TestPath(t *testing.T) {
	t.Parallel()

	returns := []float64{0.1, -0.2, 0.3}
	drift := []float64{-0.01, -0.02}
	got := Path([]int{2, 0}, returns, drift, 100)
	require.Len(t, got, 2)
	assert.InDelta(t, 100*math.Exp(0.3-0.01), got[0], 1e-9)
	assert.InDelta(t, 100*math.Exp(0.3+0.1-0.02), got[1], 1e-9)
}

func TestBuilderReproducibility(t *testing.T) {
	t.Parallel()

	series := histSeries(1.0, 1.01, 0.99, 1.02, 1.03, 1.0, 0.98, 1.01, 1.02, 0.99,
		1.0, 1.02, 1.01, 0.97, 1.0, 1.03, 1.01, 0.99, 1.0, 1.02)
	lr := LogReturns(series)

	build := func(family Family) *Ensemble {
		b := &Builder{Pair: "EURUSD", LogReturns: lr, Spot: 1.1, NSimulations: 50, Steps: 10, Workers: 4}
		src := NewGeneratorSource(42, "EURUSD", family)
		var e *Ensemble
		var err error
		if family == FMU {
			e, err = b.BuildFMU(src)
		} else {
			e, err = b.BuildStressed(src, 6)
		}
		require.NoError(t, err)
		return e
	}

	first := build(FMU)
	second := build(FMU)
	require.Equal(t, first.Paths, second.Paths)

	stressedOne := build(Stressed)
	stressedTwo := build(Stressed)
	require.Equal(t, stressedOne.Paths, stressedTwo.Paths)

	// Independent streams per family.
	assert.NotEqual(t, first.Paths, stressedOne.Paths)

	assert.Equal(t, 50, first.NSimulations())
	assert.Equal(t, 10, first.Steps())
}

func TestBuilderDeterministicFilePath(t *testing.T) {
	t.Parallel()

	// Two observations give one log return; every index points at it.
	series := histSeries(1.0, 1.1)
	lr := LogReturns(series)

	src := NewFileSourceFromMatrix([][]float64{{1, 1, 1}})
	b := &Builder{Pair: "EURUSD", LogReturns: lr, Spot: 1.0, NSimulations: 1, Steps: 3}
	e, err := b.BuildFMU(src)
	require.NoError(t, err)

	// Population std of a single return is 0, so the Ito term vanishes
	// and the path compounds the same return each day.
	r := math.Log(1.1)
	assert.InDelta(t, math.Exp(r), e.Paths[0][0], 1e-12)
	assert.InDelta(t, math.Exp(2*r), e.Paths[0][1], 1e-12)
	assert.InDelta(t, math.Exp(3*r), e.Paths[0][2], 1e-12)
}

func TestBuilderEmptyReturns(t *testing.T) {
	t.Parallel()

	b := &Builder{Pair: "EURUSD", LogReturns: nil, Spot: 1.0, NSimulations: 1, Steps: 3}
	_, err := b.BuildFMU(NewGeneratorSource(1, "EURUSD", FMU))
	assert.Error(t, err)
}

func TestLevelsAtDay(t *testing.T) {
	t.Parallel()

	e := &Ensemble{Pair: "EURUSD", Family: FMU, Paths: [][]float64{{1, 2, 3}, {4, 5, 6}}}

	levels, err := e.LevelsAtDay(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, levels)

	_, err = e.LevelsAtDay(0)
	assert.Error(t, err)
	_, err = e.LevelsAtDay(4)
	assert.Error(t, err)
}
