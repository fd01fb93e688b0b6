// Package stats provides the small set of descriptive statistics the
// scenario engine relies on. Mean and population standard deviation are
// thin wrappers over gonum; Percentile implements the linear-interpolation
// rule so scenario percentiles match the regulatory reference values.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// PopStdDev returns the population standard deviation (divisor N, not N-1).
func PopStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(xs, nil))
}

// Percentile returns the p-th percentile of xs (0 <= p <= 100) using
// linear interpolation between closest ranks: the value at fractional
// position p/100*(n-1) in the sorted sample. The input is not modified.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	if len(xs) == 1 {
		return xs[0]
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo, hi = 0, 0
	}
	if hi > len(sorted)-1 {
		lo, hi = len(sorted)-1, len(sorted)-1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// CumSum returns the running sum of xs in a new slice.
func CumSum(xs []float64) []float64 {
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		sum += x
		out[i] = sum
	}
	return out
}
