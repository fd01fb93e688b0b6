package bootstrap

import (
	"fmt"

	"github.com/rustyeddy/priips/internal/stats"
)

// ItoTerm returns the risk-neutral drift correction for the FMU family:
// -0.5 * popstd(logReturns)^2 * [1, 2, ..., n].
func ItoTerm(logReturns []float64, n int) []float64 {
	sigma := stats.PopStdDev(logReturns)
	out := make([]float64, n)
	for i := range out {
		out[i] = -0.5 * sigma * sigma * float64(i+1)
	}
	return out
}

// StressedVolatility estimates the stressed volatility as a high
// percentile of rolling-window standard deviations of the log-return
// series. Each window spans windowLength+1 consecutive returns. The
// percentile is 90 for window lengths {12, 16, 63} and 99 for
// {6, 8, 21}; any other window length is an error.
func StressedVolatility(logReturns []float64, windowLength int) (float64, error) {
	var pct float64
	switch windowLength {
	case 12, 16, 63:
		pct = 90
	case 6, 8, 21:
		pct = 99
	default:
		return 0, fmt.Errorf("no stressed-volatility percentile defined for window length %d", windowLength)
	}

	window := windowLength + 1
	if len(logReturns) < window {
		return 0, fmt.Errorf("need at least %d log returns for window length %d, have %d",
			window, windowLength, len(logReturns))
	}

	sds := make([]float64, 0, len(logReturns)-window+1)
	for i := 0; i+window <= len(logReturns); i++ {
		sds = append(sds, stats.PopStdDev(logReturns[i:i+window]))
	}

	return stats.Percentile(sds, pct), nil
}

// RescaleReturns scales the log-return series so its population standard
// deviation equals the stressed volatility.
func RescaleReturns(logReturns []float64, stressedVol float64) []float64 {
	sigma := stats.PopStdDev(logReturns)
	out := make([]float64, len(logReturns))
	for i, r := range logReturns {
		out[i] = r * stressedVol / sigma
	}
	return out
}

// ShiftTerm returns the drift correction for the stressed family:
// -0.5*stressedVol^2*[1..n] - mean(rescaledReturns)*[1..n].
func ShiftTerm(rescaledReturns []float64, stressedVol float64, n int) []float64 {
	mu := stats.Mean(rescaledReturns)
	out := make([]float64, n)
	for i := range out {
		k := float64(i + 1)
		out[i] = -0.5*stressedVol*stressedVol*k - mu*k
	}
	return out
}
