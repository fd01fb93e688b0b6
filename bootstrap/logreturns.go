// Package bootstrap builds Monte Carlo price-path ensembles for FX pairs
// by resampling historical daily log-returns. It covers the two scenario
// families of the KID methodology: the plain bootstrap with an Ito drift
// correction (FMU) and the stressed bootstrap with rescaled returns and a
// shift term (S).
package bootstrap

import (
	"math"
	"sort"

	"github.com/rustyeddy/priips/market"
)

// LogReturns derives the daily log-return series from a historical rate
// series. Observations are sorted by ascending date first; the first
// observation has no return. An empty or single-observation series yields
// an empty result, which marks the pair as not simulatable this run.
func LogReturns(series []market.HistoricalRate) []float64 {
	if len(series) < 2 {
		return nil
	}

	sorted := make([]market.HistoricalRate, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		out = append(out, math.Log(sorted[i].Rate)-math.Log(sorted[i-1].Rate))
	}
	return out
}
