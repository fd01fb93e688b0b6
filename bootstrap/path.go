package bootstrap

import "math"

// Path builds one simulated price path: spot * exp(cumsum(returns[indices])
// + drift). The same construction serves both families; the caller picks
// resampled plain returns with the Ito term, or rescaled returns with the
// shift term.
func Path(indices []int, returns, drift []float64, spot float64) []float64 {
	out := make([]float64, len(indices))
	var cum float64
	for i, idx := range indices {
		cum += returns[idx]
		out[i] = spot * math.Exp(cum+drift[i])
	}
	return out
}
