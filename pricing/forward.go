package pricing

import "math"

// ForwardStrike returns the covered-interest-parity forward rate
// spot * (1+yDom/n)^(nT) / (1+yFor/n)^(nT) with n compounding periods
// per year.
func ForwardStrike(spot, yieldFor, yieldDom, t float64, periods int) float64 {
	n := float64(periods)
	return spot * math.Pow(1+yieldDom/n, n*t) / math.Pow(1+yieldFor/n, n*t)
}

// ForwardRate returns the accrual ratio (1+y2)^T2 / (1+y1)^T1 between
// two horizons on the same curve.
func ForwardRate(y1, t1, y2, t2 float64) float64 {
	return math.Pow(1+y2, t2) / math.Pow(1+y1, t1)
}
