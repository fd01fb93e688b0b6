package pricing

import (
	"fmt"
	"math"
)

// Malz smile coefficients (fixed, not calibrated).
const (
	malzBeta0 = 1.0
	malzBeta1 = -2.0
	malzBeta2 = 16.0
)

// DeltaConvention selects how option deltas relate to strikes.
type DeltaConvention int

const (
	SpotDelta DeltaConvention = iota
	ForwardDelta
	// Spot719Forward quotes spot delta up to 719 trading days and
	// forward delta beyond.
	Spot719Forward
)

// ParseDeltaConvention parses the quoting-convention flag carried on
// delta vol curves.
func ParseDeltaConvention(s string) (DeltaConvention, error) {
	switch s {
	case "SPOT":
		return SpotDelta, nil
	case "FORWARD":
		return ForwardDelta, nil
	case "SPOT-719-FORWARD":
		return Spot719Forward, nil
	}
	return 0, fmt.Errorf("unknown delta convention %q", s)
}

// MalzVol interpolates the smile volatility at an arbitrary delta (in
// percent, e.g. 40) from the ATM vol and the 25-delta risk-reversal and
// market-strangle quotes.
func MalzVol(atmVol, rr25, ms25, delta float64) float64 {
	x := delta/100 - 0.5
	return malzBeta0*atmVol + malzBeta1*rr25*x + malzBeta2*ms25*x*x
}

// MalzStrikeForDelta inverts a delta (in percent) into a strike under
// the given quoting convention. tradingDays resolves the hybrid
// Spot719Forward convention; deltas above 50 are mapped through the
// put side.
func MalzStrikeForDelta(spot, vol, yieldFor, yieldDom, t float64, delta float64, conv DeltaConvention, tradingDays int) (float64, error) {
	fwdFactor := math.Exp((yieldDom - yieldFor) * t)

	if delta == 50 {
		return spot * fwdFactor * math.Exp(0.5*vol*vol*t), nil
	}

	switch conv {
	case Spot719Forward:
		if tradingDays <= 719 {
			conv = SpotDelta
		} else {
			conv = ForwardDelta
		}
	case SpotDelta, ForwardDelta:
	default:
		return 0, fmt.Errorf("unknown delta convention %d", conv)
	}

	phi := 1.0
	d := delta
	if delta > 50 {
		phi = -1.0
		d = -(100 - delta)
	}

	arg := phi * d / 100
	if conv == SpotDelta {
		arg *= math.Exp(yieldFor * t)
	}
	if arg <= 0 || arg >= 1 {
		return 0, fmt.Errorf("delta %g not invertible under convention: quantile argument %g outside (0,1)", delta, arg)
	}

	alpha := stdNormal.Quantile(arg)
	return spot * fwdFactor * math.Exp(-phi*alpha*vol*math.Sqrt(t)+0.5*vol*vol*t), nil
}
