// Package market holds the FX observables the scenario engine consumes:
// spot rates, yield curves, ATM and 25-delta volatility curves, and
// historical rate series. Data is loaded from CSV files or a SQLite
// store into one immutable Data set; a Snapshot binds that data to the
// currency-pair mapping and answers interpolated lookups.
package market

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/interp"
)

// TenorPoint is one observation on a curve, keyed by tenor in days.
type TenorPoint struct {
	Days  float64
	Value float64
}

// Curve is a tenor-ordered set of observations.
type Curve []TenorPoint

// DeltaVolCurve is a 25-delta strangle or risk-reversal quote curve.
// DeltaFlag names the delta convention the quotes were made under
// (SPOT, FORWARD or SPOT-719-FORWARD).
type DeltaVolCurve struct {
	Points    Curve
	Delta     float64
	DeltaFlag string
}

// HistoricalRate is one historical spot observation.
type HistoricalRate struct {
	Date time.Time
	Rate float64
}

// Data is the full loaded market-data set. Keys: spots and historical
// rates by currency pair (FOR+DOM, e.g. "EURUSD"); yields by curve name;
// vol curves by curve name and counter currency.
type Data struct {
	Spots         map[string]float64
	Yields        map[string]Curve
	ATMVols       map[string]Curve
	Strangles     map[string]DeltaVolCurve
	RiskReversals map[string]DeltaVolCurve
	Historical    map[string][]HistoricalRate
}

// NewData returns an empty data set with all maps allocated.
func NewData() *Data {
	return &Data{
		Spots:         make(map[string]float64),
		Yields:        make(map[string]Curve),
		ATMVols:       make(map[string]Curve),
		Strangles:     make(map[string]DeltaVolCurve),
		RiskReversals: make(map[string]DeltaVolCurve),
		Historical:    make(map[string][]HistoricalRate),
	}
}

// PairKey builds the map key for a currency pair.
func PairKey(forCcy, domCcy string) string {
	return forCcy + domCcy
}

// VolKey builds the map key for a vol curve quoted against a counter
// currency.
func VolKey(curve, counter string) string {
	return curve + "|" + counter
}

// PairMapping routes one currency pair to its curve names.
type PairMapping struct {
	YieldCurve map[string]string `json:"yield_curve" yaml:"yield_curve"`
	VolCurve   string            `json:"vol_curve" yaml:"vol_curve"`
}

// Mapping routes every in-scope currency pair to curve names, keyed by
// PairKey.
type Mapping map[string]PairMapping

// Snapshot answers interpolated market lookups for one run.
type Snapshot struct {
	data    *Data
	mapping Mapping
}

// NewSnapshot binds loaded data to the pair mapping.
func NewSnapshot(data *Data, mapping Mapping) *Snapshot {
	return &Snapshot{data: data, mapping: mapping}
}

// Spot returns the current rate for the pair.
func (s *Snapshot) Spot(forCcy, domCcy string) (float64, error) {
	rate, ok := s.data.Spots[PairKey(forCcy, domCcy)]
	if !ok {
		return 0, fmt.Errorf("no spot rate for %s/%s", forCcy, domCcy)
	}
	return rate, nil
}

// Yield returns the interpolated yield for one currency leg of a pair at
// the given tenor. Linear interpolation; errors outside the quoted range.
func (s *Snapshot) Yield(pair, ccy string, tenorDays float64) (float64, error) {
	pm, ok := s.mapping[pair]
	if !ok {
		return 0, fmt.Errorf("no mapping for pair %s", pair)
	}
	name, ok := pm.YieldCurve[ccy]
	if !ok {
		return 0, fmt.Errorf("no yield curve mapped for %s on pair %s", ccy, pair)
	}
	curve, ok := s.data.Yields[name]
	if !ok {
		return 0, fmt.Errorf("yield curve %s not loaded", name)
	}
	v, err := interpolate(curve, tenorDays, false)
	if err != nil {
		return 0, fmt.Errorf("yield curve %s: %w", name, err)
	}
	return v, nil
}

// ATMVol returns the interpolated at-the-money volatility for the pair
// quoted against the counter currency.
func (s *Snapshot) ATMVol(pair, counter string, tenorDays float64) (float64, error) {
	pm, ok := s.mapping[pair]
	if !ok {
		return 0, fmt.Errorf("no mapping for pair %s", pair)
	}
	curve, ok := s.data.ATMVols[VolKey(pm.VolCurve, counter)]
	if !ok {
		return 0, fmt.Errorf("ATM vol curve %s not loaded for counter %s", pm.VolCurve, counter)
	}
	v, err := interpolate(curve, tenorDays, true)
	if err != nil {
		return 0, fmt.Errorf("ATM vol curve %s: %w", pm.VolCurve, err)
	}
	return v, nil
}

// StrangleVol returns the interpolated 25-delta market-strangle vol and
// the delta convention flag of the quoting curve.
func (s *Snapshot) StrangleVol(pair, counter string, tenorDays float64) (float64, string, error) {
	return s.deltaVol(s.data.Strangles, "strangle", pair, counter, tenorDays)
}

// RiskReversalVol returns the interpolated 25-delta risk-reversal vol and
// the delta convention flag of the quoting curve.
func (s *Snapshot) RiskReversalVol(pair, counter string, tenorDays float64) (float64, string, error) {
	return s.deltaVol(s.data.RiskReversals, "risk reversal", pair, counter, tenorDays)
}

func (s *Snapshot) deltaVol(curves map[string]DeltaVolCurve, kind, pair, counter string, tenorDays float64) (float64, string, error) {
	pm, ok := s.mapping[pair]
	if !ok {
		return 0, "", fmt.Errorf("no mapping for pair %s", pair)
	}
	dc, ok := curves[VolKey(pm.VolCurve, counter)]
	if !ok {
		return 0, "", fmt.Errorf("%s curve %s not loaded for counter %s", kind, pm.VolCurve, counter)
	}
	v, err := interpolate(dc.Points, tenorDays, true)
	if err != nil {
		return 0, "", fmt.Errorf("%s curve %s: %w", kind, pm.VolCurve, err)
	}
	return v, dc.DeltaFlag, nil
}

// Historical returns the historical rate series for the pair, sorted by
// ascending date. An empty slice means the pair cannot be simulated this
// run and must rely on a pre-existing path file.
func (s *Snapshot) Historical(forCcy, domCcy string) []HistoricalRate {
	series := s.data.Historical[PairKey(forCcy, domCcy)]
	out := make([]HistoricalRate, len(series))
	copy(out, series)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SpotByPair is Spot keyed by the pair key, for callers that only hold
// the key (the orchestrator groups products by pair).
func (s *Snapshot) SpotByPair(pair string) (float64, error) {
	rate, ok := s.data.Spots[pair]
	if !ok {
		return 0, fmt.Errorf("no spot rate for pair %s", pair)
	}
	return rate, nil
}

// HistoricalByPair is Historical keyed by the pair key.
func (s *Snapshot) HistoricalByPair(pair string) []HistoricalRate {
	series := s.data.Historical[pair]
	out := make([]HistoricalRate, len(series))
	copy(out, series)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// interpolate evaluates a curve at the given tenor. Vol curves use an
// Akima spline when enough points exist; yield curves (and short vol
// curves) use piecewise-linear interpolation. Tenors outside the quoted
// range are an error rather than an extrapolation.
func interpolate(curve Curve, tenorDays float64, spline bool) (float64, error) {
	if len(curve) == 0 {
		return 0, fmt.Errorf("empty curve")
	}
	if len(curve) == 1 {
		if tenorDays != curve[0].Days {
			return 0, fmt.Errorf("tenor %g outside single-point curve", tenorDays)
		}
		return curve[0].Value, nil
	}

	sorted := make(Curve, len(curve))
	copy(sorted, curve)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Days < sorted[j].Days })

	if tenorDays < sorted[0].Days || tenorDays > sorted[len(sorted)-1].Days {
		return 0, fmt.Errorf("tenor %g outside quoted range [%g, %g]",
			tenorDays, sorted[0].Days, sorted[len(sorted)-1].Days)
	}

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		xs[i] = p.Days
		ys[i] = p.Value
	}

	var pred interp.FittablePredictor
	if spline && len(xs) >= 3 {
		pred = &interp.AkimaSpline{}
	} else {
		pred = &interp.PiecewiseLinear{}
	}
	if err := pred.Fit(xs, ys); err != nil {
		return 0, fmt.Errorf("fit curve: %w", err)
	}
	return pred.Predict(tenorDays), nil
}
