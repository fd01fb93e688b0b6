package product

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
)

// RegulatoryNotional is the standardized investment amount every KID
// scenario table is expressed against.
const RegulatoryNotional = 10000.0

// Base carries the trade economics and derived state shared by all
// variants.
type Base struct {
	index int
	id    string

	TradeDate time.Time
	CcyFor    string
	CcyDom    string
	CcySettle string
	Position  Position
	TenorRHP  string
	Cost      float64
	MRM       int
	CRM       int
	SRI       int

	tenor          dates.Tenor
	spotDate       time.Time
	settlementDate time.Time
	fixingDate     time.Time
	tRHP           float64
	tenorDays      float64
	nDaysRHP       int
	spot           float64

	payoffFMU      []float64
	payoffStressed []float64

	GrossAmounts     ScenarioSet
	NetAmounts       ScenarioSet
	NetReturns       ScenarioSet
	RIY              float64
	ScalingFactor    float64
	NotionalInvested float64
	TotalCostsRHP    float64

	failure *Failure
}

func (b *Base) ID() string            { return b.id }
func (b *Base) Pair() string          { return market.PairKey(b.CcyFor, b.CcyDom) }
func (b *Base) NTradingDaysRHP() int  { return b.nDaysRHP }
func (b *Base) TruncateRHP(steps int) { b.nDaysRHP = steps }
func (b *Base) Failed() bool          { return b.failure != nil }

func (b *Base) Err() error {
	if b.failure == nil {
		return nil
	}
	return b.failure
}

func (b *Base) fail(kind string, err error) error {
	b.failure = &Failure{Kind: kind, ProductID: b.id, Err: err}
	return b.failure
}

// Fail marks the product as failed with a structured instrument-local
// error. Used by callers that reject a product before or outside its own
// pre-processing, e.g. a malformed trade description.
func (b *Base) Fail(kind string, err error) error { return b.fail(kind, err) }

// prepDates resolves the trade-date chain: spot = trade + 2 business
// days, settlement = spot + RHP tenor, fixing = settlement for
// deliverable trades or settlement - 2 business days for NDFs. Year
// fraction is ACT/ACT from trade to fixing; the trading-day count is
// the NETWORKDAYS count from trade to fixing, inclusive on both ends,
// and payoffs read the path at that (1-based) trading day.
func (b *Base) prepDates(cal *dates.Calendar, deliverable bool) error {
	tenor, err := dates.ParseTenor(b.TenorRHP)
	if err != nil {
		return b.fail(FailTenor, err)
	}
	b.tenor = tenor

	b.spotDate = cal.AddTenor(b.TradeDate, dates.Tenor{N: 2, Unit: dates.Day})
	b.settlementDate = cal.AddTenor(b.spotDate, tenor)
	if deliverable {
		b.fixingDate = b.settlementDate
	} else {
		b.fixingDate = cal.AddTenor(b.settlementDate, dates.Tenor{N: -2, Unit: dates.Day})
	}

	b.tRHP = dates.YearFraction(b.TradeDate, b.fixingDate, dates.ActAct)
	b.tenorDays = math.Floor(b.tRHP * 360)
	b.nDaysRHP = cal.TradingDays(b.TradeDate, b.fixingDate)
	if b.nDaysRHP < 1 {
		return b.fail(FailTenor, fmt.Errorf("tenor %s yields %d trading days", b.TenorRHP, b.nDaysRHP))
	}
	return nil
}

func (b *Base) prepSpot(snap *market.Snapshot) error {
	spot, err := snap.Spot(b.CcyFor, b.CcyDom)
	if err != nil {
		return b.fail(FailMarketData, err)
	}
	b.spot = spot
	return nil
}

// yield looks up the interpolated yield of one currency leg at the RHP
// tenor.
func (b *Base) yield(snap *market.Snapshot, ccy string) (float64, error) {
	return snap.Yield(b.Pair(), ccy, b.tenorDays)
}

// settleForeign reports whether the trade settles in the foreign leg.
// Pre-processing must already have verified the settlement currency is
// one of the two legs.
func (b *Base) settleForeign() bool { return b.CcySettle == b.CcyFor }

func (b *Base) checkSettlement() error {
	if b.CcySettle != b.CcyFor && b.CcySettle != b.CcyDom {
		return b.fail(FailCurrencyWiring,
			fmt.Errorf("settlement currency %s is neither %s nor %s", b.CcySettle, b.CcyFor, b.CcyDom))
	}
	return nil
}

// evaluateAt computes the payoff vectors from the levels of both
// ensembles at the given trading day.
func (b *Base) evaluateAt(fmu, stressed *bootstrap.Ensemble, day int, eval func(levels []float64) []float64) error {
	fmuLevels, err := fmu.LevelsAtDay(day)
	if err != nil {
		return b.fail(FailPayoff, err)
	}
	stressedLevels, err := stressed.LevelsAtDay(day)
	if err != nil {
		return b.fail(FailPayoff, err)
	}
	b.payoffFMU = eval(fmuLevels)
	b.payoffStressed = eval(stressedLevels)
	return nil
}

func (b *Base) aggregateGrossBase() error {
	if b.payoffFMU == nil || b.payoffStressed == nil {
		return b.fail(FailPayoff, fmt.Errorf("payoffs not evaluated"))
	}
	b.GrossAmounts = aggregate(b.payoffFMU, b.payoffStressed)
	return nil
}

// mapSet applies f to every scenario value.
func mapSet(s ScenarioSet, f func(float64) float64) ScenarioSet {
	return ScenarioSet{
		Favourable:   f(s.Favourable),
		Moderate:     f(s.Moderate),
		Unfavourable: f(s.Unfavourable),
		Stressed:     f(s.Stressed),
	}
}

// netForwardStyle is the net cascade shared by forwards, swaps and
// option-dated forwards: scale the notional by 1/(1+cost), express each
// gross amount as a growth factor and annualize the moderate-scenario
// cost drag.
func (b *Base) netForwardStyle() {
	b.ScalingFactor = 1 / (1 + b.Cost)
	b.TotalCostsRHP = RegulatoryNotional * b.ScalingFactor * b.Cost
	b.NotionalInvested = RegulatoryNotional * b.ScalingFactor

	fFX := func(gross float64) float64 { return gross/RegulatoryNotional + 1 }

	b.NetAmounts = mapSet(b.GrossAmounts, func(g float64) float64 {
		return fFX(g)*b.NotionalInvested - RegulatoryNotional
	})
	b.NetReturns = mapSet(b.GrossAmounts, func(g float64) float64 {
		return fFX(g)/(1+b.Cost) - 1
	})

	fFXMod := fFX(b.GrossAmounts.Moderate)
	invT := 1 / b.tRHP
	b.RIY = math.Pow(fFXMod, invT) - math.Pow(fFXMod/(1+b.Cost), invT)
}

// PayoffVectors exposes the raw per-path payoffs for the optional
// diagnostic dump.
func (b *Base) PayoffVectors() (fmu, stressed []float64) {
	return b.payoffFMU, b.payoffStressed
}

// Spot returns the pre-processed spot rate.
func (b *Base) Spot() float64 { return b.spot }

// YearFractionRHP returns the ACT/ACT year fraction of the holding
// period.
func (b *Base) YearFractionRHP() float64 { return b.tRHP }

// SettlementDateValue returns the settlement date resolved during
// pre-processing.
func (b *Base) SettlementDateValue() time.Time { return b.settlementDate }

// FixingDateValue returns the fixing date resolved during
// pre-processing.
func (b *Base) FixingDateValue() time.Time { return b.fixingDate }
