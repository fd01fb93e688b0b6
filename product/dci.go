package product

import (
	"fmt"
	"math"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
	"github.com/rustyeddy/priips/pricing"
)

// DCI sub-types: whether the enhanced coupon itself is exposed to the
// short option outcome.
const (
	InterestAtRisk    = "InterestAtRisk"
	InterestNotAtRisk = "InterestNotAtRisk"
)

// DualCurrencyInvestment is a deposit enhanced by the premium of a short
// call struck at the Malz 40-delta strike. The position is always short
// and the option is always a call on the regulatory notional.
type DualCurrencyInvestment struct {
	Base

	SubType string

	Vol40       float64
	Strike40    float64
	OptionValue float64
	DepositRate float64
	DeltaFlag   string

	GrossEnhancedCoupon   float64
	EnhancedCoupon        float64
	GrossEnhancedNotional float64
	EnhancedNotional      float64

	ShortOptionGross ScenarioSet
}

func (d *DualCurrencyInvestment) Kind() string { return "FX_DCI" }

func (d *DualCurrencyInvestment) SetIndex(i int) {
	d.index = i
	d.id = fmt.Sprintf("FX-DCI-%s-%s-%s-%d", d.SubType, d.CcyFor, d.CcyDom, i)
}

func (d *DualCurrencyInvestment) counterCurrency() string {
	if d.CcyFor == "XAU" {
		return "XAU"
	}
	return d.CcyDom
}

func (d *DualCurrencyInvestment) PreProcess(snap *market.Snapshot, cal *dates.Calendar) error {
	if d.Failed() {
		return d.Err()
	}

	d.Position = Short

	if d.SubType != InterestAtRisk && d.SubType != InterestNotAtRisk {
		return d.fail(FailUnknownType, fmt.Errorf("unknown DCI sub-type %q", d.SubType))
	}

	if err := d.prepDates(cal, true); err != nil {
		return err
	}
	if err := d.checkSettlement(); err != nil {
		return err
	}
	if err := d.prepSpot(snap); err != nil {
		return err
	}

	yFor, err := d.yield(snap, d.CcyFor)
	if err != nil {
		return d.fail(FailMarketData, err)
	}
	yDom, err := d.yield(snap, d.CcyDom)
	if err != nil {
		return d.fail(FailMarketData, err)
	}

	counter := d.counterCurrency()
	atm, err := snap.ATMVol(d.Pair(), counter, d.tenorDays)
	if err != nil {
		return d.fail(FailMarketData, err)
	}
	ms, msFlag, err := snap.StrangleVol(d.Pair(), counter, d.tenorDays)
	if err != nil {
		return d.fail(FailMarketData, err)
	}
	rr, rrFlag, err := snap.RiskReversalVol(d.Pair(), counter, d.tenorDays)
	if err != nil {
		return d.fail(FailMarketData, err)
	}
	if msFlag != rrFlag {
		return d.fail(FailDeltaFlag,
			fmt.Errorf("strangle delta flag %q disagrees with risk-reversal flag %q", msFlag, rrFlag))
	}
	conv, err := pricing.ParseDeltaConvention(msFlag)
	if err != nil {
		return d.fail(FailDeltaFlag, err)
	}
	d.DeltaFlag = msFlag

	d.Vol40 = pricing.MalzVol(atm, rr, ms, 40)
	strike, err := pricing.MalzStrikeForDelta(d.spot, d.Vol40, yFor, yDom, d.tRHP, 40, conv, d.nDaysRHP)
	if err != nil {
		return d.fail(FailMarketData, err)
	}
	d.Strike40 = strike

	value, err := pricing.GarmanKohlhagen(pricing.GKInput{
		Spot: d.spot, Strike: d.Strike40, Vol: d.Vol40,
		YieldFor: yFor, YieldDom: yDom, T: d.tRHP,
		Type:   pricing.Call,
		CcyFor: d.CcyFor, CcyDom: d.CcyDom, CcySettle: d.CcySettle,
		CallAmount: RegulatoryNotional,
	})
	if err != nil {
		return d.fail(FailMarketData, err)
	}
	d.OptionValue = value

	dr, err := d.yield(snap, d.CcySettle)
	if err != nil {
		return d.fail(FailMarketData, err)
	}
	d.DepositRate = dr

	d.ScalingFactor = 1
	d.TotalCostsRHP = RegulatoryNotional * d.Cost
	d.NotionalInvested = RegulatoryNotional

	premium := d.OptionValue / RegulatoryNotional
	deposit := d.DepositRate * d.tRHP
	switch d.SubType {
	case InterestNotAtRisk:
		d.GrossEnhancedCoupon = deposit + premium
		d.EnhancedCoupon = d.GrossEnhancedCoupon - d.Cost
		d.GrossEnhancedNotional = RegulatoryNotional
		d.EnhancedNotional = RegulatoryNotional
	case InterestAtRisk:
		d.GrossEnhancedCoupon = deposit + premium*(1+deposit+premium)
		d.EnhancedCoupon = d.GrossEnhancedCoupon - d.Cost
		d.GrossEnhancedNotional = RegulatoryNotional * (1 + d.GrossEnhancedCoupon)
		d.EnhancedNotional = RegulatoryNotional * (1 + d.EnhancedCoupon)
	}

	return nil
}

func (d *DualCurrencyInvestment) EvaluatePayoffs(fmu, stressed *bootstrap.Ensemble) error {
	if d.Failed() {
		return d.Err()
	}
	return d.evaluateAt(fmu, stressed, d.nDaysRHP, func(levels []float64) []float64 {
		return optionPayoff(levels, d.Strike40, RegulatoryNotional, d.settleForeign(), callType, Short)
	})
}

func (d *DualCurrencyInvestment) AggregateGross() error {
	if d.Failed() {
		return d.Err()
	}
	if d.payoffFMU == nil || d.payoffStressed == nil {
		return d.fail(FailPayoff, fmt.Errorf("payoffs not evaluated"))
	}

	d.ShortOptionGross = aggregate(d.payoffFMU, d.payoffStressed)

	switch d.SubType {
	case InterestNotAtRisk:
		d.GrossAmounts = mapSet(d.ShortOptionGross, func(short float64) float64 {
			return RegulatoryNotional * (1 + d.GrossEnhancedCoupon + short/d.GrossEnhancedNotional)
		})
	case InterestAtRisk:
		d.GrossAmounts = mapSet(d.ShortOptionGross, func(short float64) float64 {
			return RegulatoryNotional*(1+d.GrossEnhancedCoupon) + short*d.GrossEnhancedNotional/RegulatoryNotional
		})
	}
	return nil
}

func (d *DualCurrencyInvestment) AggregateNet() error {
	if d.Failed() {
		return d.Err()
	}

	fFX := func(short float64) float64 { return short / RegulatoryNotional }

	switch d.SubType {
	case InterestNotAtRisk:
		d.NetAmounts = mapSet(d.ShortOptionGross, func(short float64) float64 {
			return RegulatoryNotional * (1 + d.EnhancedCoupon + fFX(short))
		})
		d.NetReturns = mapSet(d.ShortOptionGross, func(short float64) float64 {
			return d.EnhancedCoupon + fFX(short)
		})
	case InterestAtRisk:
		d.NetAmounts = mapSet(d.ShortOptionGross, func(short float64) float64 {
			return RegulatoryNotional * (1 + d.EnhancedCoupon) * (1 + fFX(short))
		})
		d.NetReturns = mapSet(d.ShortOptionGross, func(short float64) float64 {
			return d.EnhancedCoupon + fFX(short)*(1+d.EnhancedCoupon)
		})
	}

	fFXMod := fFX(d.ShortOptionGross.Moderate)
	invT := 1 / d.tRHP
	switch d.SubType {
	case InterestNotAtRisk:
		d.RIY = math.Pow(1+fFXMod+d.GrossEnhancedCoupon, invT) -
			math.Pow(1+fFXMod+d.EnhancedCoupon, invT)
	case InterestAtRisk:
		d.RIY = math.Pow(1+fFXMod*(1+d.GrossEnhancedCoupon)+d.GrossEnhancedCoupon, invT) -
			math.Pow(1+fFXMod*(1+d.EnhancedCoupon)+d.EnhancedCoupon, invT)
	}
	return nil
}

func (d *DualCurrencyInvestment) REORecord() []string {
	return d.reoRecord("FX_DCI", map[string]string{
		"Subtype":     d.SubType,
		"OptionType":  "Call",
		"Strike":      reoFloat(d.Strike40),
		"OptionValue": reoFloat(d.OptionValue),
		"DepositRate": reoFloat(d.DepositRate),
	})
}

func (d *DualCurrencyInvestment) Attributes() map[string]string {
	attrs := d.baseAttributes("FX Dual Currency Investment", d.SubType)
	attrs["PutCall"] = "Call"
	attrs["TriggerRate"] = reoFloat(d.Strike40)
	attrs["LowerTriggerRate"] = "N/A"
	attrs["UpperTriggerRate"] = "N/A"
	attrs["BuyCurrency"] = d.CcySettle
	attrs["SecondCurrency"] = d.CcyDom
	attrs["BuyAmount"] = reoFloat(RegulatoryNotional)
	return attrs
}

func (d *DualCurrencyInvestment) LogFields() map[string]any {
	fields := d.baseLogFields("FX_DCI")
	fields["sub_type"] = d.SubType
	fields["vol_40"] = d.Vol40
	fields["strike_40"] = d.Strike40
	fields["option_value"] = d.OptionValue
	fields["deposit_rate"] = d.DepositRate
	fields["delta_flag"] = d.DeltaFlag
	fields["gross_enhanced_coupon"] = d.GrossEnhancedCoupon
	fields["enhanced_coupon"] = d.EnhancedCoupon
	fields["gross_enhanced_notional"] = d.GrossEnhancedNotional
	fields["enhanced_notional"] = d.EnhancedNotional
	fields["short_option_gross"] = d.ShortOptionGross
	return fields
}
