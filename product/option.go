package product

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
	"github.com/rustyeddy/priips/pricing"
)

// Option is a vanilla FX option struck at the forward rate and premium-
// valued with Garman-Kohlhagen at the ATM volatility. Short positions
// additionally carry the settlement-leg yield for discounting the
// premium in the net cascade.
type Option struct {
	Base

	OptionType   pricing.OptionType
	CallCurrency string
	PutCurrency  string
	CallAmount   *float64
	PutAmount    *float64

	Strike       float64
	Vol          float64
	OptionValue  float64
	DiscountRate float64

	settlementWithLag time.Time
}

func (o *Option) Kind() string { return "FX_Option" }

func (o *Option) SetIndex(i int) {
	o.index = i
	o.id = fmt.Sprintf("FX-Option-%s-%s-%s-%s-%d",
		o.OptionType, o.CcyFor, o.CcyDom, o.Position, i)
}

// counterCurrency picks the quoting counter for vol lookups. Gold pairs
// quote against XAU itself.
func (o *Option) counterCurrency() string {
	if o.CcyFor == "XAU" {
		return "XAU"
	}
	return o.CcyDom
}

func (o *Option) PreProcess(snap *market.Snapshot, cal *dates.Calendar) error {
	if o.Failed() {
		return o.Err()
	}

	// Expiry coincides with the settlement date; physical settlement
	// lags two business days behind it.
	if err := o.prepDates(cal, true); err != nil {
		return err
	}
	o.settlementWithLag = cal.AddTenor(o.settlementDate, dates.Tenor{N: 2, Unit: dates.Day})

	if o.CallCurrency != o.CcyFor {
		return o.fail(FailCurrencyWiring,
			fmt.Errorf("call currency %s must be the foreign leg %s", o.CallCurrency, o.CcyFor))
	}
	if o.PutCurrency != o.CcyDom {
		return o.fail(FailCurrencyWiring,
			fmt.Errorf("put currency %s must be the domestic leg %s", o.PutCurrency, o.CcyDom))
	}
	if err := o.checkSettlement(); err != nil {
		return err
	}

	if err := o.prepSpot(snap); err != nil {
		return err
	}
	yFor, err := o.yield(snap, o.CcyFor)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	yDom, err := o.yield(snap, o.CcyDom)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	o.Strike = pricing.ForwardStrike(o.spot, yFor, yDom, o.tRHP, 1)

	switch {
	case o.PutAmount == nil && o.CallAmount != nil:
		put := *o.CallAmount * o.Strike
		o.PutAmount = &put
	case o.CallAmount == nil && o.PutAmount != nil:
		call := *o.PutAmount / o.Strike
		o.CallAmount = &call
	default:
		return o.fail(FailAmounts,
			fmt.Errorf("exactly one of call and put amounts must be preset"))
	}

	vol, err := snap.ATMVol(o.Pair(), o.counterCurrency(), o.tenorDays)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	o.Vol = vol

	value, err := pricing.GarmanKohlhagen(pricing.GKInput{
		Spot: o.spot, Strike: o.Strike, Vol: o.Vol,
		YieldFor: yFor, YieldDom: yDom, T: o.tRHP,
		Type:   o.OptionType,
		CcyFor: o.CcyFor, CcyDom: o.CcyDom, CcySettle: o.CcySettle,
		CallAmount: *o.CallAmount,
	})
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	o.OptionValue = value

	if o.Position == Short {
		dr, err := o.yield(snap, o.CcySettle)
		if err != nil {
			return o.fail(FailMarketData, err)
		}
		o.DiscountRate = dr
	}

	return nil
}

func (o *Option) EvaluatePayoffs(fmu, stressed *bootstrap.Ensemble) error {
	if o.Failed() {
		return o.Err()
	}
	optType := callType
	if o.OptionType == pricing.Put {
		optType = putType
	}
	return o.evaluateAt(fmu, stressed, o.nDaysRHP, func(levels []float64) []float64 {
		return optionPayoff(levels, o.Strike, *o.CallAmount, o.settleForeign(), optType, o.Position)
	})
}

func (o *Option) AggregateGross() error {
	if o.Failed() {
		return o.Err()
	}
	return o.aggregateGrossBase()
}

func (o *Option) AggregateNet() error {
	if o.Failed() {
		return o.Err()
	}

	premium := o.OptionValue / RegulatoryNotional
	invT := 1 / o.tRHP

	if o.Position == Long {
		// The premium is the full exposure: the scaling factor spreads
		// the notional over premium plus cost and the growth factor
		// carries no +1 offset. The invested notional is the premium
		// slice of the scaled notional; the net amounts run off the
		// whole of it.
		o.ScalingFactor = 1 / (premium + o.Cost)
		o.NotionalInvested = RegulatoryNotional * o.ScalingFactor * premium
		o.TotalCostsRHP = RegulatoryNotional * o.ScalingFactor * o.Cost

		totalNotional := RegulatoryNotional * o.ScalingFactor
		o.NetAmounts = mapSet(o.GrossAmounts, func(g float64) float64 {
			return g / RegulatoryNotional * totalNotional
		})
		o.NetReturns = mapSet(o.GrossAmounts, func(g float64) float64 {
			return g/RegulatoryNotional/(premium+o.Cost) - 1
		})

		fFXMod := o.GrossAmounts.Moderate / RegulatoryNotional
		o.RIY = math.Pow(fFXMod/premium, invT) - math.Pow(fFXMod/(premium+o.Cost), invT)
		return nil
	}

	// Short: the collected premium accrues at the settlement-leg yield
	// and absorbs the (negative) payoff.
	o.ScalingFactor = 1 / (1 + o.Cost)
	o.NotionalInvested = RegulatoryNotional * o.ScalingFactor
	o.TotalCostsRHP = RegulatoryNotional * o.ScalingFactor * o.Cost

	accrual := math.Exp(o.DiscountRate * o.tRHP)
	o.NetAmounts = mapSet(o.GrossAmounts, func(g float64) float64 {
		fFX := g / RegulatoryNotional
		return RegulatoryNotional * ((premium-o.Cost)*accrual + fFX) / (1 + o.Cost)
	})
	o.NetReturns = mapSet(o.NetAmounts, func(n float64) float64 {
		return n / RegulatoryNotional
	})

	fFXMod := o.GrossAmounts.Moderate / RegulatoryNotional
	o.RIY = math.Pow(premium*accrual+fFXMod, invT) - math.Pow((premium-o.Cost)*accrual+fFXMod, invT)
	return nil
}

func (o *Option) REORecord() []string {
	return o.reoRecord("FX_Option", map[string]string{
		"Subtype":      o.OptionType.String(),
		"OptionType":   o.OptionType.String(),
		"Strike":       reoFloat(o.Strike),
		"OptionValue":  reoFloat(o.OptionValue),
		"DiscountRate": reoFloat(o.DiscountRate),
	})
}

func (o *Option) Attributes() map[string]string {
	attrs := o.baseAttributes("FX Option", o.OptionType.String())
	attrs["PutCall"] = o.OptionType.String()
	attrs["EffectiveDate"] = dates.AttributeDate(o.spotDate)
	attrs["ExpiryDate"] = dates.AttributeDate(o.fixingDate)
	attrs["SettlementDateWithLag"] = dates.AttributeDate(o.settlementWithLag)
	attrs["LowerTriggerRate"] = "N/A"
	attrs["TriggerRate"] = "N/A"
	attrs["UpperTriggerRate"] = "N/A"
	attrs["PremiumPaymentDate"] = dates.AttributeDate(o.spotDate)

	// Calls buy the call leg; puts present the legs swapped.
	buyCcy, sellCcy := o.CallCurrency, o.PutCurrency
	buyAmt, sellAmt := o.CallAmount, o.PutAmount
	if o.OptionType == pricing.Put {
		buyCcy, sellCcy = sellCcy, buyCcy
		buyAmt, sellAmt = sellAmt, buyAmt
	}
	attrs["BuyCurrency"] = buyCcy
	attrs["SellCurrency"] = sellCcy
	attrs["SecondCurrency"] = o.CcyDom
	if buyAmt != nil {
		attrs["BuyAmount"] = reoFloat(*buyAmt * o.ScalingFactor)
	}
	if sellAmt != nil {
		attrs["SellAmount"] = reoFloat(*sellAmt * o.ScalingFactor)
	}
	return attrs
}

func (o *Option) LogFields() map[string]any {
	fields := o.baseLogFields("FX_Option")
	fields["option_type"] = o.OptionType.String()
	fields["strike"] = o.Strike
	fields["vol"] = o.Vol
	fields["option_value"] = o.OptionValue
	if o.Position == Short {
		fields["discount_rate"] = o.DiscountRate
	}
	return fields
}
