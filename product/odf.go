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

// OptionDatedForward is a forward whose delivery can be drawn anywhere
// inside a window opening at an intermediate date. The scenario payoff
// evaluates the forward at both window boundaries, compounds a positive
// early payoff at the forward accrual rate, and keeps the worse of the
// two outcomes. The worse-of comparison takes the element-wise minimum
// for short positions too, matching the established methodology.
type OptionDatedForward struct {
	Base

	Deliverable       bool
	TenorIntermediate string
	ReceiveCurrency   string
	PayCurrency       string
	ReceiveAmount     *float64
	PayAmount         *float64

	intermediateDate   time.Time
	intermediateFixing time.Time
	tInter             float64
	tenorDaysInter     float64
	nDaysInter         int

	StrikeIntermediate float64
	StrikeRHP          float64
	Strike             float64
	ForwardAccrual     float64
}

func (o *OptionDatedForward) Kind() string { return "FX_ODF" }

func (o *OptionDatedForward) deliveryType() string {
	if o.Deliverable {
		return "Deliverable"
	}
	return "NonDeliverable"
}

func (o *OptionDatedForward) SetIndex(i int) {
	o.index = i
	o.id = fmt.Sprintf("FX-ODF-%s-%s-%s-%s-%d",
		o.deliveryType(), o.CcyFor, o.CcyDom, o.Position, i)
}

func (o *OptionDatedForward) PreProcess(snap *market.Snapshot, cal *dates.Calendar) error {
	if o.Failed() {
		return o.Err()
	}

	if err := o.prepDates(cal, o.Deliverable); err != nil {
		return err
	}

	interTenor, err := dates.ParseTenor(o.TenorIntermediate)
	if err != nil {
		return o.fail(FailTenor, err)
	}
	o.intermediateDate = cal.AddTenor(o.spotDate, interTenor)
	if o.Deliverable {
		o.intermediateFixing = o.intermediateDate
	} else {
		o.intermediateFixing = cal.AddTenor(o.intermediateDate, dates.Tenor{N: -2, Unit: dates.Day})
	}
	o.tInter = dates.YearFraction(o.TradeDate, o.intermediateFixing, dates.ActAct)
	o.tenorDaysInter = math.Floor(o.tInter * 360)
	o.nDaysInter = cal.TradingDays(o.TradeDate, o.intermediateFixing)
	if o.nDaysInter < 1 || o.nDaysInter >= o.nDaysRHP {
		return o.fail(FailTenor,
			fmt.Errorf("intermediate tenor %s must open the window strictly inside the holding period",
				o.TenorIntermediate))
	}

	if o.ReceiveCurrency != o.CcyFor {
		return o.fail(FailCurrencyWiring,
			fmt.Errorf("receive currency %s must be the foreign leg %s", o.ReceiveCurrency, o.CcyFor))
	}
	if o.PayCurrency != o.CcyDom {
		return o.fail(FailCurrencyWiring,
			fmt.Errorf("pay currency %s must be the domestic leg %s", o.PayCurrency, o.CcyDom))
	}
	if err := o.checkSettlement(); err != nil {
		return err
	}

	if err := o.prepSpot(snap); err != nil {
		return err
	}
	yForInter, err := snap.Yield(o.Pair(), o.CcyFor, o.tenorDaysInter)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	yDomInter, err := snap.Yield(o.Pair(), o.CcyDom, o.tenorDaysInter)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	yForRHP, err := o.yield(snap, o.CcyFor)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	yDomRHP, err := o.yield(snap, o.CcyDom)
	if err != nil {
		return o.fail(FailMarketData, err)
	}

	o.StrikeIntermediate = pricing.ForwardStrike(o.spot, yForInter, yDomInter, o.tInter, 1)
	o.StrikeRHP = pricing.ForwardStrike(o.spot, yForRHP, yDomRHP, o.tRHP, 1)

	// The holder is filled at the worse boundary strike: the higher one
	// when long, the lower one when short.
	if o.Position == Long {
		o.Strike = math.Max(o.StrikeIntermediate, o.StrikeRHP)
	} else {
		o.Strike = math.Min(o.StrikeIntermediate, o.StrikeRHP)
	}

	ySetInter, err := snap.Yield(o.Pair(), o.CcySettle, o.tenorDaysInter)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	ySetRHP, err := o.yield(snap, o.CcySettle)
	if err != nil {
		return o.fail(FailMarketData, err)
	}
	fwdRate := pricing.ForwardRate(ySetInter, o.tInter, ySetRHP, o.tRHP)
	o.ForwardAccrual = math.Pow(1+fwdRate, o.tRHP-o.tInter)

	switch {
	case o.PayAmount == nil && o.ReceiveAmount != nil:
		pay := *o.ReceiveAmount * o.Strike
		o.PayAmount = &pay
	case o.ReceiveAmount == nil && o.PayAmount != nil:
		recv := *o.PayAmount / o.Strike
		o.ReceiveAmount = &recv
	default:
		return o.fail(FailAmounts,
			fmt.Errorf("exactly one of receive and pay amounts must be preset"))
	}

	return nil
}

func (o *OptionDatedForward) EvaluatePayoffs(fmu, stressed *bootstrap.Ensemble) error {
	if o.Failed() {
		return o.Err()
	}

	eval := func(e *bootstrap.Ensemble) ([]float64, error) {
		interLevels, err := e.LevelsAtDay(o.nDaysInter)
		if err != nil {
			return nil, err
		}
		finalLevels, err := e.LevelsAtDay(o.nDaysRHP)
		if err != nil {
			return nil, err
		}

		early := forwardPayoff(interLevels, o.Strike, *o.ReceiveAmount, o.settleForeign(), o.Position)
		late := forwardPayoff(finalLevels, o.Strike, *o.ReceiveAmount, o.settleForeign(), o.Position)

		out := make([]float64, len(early))
		for i := range out {
			e := early[i]
			if e > 0 {
				e *= o.ForwardAccrual
			}
			out[i] = math.Min(e, late[i])
		}
		return out, nil
	}

	fmuPayoff, err := eval(fmu)
	if err != nil {
		return o.fail(FailPayoff, err)
	}
	stressedPayoff, err := eval(stressed)
	if err != nil {
		return o.fail(FailPayoff, err)
	}
	o.payoffFMU = fmuPayoff
	o.payoffStressed = stressedPayoff
	return nil
}

func (o *OptionDatedForward) AggregateGross() error {
	if o.Failed() {
		return o.Err()
	}
	return o.aggregateGrossBase()
}

func (o *OptionDatedForward) AggregateNet() error {
	if o.Failed() {
		return o.Err()
	}
	o.netForwardStyle()
	return nil
}

func (o *OptionDatedForward) REORecord() []string {
	return o.reoRecord("FX_ODF", map[string]string{
		"Subtype":           o.deliveryType(),
		"DeliveryType":      o.deliveryType(),
		"TenorIntermediate": o.TenorIntermediate,
		"Strike":            reoFloat(o.Strike),
	})
}

func (o *OptionDatedForward) Attributes() map[string]string {
	attrs := o.baseAttributes("FX Option Dated Forward", o.deliveryType())
	attrs["WindowDate"] = dates.AttributeDate(o.intermediateDate)
	attrs["BuyCurrency"] = o.ReceiveCurrency
	attrs["SellCurrency"] = o.PayCurrency
	attrs["SecondCurrency"] = o.CcyDom
	if o.ReceiveAmount != nil {
		attrs["BuyAmount"] = reoFloat(*o.ReceiveAmount * o.ScalingFactor)
	}
	if o.PayAmount != nil {
		attrs["SellAmount"] = reoFloat(*o.PayAmount * o.ScalingFactor)
	}
	return attrs
}

func (o *OptionDatedForward) LogFields() map[string]any {
	fields := o.baseLogFields("FX_ODF")
	fields["delivery_type"] = o.deliveryType()
	fields["tenor_intermediate"] = o.TenorIntermediate
	fields["strike"] = o.Strike
	fields["strike_intermediate"] = o.StrikeIntermediate
	fields["strike_rhp"] = o.StrikeRHP
	fields["forward_accrual"] = o.ForwardAccrual
	fields["n_trading_days_intermediate"] = o.nDaysInter
	return fields
}
