package product

import (
	"fmt"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
	"github.com/rustyeddy/priips/pricing"
)

// Forward is an FX forward, deliverable or non-deliverable. The holder
// receives the foreign leg and pays the domestic leg at the strike.
type Forward struct {
	Base

	Deliverable     bool
	ReceiveCurrency string
	PayCurrency     string

	// Exactly one of the two amounts is preset; the other is derived
	// from the strike during pre-processing.
	ReceiveAmount *float64
	PayAmount     *float64

	Strike float64
}

func (f *Forward) Kind() string { return "FX_Forward" }

func (f *Forward) deliveryType() string {
	if f.Deliverable {
		return "Deliverable"
	}
	return "NonDeliverable"
}

func (f *Forward) SetIndex(i int) {
	f.index = i
	f.id = fmt.Sprintf("FX-Forward-%s-%s-%s-%s-%d",
		f.deliveryType(), f.CcyFor, f.CcyDom, f.Position, i)
}

func (f *Forward) PreProcess(snap *market.Snapshot, cal *dates.Calendar) error {
	if f.Failed() {
		return f.Err()
	}

	if err := f.prepDates(cal, f.Deliverable); err != nil {
		return err
	}

	if f.ReceiveCurrency != f.CcyFor {
		return f.fail(FailCurrencyWiring,
			fmt.Errorf("receive currency %s must be the foreign leg %s", f.ReceiveCurrency, f.CcyFor))
	}
	if f.PayCurrency != f.CcyDom {
		return f.fail(FailCurrencyWiring,
			fmt.Errorf("pay currency %s must be the domestic leg %s", f.PayCurrency, f.CcyDom))
	}
	if err := f.checkSettlement(); err != nil {
		return err
	}

	if err := f.prepSpot(snap); err != nil {
		return err
	}
	yFor, err := f.yield(snap, f.CcyFor)
	if err != nil {
		return f.fail(FailMarketData, err)
	}
	yDom, err := f.yield(snap, f.CcyDom)
	if err != nil {
		return f.fail(FailMarketData, err)
	}
	f.Strike = pricing.ForwardStrike(f.spot, yFor, yDom, f.tRHP, 1)

	switch {
	case f.PayAmount == nil && f.ReceiveAmount != nil:
		pay := *f.ReceiveAmount * f.Strike
		f.PayAmount = &pay
	case f.ReceiveAmount == nil && f.PayAmount != nil:
		recv := *f.PayAmount / f.Strike
		f.ReceiveAmount = &recv
	default:
		return f.fail(FailAmounts,
			fmt.Errorf("exactly one of receive and pay amounts must be preset"))
	}

	return nil
}

func (f *Forward) EvaluatePayoffs(fmu, stressed *bootstrap.Ensemble) error {
	if f.Failed() {
		return f.Err()
	}
	return f.evaluateAt(fmu, stressed, f.nDaysRHP, func(levels []float64) []float64 {
		return forwardPayoff(levels, f.Strike, *f.ReceiveAmount, f.settleForeign(), f.Position)
	})
}

func (f *Forward) AggregateGross() error {
	if f.Failed() {
		return f.Err()
	}
	return f.aggregateGrossBase()
}

func (f *Forward) AggregateNet() error {
	if f.Failed() {
		return f.Err()
	}
	f.netForwardStyle()
	return nil
}

func (f *Forward) REORecord() []string {
	return f.reoRecord("FX_Forward", map[string]string{
		"Subtype":      f.deliveryType(),
		"DeliveryType": f.deliveryType(),
		"Strike":       reoFloat(f.Strike),
	})
}

func (f *Forward) Attributes() map[string]string {
	attrs := f.baseAttributes("FX Forward", f.deliveryType())
	attrs["BuyCurrency"] = f.ReceiveCurrency
	attrs["SellCurrency"] = f.PayCurrency
	attrs["SecondCurrency"] = f.CcyDom
	if f.ReceiveAmount != nil {
		attrs["BuyAmount"] = reoFloat(*f.ReceiveAmount * f.ScalingFactor)
	}
	if f.PayAmount != nil {
		attrs["SellAmount"] = reoFloat(*f.PayAmount * f.ScalingFactor)
	}
	return attrs
}

func (f *Forward) LogFields() map[string]any {
	fields := f.baseLogFields("FX_Forward")
	fields["delivery_type"] = f.deliveryType()
	fields["strike"] = f.Strike
	return fields
}
