package product

import (
	"fmt"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
	"github.com/rustyeddy/priips/pricing"
)

// Swap is an FX swap: a near leg exchanged at the spot rate on the spot
// date and an opposite far leg exchanged at the strike on the settlement
// date. Scenario economics ride on the far leg.
type Swap struct {
	Base

	Deliverable bool

	ReceiveCurrencyNear string
	PayCurrencyNear     string
	ReceiveAmountNear   *float64
	PayAmountNear       *float64

	ReceiveCurrencyFar string
	PayCurrencyFar     string
	ReceiveAmountFar   *float64
	PayAmountFar       *float64

	Strike float64
}

func (s *Swap) Kind() string { return "FX_Swap" }

func (s *Swap) deliveryType() string {
	if s.Deliverable {
		return "Deliverable"
	}
	return "NonDeliverable"
}

func (s *Swap) SetIndex(i int) {
	s.index = i
	s.id = fmt.Sprintf("FX-Swap-%s-%s-%s-%s-%d",
		s.deliveryType(), s.CcyFor, s.CcyDom, s.Position, i)
}

func (s *Swap) PreProcess(snap *market.Snapshot, cal *dates.Calendar) error {
	if s.Failed() {
		return s.Err()
	}

	if err := s.prepDates(cal, s.Deliverable); err != nil {
		return err
	}

	if s.ReceiveCurrencyFar != s.CcyFor {
		return s.fail(FailCurrencyWiring,
			fmt.Errorf("far-leg receive currency %s must be the foreign leg %s", s.ReceiveCurrencyFar, s.CcyFor))
	}
	if s.PayCurrencyFar != s.CcyDom {
		return s.fail(FailCurrencyWiring,
			fmt.Errorf("far-leg pay currency %s must be the domestic leg %s", s.PayCurrencyFar, s.CcyDom))
	}
	if s.PayCurrencyNear != s.ReceiveCurrencyFar {
		return s.fail(FailCurrencyWiring,
			fmt.Errorf("near-leg pay currency %s must mirror the far-leg receive currency %s",
				s.PayCurrencyNear, s.ReceiveCurrencyFar))
	}
	if s.ReceiveCurrencyNear != s.PayCurrencyFar {
		return s.fail(FailCurrencyWiring,
			fmt.Errorf("near-leg receive currency %s must mirror the far-leg pay currency %s",
				s.ReceiveCurrencyNear, s.PayCurrencyFar))
	}
	if err := s.checkSettlement(); err != nil {
		return err
	}

	if err := s.prepSpot(snap); err != nil {
		return err
	}
	yFor, err := s.yield(snap, s.CcyFor)
	if err != nil {
		return s.fail(FailMarketData, err)
	}
	yDom, err := s.yield(snap, s.CcyDom)
	if err != nil {
		return s.fail(FailMarketData, err)
	}
	s.Strike = pricing.ForwardStrike(s.spot, yFor, yDom, s.tRHP, 1)

	// The near leg completes at the spot rate, the far leg at the strike.
	switch {
	case s.ReceiveAmountNear == nil && s.PayAmountNear != nil:
		recv := *s.PayAmountNear * s.spot
		s.ReceiveAmountNear = &recv
	case s.PayAmountNear == nil && s.ReceiveAmountNear != nil:
		pay := *s.ReceiveAmountNear / s.spot
		s.PayAmountNear = &pay
	default:
		return s.fail(FailAmounts,
			fmt.Errorf("exactly one of the near-leg amounts must be preset"))
	}
	switch {
	case s.PayAmountFar == nil && s.ReceiveAmountFar != nil:
		pay := *s.ReceiveAmountFar * s.Strike
		s.PayAmountFar = &pay
	case s.ReceiveAmountFar == nil && s.PayAmountFar != nil:
		recv := *s.PayAmountFar / s.Strike
		s.ReceiveAmountFar = &recv
	default:
		return s.fail(FailAmounts,
			fmt.Errorf("exactly one of the far-leg amounts must be preset"))
	}

	return nil
}

func (s *Swap) EvaluatePayoffs(fmu, stressed *bootstrap.Ensemble) error {
	if s.Failed() {
		return s.Err()
	}
	return s.evaluateAt(fmu, stressed, s.nDaysRHP, func(levels []float64) []float64 {
		return forwardPayoff(levels, s.Strike, *s.ReceiveAmountFar, s.settleForeign(), s.Position)
	})
}

func (s *Swap) AggregateGross() error {
	if s.Failed() {
		return s.Err()
	}
	return s.aggregateGrossBase()
}

func (s *Swap) AggregateNet() error {
	if s.Failed() {
		return s.Err()
	}
	s.netForwardStyle()
	return nil
}

func (s *Swap) REORecord() []string {
	return s.reoRecord("FX_Swap", map[string]string{
		"Subtype":      s.deliveryType(),
		"DeliveryType": s.deliveryType(),
		"Strike":       reoFloat(s.Strike),
	})
}

func (s *Swap) Attributes() map[string]string {
	attrs := s.baseAttributes("FX Swap", s.deliveryType())
	attrs["BuyCurrency"] = s.ReceiveCurrencyFar
	attrs["SellCurrency"] = s.PayCurrencyFar
	attrs["SecondCurrency"] = s.CcyDom
	if s.ReceiveAmountFar != nil {
		attrs["BuyAmount"] = reoFloat(*s.ReceiveAmountFar * s.ScalingFactor)
	}
	if s.PayAmountFar != nil {
		attrs["SellAmount"] = reoFloat(*s.PayAmountFar * s.ScalingFactor)
	}
	return attrs
}

func (s *Swap) LogFields() map[string]any {
	fields := s.baseLogFields("FX_Swap")
	fields["delivery_type"] = s.deliveryType()
	fields["strike"] = s.Strike
	if s.ReceiveAmountNear != nil {
		fields["receive_amount_near"] = *s.ReceiveAmountNear
	}
	if s.PayAmountNear != nil {
		fields["pay_amount_near"] = *s.PayAmountNear
	}
	return fields
}
