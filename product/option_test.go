package product

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/pricing"
)

func newTestOption(pos Position, optType pricing.OptionType) *Option {
	o := &Option{
		Base: Base{
			TradeDate: testTradeDate,
			CcyFor:    "EUR", CcyDom: "USD", CcySettle: "USD",
			Position: pos,
			TenorRHP: "6M",
			Cost:     0.005,
			MRM:      4, CRM: 2, SRI: 4,
		},
		OptionType:   optType,
		CallCurrency: "EUR",
		PutCurrency:  "USD",
		CallAmount:   ptr(10000),
	}
	o.SetIndex(0)
	return o
}

func TestOptionPreProcess(t *testing.T) {
	t.Parallel()

	o := newTestOption(Long, pricing.Call)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	assert.Equal(t, "FX-Option-Call-EUR-USD-Long-0", o.ID())
	assert.InDelta(t, 0.10, o.Vol, 1e-12)
	assert.Positive(t, o.OptionValue)
	assert.Greater(t, o.Strike, 1.1)

	require.NotNil(t, o.PutAmount)
	assert.InDelta(t, 10000*o.Strike, *o.PutAmount, 1e-9)

	// Long positions carry no discount rate.
	assert.Zero(t, o.DiscountRate)

	short := newTestOption(Short, pricing.Call)
	require.NoError(t, short.PreProcess(testSnapshot(), testCalendar()))
	assert.InDelta(t, 0.02, short.DiscountRate, 1e-12)
}

func TestOptionLongNetAtStrike(t *testing.T) {
	t.Parallel()

	o := newTestOption(Long, pricing.Call)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	steps := o.NTradingDaysRHP()
	require.NoError(t, o.EvaluatePayoffs(
		constEnsemble(o.Strike, 8, steps, bootstrap.FMU),
		constEnsemble(o.Strike, 8, steps, bootstrap.Stressed)))
	require.NoError(t, o.AggregateGross())
	require.NoError(t, o.AggregateNet())

	// At-the-strike expiry: the option finishes worthless, the whole
	// scaled premium-plus-cost is lost.
	assert.InDelta(t, 0, o.GrossAmounts.Moderate, 1e-9)
	assert.InDelta(t, 0, o.NetAmounts.Moderate, 1e-9)
	assert.InDelta(t, -1, o.NetReturns.Moderate, 1e-12)
	assert.InDelta(t, 0, o.RIY, 1e-12)

	// The invested notional is the premium share of the scaled notional;
	// the cost share makes up the rest.
	premium := o.OptionValue / RegulatoryNotional
	assert.InDelta(t, 1/(premium+o.Cost), o.ScalingFactor, 1e-12)
	assert.InDelta(t, RegulatoryNotional*o.ScalingFactor*premium, o.NotionalInvested, 1e-9)
	assert.InDelta(t, RegulatoryNotional*o.ScalingFactor*o.Cost, o.TotalCostsRHP, 1e-9)
	assert.InDelta(t, RegulatoryNotional, o.NotionalInvested+o.TotalCostsRHP, 1e-9)
}

func TestOptionLongNetInTheMoney(t *testing.T) {
	t.Parallel()

	o := newTestOption(Long, pricing.Call)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	level := o.Strike + 0.05
	steps := o.NTradingDaysRHP()
	require.NoError(t, o.EvaluatePayoffs(
		constEnsemble(level, 8, steps, bootstrap.FMU),
		constEnsemble(level, 8, steps, bootstrap.Stressed)))
	require.NoError(t, o.AggregateGross())
	require.NoError(t, o.AggregateNet())

	gross := 10000 * (level - o.Strike)
	assert.InDelta(t, gross, o.GrossAmounts.Moderate, 1e-9)

	premium := o.OptionValue / RegulatoryNotional
	fFX := gross / RegulatoryNotional
	assert.InDelta(t, fFX*RegulatoryNotional*o.ScalingFactor, o.NetAmounts.Moderate, 1e-6)
	assert.InDelta(t, fFX/(premium+o.Cost)-1, o.NetReturns.Moderate, 1e-12)

	invT := 1 / o.YearFractionRHP()
	wantRIY := math.Pow(fFX/premium, invT) - math.Pow(fFX/(premium+o.Cost), invT)
	assert.InDelta(t, wantRIY, o.RIY, 1e-12)
}

func TestOptionShortNetAtStrike(t *testing.T) {
	t.Parallel()

	o := newTestOption(Short, pricing.Call)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	steps := o.NTradingDaysRHP()
	require.NoError(t, o.EvaluatePayoffs(
		constEnsemble(o.Strike, 8, steps, bootstrap.FMU),
		constEnsemble(o.Strike, 8, steps, bootstrap.Stressed)))
	require.NoError(t, o.AggregateGross())
	require.NoError(t, o.AggregateNet())

	// The writer's notional and cost both carry the 1/(1+cost) scaling.
	assert.InDelta(t, RegulatoryNotional/(1+o.Cost), o.NotionalInvested, 1e-9)
	assert.InDelta(t, RegulatoryNotional/(1+o.Cost)*o.Cost, o.TotalCostsRHP, 1e-9)

	// The writer keeps the accrued premium net of cost.
	premium := o.OptionValue / RegulatoryNotional
	accrual := math.Exp(o.DiscountRate * o.YearFractionRHP())
	wantNet := RegulatoryNotional * (premium - o.Cost) * accrual / (1 + o.Cost)
	assert.InDelta(t, wantNet, o.NetAmounts.Moderate, 1e-9)
	assert.InDelta(t, wantNet/RegulatoryNotional, o.NetReturns.Moderate, 1e-12)

	invT := 1 / o.YearFractionRHP()
	wantRIY := math.Pow(premium*accrual, invT) - math.Pow((premium-o.Cost)*accrual, invT)
	assert.InDelta(t, wantRIY, o.RIY, 1e-12)
}

func TestOptionCurrencyWiring(t *testing.T) {
	t.Parallel()

	o := newTestOption(Long, pricing.Call)
	o.CallCurrency = "USD"
	err := o.PreProcess(testSnapshot(), testCalendar())
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailCurrencyWiring, failure.Kind)
}

func TestOptionPutAttributesSwapLegs(t *testing.T) {
	t.Parallel()

	put := newTestOption(Long, pricing.Put)
	require.NoError(t, put.PreProcess(testSnapshot(), testCalendar()))

	attrs := put.Attributes()
	assert.Equal(t, "Put", attrs["PutCall"])
	assert.Equal(t, "USD", attrs["BuyCurrency"])
	assert.Equal(t, "EUR", attrs["SellCurrency"])
	assert.Equal(t, "N/A", attrs["TriggerRate"])

	call := newTestOption(Long, pricing.Call)
	require.NoError(t, call.PreProcess(testSnapshot(), testCalendar()))
	callAttrs := call.Attributes()
	assert.Equal(t, "EUR", callAttrs["BuyCurrency"])
	assert.Equal(t, "USD", callAttrs["SellCurrency"])
}
