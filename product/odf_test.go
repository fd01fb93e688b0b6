package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/priips/bootstrap"
)

func newTestODF(pos Position) *OptionDatedForward {
	o := &OptionDatedForward{
		Base: Base{
			TradeDate: testTradeDate,
			CcyFor:    "EUR", CcyDom: "USD", CcySettle: "USD",
			Position: pos,
			TenorRHP: "6M",
			Cost:     0.005,
			MRM:      3, CRM: 2, SRI: 3,
		},
		Deliverable:       true,
		TenorIntermediate: "3M",
		ReceiveCurrency:   "EUR",
		PayCurrency:       "USD",
		ReceiveAmount:     ptr(10000),
	}
	o.SetIndex(0)
	return o
}

func TestODFPreProcessStrikes(t *testing.T) {
	t.Parallel()

	long := newTestODF(Long)
	require.NoError(t, long.PreProcess(testSnapshot(), testCalendar()))

	// With yDom > yFor the forward curve rises, so the RHP strike is
	// the higher one and the long holder is filled there.
	assert.Greater(t, long.StrikeRHP, long.StrikeIntermediate)
	assert.InDelta(t, long.StrikeRHP, long.Strike, 1e-12)
	assert.Greater(t, long.ForwardAccrual, 1.0)
	assert.Less(t, long.nDaysInter, long.NTradingDaysRHP())

	short := newTestODF(Short)
	require.NoError(t, short.PreProcess(testSnapshot(), testCalendar()))
	assert.InDelta(t, short.StrikeIntermediate, short.Strike, 1e-12)
}

// pathEnsemble builds a single-draw ensemble with the given level at the
// intermediate day and final day, and a neutral level elsewhere.
func pathEnsemble(o *OptionDatedForward, interLevel, finalLevel float64, family bootstrap.Family) *bootstrap.Ensemble {
	steps := o.NTradingDaysRHP()
	path := make([]float64, steps)
	for k := range path {
		path[k] = o.Strike
	}
	path[o.nDaysInter-1] = interLevel
	path[steps-1] = finalLevel
	return &bootstrap.Ensemble{Pair: "EURUSD", Family: family, Paths: [][]float64{path}}
}

func TestODFWorseOfPayoff(t *testing.T) {
	t.Parallel()

	o := newTestODF(Long)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	// Early payoff positive (compounded by the accrual factor), final
	// payoff smaller: the worse final outcome wins.
	interLevel := o.Strike + 0.05
	finalLevel := o.Strike + 0.01
	fmu := pathEnsemble(o, interLevel, finalLevel, bootstrap.FMU)
	stressed := pathEnsemble(o, interLevel, finalLevel, bootstrap.Stressed)

	require.NoError(t, o.EvaluatePayoffs(fmu, stressed))
	require.NoError(t, o.AggregateGross())

	wantFinal := 10000 * (finalLevel - o.Strike)
	assert.InDelta(t, wantFinal, o.GrossAmounts.Moderate, 1e-9)
}

func TestODFPositiveEarlyPayoffCompounds(t *testing.T) {
	t.Parallel()

	o := newTestODF(Long)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	// Early payoff positive but the final payoff is even better: the
	// compounded early payoff is the minimum and wins.
	interLevel := o.Strike + 0.01
	finalLevel := o.Strike + 0.05
	fmu := pathEnsemble(o, interLevel, finalLevel, bootstrap.FMU)
	stressed := pathEnsemble(o, interLevel, finalLevel, bootstrap.Stressed)

	require.NoError(t, o.EvaluatePayoffs(fmu, stressed))
	require.NoError(t, o.AggregateGross())

	wantEarly := 10000 * (interLevel - o.Strike) * o.ForwardAccrual
	assert.InDelta(t, wantEarly, o.GrossAmounts.Moderate, 1e-9)
}

func TestODFShortAlsoPicksMinimum(t *testing.T) {
	t.Parallel()

	// The worse-of step takes the element-wise minimum for short
	// positions too; this pins the established behavior.
	o := newTestODF(Short)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	// For a short position a rising rate is a loss: early payoff
	// negative, final payoff even more negative, minimum is the final.
	interLevel := o.Strike + 0.01
	finalLevel := o.Strike + 0.05
	fmu := pathEnsemble(o, interLevel, finalLevel, bootstrap.FMU)
	stressed := pathEnsemble(o, interLevel, finalLevel, bootstrap.Stressed)

	require.NoError(t, o.EvaluatePayoffs(fmu, stressed))
	require.NoError(t, o.AggregateGross())

	wantFinal := -10000 * (finalLevel - o.Strike)
	assert.InDelta(t, wantFinal, o.GrossAmounts.Moderate, 1e-9)
}

func TestODFIntermediateWindowValidation(t *testing.T) {
	t.Parallel()

	o := newTestODF(Long)
	o.TenorIntermediate = "9M"
	err := o.PreProcess(testSnapshot(), testCalendar())
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FailTenor, failure.Kind)
}

func TestODFAttributesWindowDate(t *testing.T) {
	t.Parallel()

	o := newTestODF(Long)
	require.NoError(t, o.PreProcess(testSnapshot(), testCalendar()))

	attrs := o.Attributes()
	assert.NotEmpty(t, attrs["WindowDate"])
	assert.Less(t, attrs["WindowDate"], attrs["SettlementDate"])
}
