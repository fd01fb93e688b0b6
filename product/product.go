// Package product implements the five FX structured-product variants of
// the KID scenario methodology: forwards, swaps, vanilla options,
// option-dated forwards and dual currency investments. Every variant
// moves through the same lifecycle — pre-processing of trade economics,
// payoff evaluation against simulated path ensembles, gross percentile
// aggregation and the variant-specific net cascade — with an absorbing
// failure state reachable from every step.
package product

import (
	"fmt"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/internal/stats"
	"github.com/rustyeddy/priips/market"
)

// Position is the direction of the trade.
type Position int

const (
	Long Position = iota
	Short
)

func (p Position) String() string {
	if p == Short {
		return "Short"
	}
	return "Long"
}

// ParsePosition parses "Long" or "Short".
func ParsePosition(s string) (Position, error) {
	switch s {
	case "Long":
		return Long, nil
	case "Short":
		return Short, nil
	}
	return 0, fmt.Errorf("unknown position type %q", s)
}

// ScenarioSet holds one value per regulatory scenario.
type ScenarioSet struct {
	Favourable   float64
	Moderate     float64
	Unfavourable float64
	Stressed     float64
}

// Failure kinds for instrument-local errors.
const (
	FailCurrencyWiring = "currency_wiring"
	FailAmounts        = "amount_completion"
	FailMarketData     = "market_data"
	FailTenor          = "tenor"
	FailDeltaFlag      = "delta_flag"
	FailUnknownType    = "unknown_type"
	FailPayoff         = "payoff"
)

// Failure is a structured instrument-local error: the kind drives
// programmatic handling, the product id points at the offender.
type Failure struct {
	Kind      string
	ProductID string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s [%s]: %v", f.ProductID, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Product is the common capability set of every instrument variant.
// Methods must be called in lifecycle order; a failed product turns all
// later steps into no-ops and is excluded from output, but keeps its
// slot in the product list so ids stay stable.
type Product interface {
	ID() string
	Kind() string
	Pair() string

	// SetIndex assigns the position in the product list and finalizes
	// the product id.
	SetIndex(i int)

	Failed() bool
	Err() error
	Fail(kind string, err error) error

	PreProcess(snap *market.Snapshot, cal *dates.Calendar) error

	NTradingDaysRHP() int
	TruncateRHP(steps int)

	EvaluatePayoffs(fmu, stressed *bootstrap.Ensemble) error
	AggregateGross() error
	AggregateNet() error

	REORecord() []string
	Attributes() map[string]string
	LogFields() map[string]any

	// PayoffVectors exposes the evaluated per-draw payoffs for the
	// optional diagnostic dump. Nil until EvaluatePayoffs has run.
	PayoffVectors() (fmu, stressed []float64)
}

// aggregate maps payoff vectors to the four scenario values: 90th, 50th
// and 10th percentiles of the FMU vector and the 1st percentile of the
// stressed vector.
func aggregate(fmuPayoffs, stressedPayoffs []float64) ScenarioSet {
	return ScenarioSet{
		Favourable:   stats.Percentile(fmuPayoffs, 90),
		Moderate:     stats.Percentile(fmuPayoffs, 50),
		Unfavourable: stats.Percentile(fmuPayoffs, 10),
		Stressed:     stats.Percentile(stressedPayoffs, 1),
	}
}

// forwardPayoff is the linear payoff shared by forwards, swaps and the
// forward legs of option-dated forwards. The quotation depends on which
// leg settles: a foreign-settled trade converts the domestic payoff at
// the simulated rate.
func forwardPayoff(levels []float64, strike, notional float64, settleForeign bool, pos Position) []float64 {
	out := make([]float64, len(levels))
	sign := 1.0
	if pos == Short {
		sign = -1
	}
	for i, s := range levels {
		var v float64
		if settleForeign {
			v = notional / s * (s - strike)
		} else {
			v = notional * (s - strike)
		}
		out[i] = sign * v
	}
	return out
}

// optionPayoff floors the per-path intrinsic value at zero before the
// short-side negation.
func optionPayoff(levels []float64, strike, notional float64, settleForeign bool, optType int, pos Position) []float64 {
	out := make([]float64, len(levels))
	sign := 1.0
	if pos == Short {
		sign = -1
	}
	for i, s := range levels {
		var v float64
		if settleForeign {
			v = notional / s * (s - strike)
		} else {
			v = notional * (s - strike)
		}
		if optType == putType {
			v = -v
		}
		if v < 0 {
			v = 0
		}
		out[i] = sign * v
	}
	return out
}

const (
	callType = iota
	putType
)
