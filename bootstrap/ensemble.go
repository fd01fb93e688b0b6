package bootstrap

import (
	"fmt"
	"runtime"
	"sync"
)

// Ensemble is the simulated path set for one currency pair and scenario
// family. Paths[i][k] is the underlying level of draw i at trading day
// k+1. Ensembles are built once and shared read-only by every consuming
// instrument.
type Ensemble struct {
	Pair   string
	Family Family
	Paths  [][]float64
}

// NSimulations returns the number of draws.
func (e *Ensemble) NSimulations() int { return len(e.Paths) }

// Steps returns the path length in trading days.
func (e *Ensemble) Steps() int {
	if len(e.Paths) == 0 {
		return 0
	}
	return len(e.Paths[0])
}

// LevelsAtDay collects the level of every draw at the given trading day
// (1-based).
func (e *Ensemble) LevelsAtDay(day int) ([]float64, error) {
	if day < 1 || day > e.Steps() {
		return nil, fmt.Errorf("trading day %d outside ensemble of %d steps", day, e.Steps())
	}
	out := make([]float64, len(e.Paths))
	for i, p := range e.Paths {
		out[i] = p[day-1]
	}
	return out, nil
}

// Builder constructs the two ensembles for one currency pair.
type Builder struct {
	Pair         string
	LogReturns   []float64
	Spot         float64
	NSimulations int
	Steps        int

	// Workers bounds the path-construction pool; 0 means GOMAXPROCS.
	Workers int
}

// BuildFMU builds the plain bootstrap ensemble with the Ito drift
// correction.
func (b *Builder) BuildFMU(src IndexSource) (*Ensemble, error) {
	drift := ItoTerm(b.LogReturns, b.Steps)
	return b.build(src, FMU, b.LogReturns, drift)
}

// BuildStressed builds the stressed ensemble: returns rescaled to the
// stressed volatility of the given rolling window, with the shift term.
func (b *Builder) BuildStressed(src IndexSource, windowLength int) (*Ensemble, error) {
	sv, err := StressedVolatility(b.LogReturns, windowLength)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", b.Pair, err)
	}
	rescaled := RescaleReturns(b.LogReturns, sv)
	drift := ShiftTerm(rescaled, sv, b.Steps)
	return b.build(src, Stressed, rescaled, drift)
}

// build draws the index rows sequentially, then fans the path math out to
// a worker pool. The sequential draw loop is what keeps results
// bit-identical run to run: draw i always consumes the i-th block of the
// source stream regardless of worker scheduling.
func (b *Builder) build(src IndexSource, family Family, returns, drift []float64) (*Ensemble, error) {
	if len(returns) == 0 {
		return nil, fmt.Errorf("pair %s: no log returns to bootstrap", b.Pair)
	}
	if b.NSimulations <= 0 || b.Steps <= 0 {
		return nil, fmt.Errorf("pair %s: need positive simulations and steps", b.Pair)
	}

	indexRows := make([][]int, b.NSimulations)
	for i := 0; i < b.NSimulations; i++ {
		row, err := src.Indices(i, b.Steps, len(b.LogReturns))
		if err != nil {
			return nil, fmt.Errorf("pair %s family %s: %w", b.Pair, family, err)
		}
		indexRows[i] = row
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > b.NSimulations {
		workers = b.NSimulations
	}

	paths := make([][]float64, b.NSimulations)
	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				paths[i] = Path(indexRows[i], returns, drift, b.Spot)
			}
		}()
	}
	for i := 0; i < b.NSimulations; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &Ensemble{Pair: b.Pair, Family: family, Paths: paths}, nil
}
