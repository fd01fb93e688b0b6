// Package engine drives a scenario run end to end: pre-process the
// product list, build or reload the path ensembles per currency pair,
// fan the payoff evaluation out over the products and write the run
// outputs. Instrument-local failures are logged and skipped; only index
// exhaustion beyond tolerance or missing historical data abort the run.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/config"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/internal/id"
	"github.com/rustyeddy/priips/market"
	"github.com/rustyeddy/priips/product"
	"github.com/rustyeddy/priips/report"
)

// stressedWindow is the rolling-window length of the stressed-volatility
// estimate for the current product scope (every RHP is at most 1Y).
const stressedWindow = 21

// truncationTolerance is how far the longest holding period may exceed
// the index-file capacity before the run aborts. Within tolerance the
// affected products are silently truncated to the capacity.
const truncationTolerance = 5

// Engine runs the scenario workflow for one settings file.
type Engine struct {
	Settings *config.Settings
	Snapshot *market.Snapshot
	Calendar *dates.Calendar
	Log      zerolog.Logger
}

// New builds an engine over loaded settings and market data.
func New(cfg *config.Settings, snap *market.Snapshot, log zerolog.Logger) *Engine {
	return &Engine{
		Settings: cfg,
		Snapshot: snap,
		Calendar: dates.NewEnglandCalendar(),
		Log:      log,
	}
}

// Result summarizes one completed run.
type Result struct {
	RunID          string
	TradeDate      time.Time
	Products       []product.Product
	SimulatedPairs []string
	CachedPairs    []string
}

type pairEnsembles struct {
	fmu      *bootstrap.Ensemble
	stressed *bootstrap.Ensemble
}

// Run executes the full workflow over the given product list. The list
// is mutated in place (derived fields, results, failure flags) and
// returned inside the result with its order intact.
func (e *Engine) Run(products []product.Product) (*Result, error) {
	runID := id.New()
	log := e.Log.With().Str("run_id", runID).Logger()

	tradeDate, err := e.Settings.TradeDate()
	if err != nil {
		return nil, err
	}
	dateID := dates.DateIdentifier(tradeDate)

	start := time.Now()
	for _, p := range products {
		if err := p.PreProcess(e.Snapshot, e.Calendar); err != nil {
			log.Warn().Str("product_id", p.ID()).Err(err).Msg("pre-processing failed")
		}
	}
	log.Info().Dur("elapsed", time.Since(start)).
		Int("products", len(products)).
		Msg("pre-processing complete")

	nSim := e.Settings.Run.NSimulations
	var fileSrc *bootstrap.FileSource
	if e.Settings.Indices.Source == "file" {
		fileSrc, err = bootstrap.NewFileSource(e.Settings.Indices.File)
		if err != nil {
			return nil, err
		}
		nSim = fileSrc.Draws()
	}

	if err := e.applyTruncation(products, fileSrc, log); err != nil {
		return nil, err
	}

	plans := groupByPair(products)
	pairs := make([]string, 0, len(plans))
	for pair := range plans {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)

	ensembles := make(map[string]pairEnsembles, len(plans))
	var simulated, cachedPairs []string
	start = time.Now()
	for _, pair := range pairs {
		pe, cached, err := e.ensemblesFor(pair, plans[pair], nSim, fileSrc, dateID, log)
		if err != nil {
			return nil, err
		}
		ensembles[pair] = pe
		if cached {
			cachedPairs = append(cachedPairs, pair)
		} else {
			simulated = append(simulated, pair)
		}
	}
	log.Info().Dur("elapsed", time.Since(start)).
		Strs("simulated", simulated).
		Strs("cached", cachedPairs).
		Msg("path ensembles ready")

	start = time.Now()
	e.evaluateProducts(products, ensembles, log)
	log.Info().Dur("elapsed", time.Since(start)).Msg("product evaluation complete")

	if err := e.writeOutputs(runID, products, log); err != nil {
		return nil, err
	}

	return &Result{
		RunID:          runID,
		TradeDate:      tradeDate,
		Products:       products,
		SimulatedPairs: simulated,
		CachedPairs:    cachedPairs,
	}, nil
}

// applyTruncation enforces the holding-period invariant against a
// file-backed index source: products needing more trading days than the
// file supplies per draw are reset to the capacity, unless the overshoot
// exceeds the tolerance, which aborts the run.
func (e *Engine) applyTruncation(products []product.Product, fileSrc *bootstrap.FileSource, log zerolog.Logger) error {
	if fileSrc == nil {
		return nil
	}
	capacity := fileSrc.Steps()

	nMax := 0
	for _, p := range products {
		if p.Failed() {
			continue
		}
		if n := p.NTradingDaysRHP(); n > nMax {
			nMax = n
		}
	}
	if nMax <= capacity {
		return nil
	}
	if nMax-capacity > truncationTolerance {
		return fmt.Errorf("longest holding period needs %d trading days but the index file supplies %d per draw", nMax, capacity)
	}

	for _, p := range products {
		if p.Failed() || p.NTradingDaysRHP() <= capacity {
			continue
		}
		log.Warn().Str("product_id", p.ID()).
			Int("trading_days", p.NTradingDaysRHP()).
			Int("capacity", capacity).
			Msg("holding period truncated to index capacity")
		p.TruncateRHP(capacity)
	}
	return nil
}

// groupByPair maps each live pair to the longest holding period of the
// products on it, which is the path length its ensembles must cover.
func groupByPair(products []product.Product) map[string]int {
	steps := make(map[string]int)
	for _, p := range products {
		if p.Failed() {
			continue
		}
		if n := p.NTradingDaysRHP(); n > steps[p.Pair()] {
			steps[p.Pair()] = n
		}
	}
	return steps
}

// ensemblesFor returns the two ensembles for one pair, reading the
// cached path files for the trade date when both exist and simulating
// otherwise. Simulated ensembles are persisted for later runs on the
// same trade date.
func (e *Engine) ensemblesFor(pair string, steps, nSim int, fileSrc *bootstrap.FileSource, dateID string, log zerolog.Logger) (pairEnsembles, bool, error) {
	pathsDir := e.Settings.Output.PathsDir
	fmuPath := bootstrap.PathFilename(pathsDir, dateID, pair, bootstrap.FMU)
	sPath := bootstrap.PathFilename(pathsDir, dateID, pair, bootstrap.Stressed)

	if fileReadable(fmuPath) && fileReadable(sPath) {
		fmu, err := bootstrap.ReadEnsembleCSV(fmuPath, pair, bootstrap.FMU)
		if err != nil {
			return pairEnsembles{}, false, err
		}
		stressed, err := bootstrap.ReadEnsembleCSV(sPath, pair, bootstrap.Stressed)
		if err != nil {
			return pairEnsembles{}, false, err
		}
		if fmu.Steps() < steps || stressed.Steps() < steps {
			return pairEnsembles{}, false, fmt.Errorf(
				"cached path files for %s cover %d trading days, run needs %d", pair, fmu.Steps(), steps)
		}
		return pairEnsembles{fmu: fmu, stressed: stressed}, true, nil
	}

	returns := bootstrap.LogReturns(e.Snapshot.HistoricalByPair(pair))
	if len(returns) == 0 {
		return pairEnsembles{}, false, fmt.Errorf(
			"pair %s has no historical data and no cached path files for %s", pair, dateID)
	}
	spot, err := e.Snapshot.SpotByPair(pair)
	if err != nil {
		return pairEnsembles{}, false, err
	}

	b := &bootstrap.Builder{
		Pair:         pair,
		LogReturns:   returns,
		Spot:         spot,
		NSimulations: nSim,
		Steps:        steps,
		Workers:      e.Settings.Run.Workers,
	}

	var fmuSrc, sSrc bootstrap.IndexSource
	if fileSrc != nil {
		// The index file carries one shared matrix; both families and
		// every pair replay the same draws.
		fmuSrc, sSrc = fileSrc, fileSrc
	} else {
		fmuSrc = bootstrap.NewGeneratorSource(e.Settings.Run.RandomSeed, pair, bootstrap.FMU)
		sSrc = bootstrap.NewGeneratorSource(e.Settings.Run.RandomSeed, pair, bootstrap.Stressed)
	}

	fmu, err := b.BuildFMU(fmuSrc)
	if err != nil {
		return pairEnsembles{}, false, err
	}
	stressed, err := b.BuildStressed(sSrc, stressedWindow)
	if err != nil {
		return pairEnsembles{}, false, err
	}

	if err := os.MkdirAll(pathsDir, 0755); err != nil {
		return pairEnsembles{}, false, fmt.Errorf("create paths dir: %w", err)
	}
	if err := bootstrap.WriteEnsembleCSV(fmuPath, fmu); err != nil {
		return pairEnsembles{}, false, err
	}
	if err := bootstrap.WriteEnsembleCSV(sPath, stressed); err != nil {
		return pairEnsembles{}, false, err
	}
	log.Debug().Str("pair", pair).Int("draws", fmu.NSimulations()).
		Int("steps", fmu.Steps()).Msg("ensembles simulated and persisted")

	return pairEnsembles{fmu: fmu, stressed: stressed}, false, nil
}

// evaluateProducts fans the payoff evaluation and aggregation cascade
// out over a worker pool. Products only read the shared ensembles, so
// they are safe to evaluate concurrently; failures stay local.
func (e *Engine) evaluateProducts(products []product.Product, ensembles map[string]pairEnsembles, log zerolog.Logger) {
	workers := e.Settings.Run.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(products) {
		workers = len(products)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan product.Product)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				pe, ok := ensembles[p.Pair()]
				if !ok {
					p.Fail(product.FailPayoff, fmt.Errorf("no ensembles for pair %s", p.Pair()))
					log.Warn().Str("product_id", p.ID()).Err(p.Err()).Msg("evaluation skipped")
					continue
				}
				if err := p.EvaluatePayoffs(pe.fmu, pe.stressed); err != nil {
					log.Warn().Str("product_id", p.ID()).Err(err).Msg("payoff evaluation failed")
					continue
				}
				if err := p.AggregateGross(); err != nil {
					log.Warn().Str("product_id", p.ID()).Err(err).Msg("gross aggregation failed")
					continue
				}
				if err := p.AggregateNet(); err != nil {
					log.Warn().Str("product_id", p.ID()).Err(err).Msg("net aggregation failed")
				}
			}
		}()
	}

	for _, p := range products {
		if p.Failed() {
			continue
		}
		jobs <- p
	}
	close(jobs)
	wg.Wait()
}

func (e *Engine) writeOutputs(runID string, products []product.Product, log zerolog.Logger) error {
	outDir := e.Settings.Output.OutputDir
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := report.WriteREO(filepath.Join(outDir, "REO.csv"), products); err != nil {
		return err
	}
	if err := report.WriteAttributes(filepath.Join(outDir, "Attributes.txt"), products); err != nil {
		return err
	}
	if e.Settings.Output.WriteProductLog {
		if err := report.WriteProductLog(filepath.Join(outDir, "ProductLog.json"), runID, products); err != nil {
			return err
		}
	}
	if e.Settings.Output.WritePayoffVectors {
		if err := report.WritePayoffVectors(outDir, products); err != nil {
			return err
		}
	}

	log.Info().Str("dir", outDir).Msg("outputs written")
	return nil
}

func fileReadable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
