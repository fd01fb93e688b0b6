package bootstrap

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// PathFilename returns the cache file name for one (trade date, pair,
// family) ensemble, e.g. 20250203-PATH_FMU_EURUSD.csv.
func PathFilename(dir, dateIdentifier, pair string, family Family) string {
	return filepath.Join(dir, fmt.Sprintf("%s-PATH_%s_%s.csv", dateIdentifier, family, pair))
}

// WriteEnsembleCSV persists an ensemble: no header, columns are
// simulation draws, row k is the level at trading day k+1.
func WriteEnsembleCSV(path string, e *Ensemble) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create path file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	steps := e.Steps()
	record := make([]string, e.NSimulations())
	for k := 0; k < steps; k++ {
		for i := range e.Paths {
			record[i] = strconv.FormatFloat(e.Paths[i][k], 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write path file: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush path file: %w", err)
	}
	return nil
}

// ReadEnsembleCSV loads a persisted ensemble back into draw-major form.
func ReadEnsembleCSV(path, pair string, family Family) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open path file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read path file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("path file %s is empty", path)
	}

	nSim := len(records[0])
	paths := make([][]float64, nSim)
	for i := range paths {
		paths[i] = make([]float64, len(records))
	}
	for k, rec := range records {
		if len(rec) != nSim {
			return nil, fmt.Errorf("path file %s: ragged row %d", path, k)
		}
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("path file %s row %d: bad value %q: %w", path, k, field, err)
			}
			paths[i][k] = v
		}
	}

	return &Ensemble{Pair: pair, Family: family, Paths: paths}, nil
}
