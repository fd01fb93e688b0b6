package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rustyeddy/priips/product"
)

// WriteProductLog dumps every product's explicit log fields as a JSON
// array, each entry stamped with the run ID. Errored products are
// included here: the log is the diagnostic record and carries their
// error kind and message.
func WriteProductLog(path, runID string, products []product.Product) error {
	entries := make([]map[string]any, 0, len(products))
	for _, p := range products {
		fields := p.LogFields()
		fields["run_id"] = runID
		entries = append(entries, fields)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal product log: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write product log: %w", err)
	}
	return nil
}

// WritePayoffVectors writes one CSV per non-errored product with its
// per-draw FMU and stressed payoffs side by side.
func WritePayoffVectors(dir string, products []product.Product) error {
	for _, p := range products {
		if p.Failed() {
			continue
		}
		fmu, stressed := p.PayoffVectors()
		if fmu == nil {
			continue
		}

		path := filepath.Join(dir, p.ID()+"-payoffs.csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create payoff file for %s: %w", p.ID(), err)
		}

		w := csv.NewWriter(f)
		if err := w.Write([]string{"fmu", "stressed"}); err != nil {
			f.Close()
			return fmt.Errorf("write payoff header for %s: %w", p.ID(), err)
		}
		for i := range fmu {
			rec := []string{
				strconv.FormatFloat(fmu[i], 'g', -1, 64),
				strconv.FormatFloat(stressed[i], 'g', -1, 64),
			}
			if err := w.Write(rec); err != nil {
				f.Close()
				return fmt.Errorf("write payoff row for %s: %w", p.ID(), err)
			}
		}

		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return fmt.Errorf("flush payoff file for %s: %w", p.ID(), err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
