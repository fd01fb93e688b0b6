// Package report writes the run outputs: the regulatory REO table, the
// attributes file, and the optional product log and payoff-vector dumps.
// Errored products are excluded from every writer; their IDs stay stable
// because the product list itself is never reordered.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rustyeddy/priips/product"
)

// WriteREO writes the regulatory table: the fixed column header followed
// by one row per non-errored product, in product-list order.
func WriteREO(path string, products []product.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create REO file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(product.REOColumns); err != nil {
		return fmt.Errorf("write REO header: %w", err)
	}

	for _, p := range products {
		if p.Failed() {
			continue
		}
		if err := w.Write(p.REORecord()); err != nil {
			return fmt.Errorf("write REO row for %s: %w", p.ID(), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush REO file: %w", err)
	}
	return f.Close()
}
