package report

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/rustyeddy/priips/product"
)

// WriteAttributes writes one "id|key|value" line per attribute of each
// non-errored product. Keys are sorted within a product so the file is
// stable across runs.
func WriteAttributes(path string, products []product.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create attributes file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range products {
		if p.Failed() {
			continue
		}

		attrs := p.Attributes()
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s|%s|%s\n", p.ID(), k, attrs[k]); err != nil {
				return fmt.Errorf("write attributes for %s: %w", p.ID(), err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush attributes file: %w", err)
	}
	return f.Close()
}
