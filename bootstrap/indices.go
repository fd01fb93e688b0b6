package bootstrap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"strconv"
)

// Family is the scenario family an ensemble belongs to.
type Family int

const (
	FMU Family = iota
	Stressed
)

func (f Family) String() string {
	if f == Stressed {
		return "S"
	}
	return "FMU"
}

// ErrIndexExhausted reports that a file-backed index source has fewer
// draw rows than the run requires.
var ErrIndexExhausted = errors.New("random index source exhausted")

// IndexSource supplies resampling indices for one ensemble. Indices must
// be requested in ascending draw order; generator-backed sources are
// stateful and row i always consumes the i-th block of the stream.
type IndexSource interface {
	// Indices returns n resampling indices for the given draw, each in
	// [0, nLogReturns-1].
	Indices(draw, n, nLogReturns int) ([]int, error)

	// Steps returns the per-draw index capacity, or -1 when unlimited.
	Steps() int
}

// GeneratorSource draws uniform integer indices from a deterministic
// generator seeded from (runSeed, pair, family).
type GeneratorSource struct {
	rng *rand.Rand
}

// SeedFor derives the per-ensemble seed from the run seed, the currency
// pair and the scenario family, so every ensemble has an independent,
// reproducible stream.
func SeedFor(runSeed int64, pair string, family Family) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(runSeed >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(pair))
	h.Write([]byte(family.String()))
	return int64(h.Sum64())
}

// NewGeneratorSource returns a source for one (pair, family) ensemble.
func NewGeneratorSource(runSeed int64, pair string, family Family) *GeneratorSource {
	return &GeneratorSource{rng: rand.New(rand.NewSource(SeedFor(runSeed, pair, family)))}
}

func (g *GeneratorSource) Indices(draw, n, nLogReturns int) ([]int, error) {
	if nLogReturns <= 0 {
		return nil, fmt.Errorf("no log returns to resample")
	}
	out := make([]int, n)
	for i := range out {
		out[i] = g.rng.Intn(nLogReturns)
	}
	return out, nil
}

func (g *GeneratorSource) Steps() int { return -1 }

// FileSource serves indices from a pre-supplied matrix: rows are
// simulation draws, columns are trading-day steps. A row whose first and
// last entries lie strictly inside (0,1) is interpreted as uniform
// variates mapped via floor(u*n); any other row is read as 1-based
// integers. All results are clipped to [0, n-1].
type FileSource struct {
	rows [][]float64
}

// NewFileSource reads a headerless CSV index matrix.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read index file %s: %w", path, err)
	}

	rows := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("index file %s row %d: bad value %q: %w", path, i, field, err)
			}
			row[j] = v
		}
		rows[i] = row
	}

	return &FileSource{rows: rows}, nil
}

// NewFileSourceFromMatrix wraps an in-memory index matrix.
func NewFileSourceFromMatrix(rows [][]float64) *FileSource {
	return &FileSource{rows: rows}
}

func (f *FileSource) Indices(draw, n, nLogReturns int) ([]int, error) {
	if draw >= len(f.rows) {
		return nil, fmt.Errorf("%w: draw %d, %d rows available", ErrIndexExhausted, draw, len(f.rows))
	}
	row := f.rows[draw]
	if n > len(row) {
		return nil, fmt.Errorf("%w: need %d indices per draw, row has %d", ErrIndexExhausted, n, len(row))
	}

	uniform := row[0] > 0 && row[0] < 1 && row[n-1] > 0 && row[n-1] < 1

	out := make([]int, n)
	for i := 0; i < n; i++ {
		var idx int
		if uniform {
			idx = int(math.Floor(row[i] * float64(nLogReturns)))
		} else {
			idx = int(row[i]) - 1
		}
		if idx < 0 {
			idx = 0
		}
		if idx > nLogReturns-1 {
			idx = nLogReturns - 1
		}
		out[i] = idx
	}
	return out, nil
}

// Steps returns the column count of the matrix (0 for an empty matrix).
func (f *FileSource) Steps() int {
	if len(f.rows) == 0 {
		return 0
	}
	return len(f.rows[0])
}

// Draws returns the number of draw rows in the matrix.
func (f *FileSource) Draws() int { return len(f.rows) }
