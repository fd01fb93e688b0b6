package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
	"github.com/rustyeddy/priips/product"
)

func reportSnapshot() *market.Snapshot {
	flat := func(v float64) market.Curve {
		return market.Curve{{Days: 1, Value: v}, {Days: 2000, Value: v}}
	}
	data := market.NewData()
	data.Spots["EURUSD"] = 1.1
	data.Yields["EUR-OIS"] = flat(0.01)
	data.Yields["USD-OIS"] = flat(0.02)
	data.ATMVols["EURUSD-VOL|USD"] = flat(0.10)
	return market.NewSnapshot(data, market.Mapping{
		"EURUSD": {
			YieldCurve: map[string]string{"EUR": "EUR-OIS", "USD": "USD-OIS"},
			VolCurve:   "EURUSD-VOL",
		},
	})
}

func amount(v float64) *float64 { return &v }

// testProducts returns one fully evaluated forward and one that failed
// pre-processing on a malformed tenor.
func testProducts(t *testing.T) []product.Product {
	t.Helper()

	good := &product.Forward{
		Base: product.Base{
			TradeDate: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			CcyFor:    "EUR", CcyDom: "USD", CcySettle: "USD",
			Position: product.Long,
			TenorRHP: "6M",
			Cost:     0.005,
			MRM:      3, CRM: 2, SRI: 3,
		},
		Deliverable:     true,
		ReceiveCurrency: "EUR",
		PayCurrency:     "USD",
		ReceiveAmount:   amount(10000),
	}
	good.SetIndex(0)

	bad := &product.Forward{
		Base: product.Base{
			TradeDate: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			CcyFor:    "EUR", CcyDom: "USD", CcySettle: "USD",
			TenorRHP: "6Q",
		},
		Deliverable:     true,
		ReceiveCurrency: "EUR",
		PayCurrency:     "USD",
		ReceiveAmount:   amount(10000),
	}
	bad.SetIndex(1)

	snap := reportSnapshot()
	cal := dates.NewEnglandCalendar()
	require.NoError(t, good.PreProcess(snap, cal))
	require.Error(t, bad.PreProcess(snap, cal))

	steps := good.NTradingDaysRHP()
	paths := make([][]float64, 4)
	for i := range paths {
		p := make([]float64, steps)
		for k := range p {
			p[k] = good.Strike
		}
		paths[i] = p
	}
	fmu := &bootstrap.Ensemble{Pair: "EURUSD", Family: bootstrap.FMU, Paths: paths}
	stressed := &bootstrap.Ensemble{Pair: "EURUSD", Family: bootstrap.Stressed, Paths: paths}
	require.NoError(t, good.EvaluatePayoffs(fmu, stressed))
	require.NoError(t, good.AggregateGross())
	require.NoError(t, good.AggregateNet())

	return []product.Product{good, bad}
}

func TestWriteREO(t *testing.T) {
	t.Parallel()

	products := testProducts(t)
	path := filepath.Join(t.TempDir(), "REO.csv")
	require.NoError(t, WriteREO(path, products))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// Header plus the one non-errored product.
	require.Len(t, rows, 2)
	assert.Equal(t, product.REOColumns, rows[0])
	assert.Equal(t, products[0].ID(), rows[1][0])
}

func TestWriteAttributes(t *testing.T) {
	t.Parallel()

	products := testProducts(t)
	path := filepath.Join(t.TempDir(), "Attributes.txt")
	require.NoError(t, WriteAttributes(path, products))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)

	var keys []string
	for _, line := range lines {
		parts := strings.SplitN(line, "|", 3)
		require.Len(t, parts, 3, "line %q", line)
		// Only the non-errored product appears.
		assert.Equal(t, products[0].ID(), parts[0])
		keys = append(keys, parts[1])
	}
	assert.True(t, sort.StringsAreSorted(keys))
}

func TestWriteProductLog(t *testing.T) {
	t.Parallel()

	products := testProducts(t)
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, WriteProductLog(path, "01TESTRUN", products))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Equal(t, "01TESTRUN", e["run_id"])
	}
	// The errored product logs its failure kind.
	assert.Equal(t, "tenor", entries[1]["error_kind"])
	assert.NotContains(t, entries[0], "error_kind")
}

func TestWritePayoffVectors(t *testing.T) {
	t.Parallel()

	products := testProducts(t)
	dir := t.TempDir()
	require.NoError(t, WritePayoffVectors(dir, products))

	f, err := os.Open(filepath.Join(dir, products[0].ID()+"-payoffs.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5) // header + four draws
	assert.Equal(t, []string{"fmu", "stressed"}, rows[0])

	// The errored product writes nothing.
	_, err = os.Stat(filepath.Join(dir, products[1].ID()+"-payoffs.csv"))
	assert.True(t, os.IsNotExist(err))
}
