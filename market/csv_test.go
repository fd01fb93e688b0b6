package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadCSVDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, spotsFile, "ccy_for,ccy_dom,rate\nEUR,USD,1.1\nGBP,USD,1.27\n")
	writeFile(t, dir, yieldsFile, "curve,tenor_days,yield\nEUR-OIS,30,0.01\nEUR-OIS,360,0.02\n")
	writeFile(t, dir, atmVolsFile, "curve,counter,tenor_days,vol\nEURUSD-VOL,USD,30,0.08\nEURUSD-VOL,USD,360,0.11\n")
	writeFile(t, dir, deltaVolsFile,
		"curve,counter,kind,delta,delta_flag,tenor_days,vol\n"+
			"EURUSD-VOL,USD,MS,25,SPOT,30,0.002\n"+
			"EURUSD-VOL,USD,RR,25,SPOT,30,-0.001\n")
	writeFile(t, dir, historicalFile, "ccy_for,ccy_dom,date,rate\nEUR,USD,2025-01-02,1.08\nEUR,USD,2025-01-03,1.09\n")

	data, err := LoadCSVDir(dir)
	require.NoError(t, err)

	assert.InDelta(t, 1.1, data.Spots["EURUSD"], 1e-12)
	assert.InDelta(t, 1.27, data.Spots["GBPUSD"], 1e-12)
	assert.Len(t, data.Yields["EUR-OIS"], 2)
	assert.Len(t, data.ATMVols["EURUSD-VOL|USD"], 2)
	assert.Equal(t, "SPOT", data.Strangles["EURUSD-VOL|USD"].DeltaFlag)
	assert.Equal(t, "SPOT", data.RiskReversals["EURUSD-VOL|USD"].DeltaFlag)
	assert.Len(t, data.Historical["EURUSD"], 2)
}

func TestLoadCSVDirOptionalFiles(t *testing.T) {
	t.Parallel()

	// deltavols.csv and historical.csv are optional.
	dir := t.TempDir()
	writeFile(t, dir, spotsFile, "ccy_for,ccy_dom,rate\nEUR,USD,1.1\n")
	writeFile(t, dir, yieldsFile, "curve,tenor_days,yield\nEUR-OIS,30,0.01\n")
	writeFile(t, dir, atmVolsFile, "curve,counter,tenor_days,vol\nEURUSD-VOL,USD,30,0.08\n")

	data, err := LoadCSVDir(dir)
	require.NoError(t, err)
	assert.Empty(t, data.Strangles)
	assert.Empty(t, data.Historical)
}

func TestLoadCSVDirMissingRequired(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, spotsFile, "ccy_for,ccy_dom,rate\n")
	writeFile(t, dir, yieldsFile, "curve,tenor_days,yield\n")

	_, err := LoadCSVDir(dir)
	assert.Error(t, err)
}

func TestLoadCSVDirBadKind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, spotsFile, "ccy_for,ccy_dom,rate\n")
	writeFile(t, dir, yieldsFile, "curve,tenor_days,yield\n")
	writeFile(t, dir, atmVolsFile, "curve,counter,tenor_days,vol\n")
	writeFile(t, dir, deltaVolsFile, "curve,counter,kind,delta,delta_flag,tenor_days,vol\nX,USD,BAD,25,SPOT,30,0.1\n")

	_, err := LoadCSVDir(dir)
	assert.ErrorContains(t, err, "unknown delta vol kind")
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "market.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	in := NewData()
	in.Spots["EURUSD"] = 1.1
	in.Yields["EUR-OIS"] = Curve{{30, 0.01}, {360, 0.02}}
	in.ATMVols["EURUSD-VOL|USD"] = Curve{{30, 0.08}}
	in.Strangles["EURUSD-VOL|USD"] = DeltaVolCurve{Points: Curve{{30, 0.002}}, Delta: 25, DeltaFlag: "FORWARD"}

	require.NoError(t, store.Import(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.InDelta(t, 1.1, out.Spots["EURUSD"], 1e-12)
	assert.Equal(t, in.Yields["EUR-OIS"], out.Yields["EUR-OIS"])
	assert.Equal(t, "FORWARD", out.Strangles["EURUSD-VOL|USD"].DeltaFlag)
}
