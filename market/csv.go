package market

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSV file names expected inside a market-data directory.
const (
	spotsFile      = "spots.csv"
	yieldsFile     = "yields.csv"
	atmVolsFile    = "atmvols.csv"
	deltaVolsFile  = "deltavols.csv"
	historicalFile = "historical.csv"
)

// LoadCSVDir reads the market-data CSV files from dir. Every file must
// carry a header row. deltavols.csv and historical.csv are optional;
// the other three are required.
func LoadCSVDir(dir string) (*Data, error) {
	data := NewData()

	if err := loadSpots(filepath.Join(dir, spotsFile), data); err != nil {
		return nil, err
	}
	if err := loadYields(filepath.Join(dir, yieldsFile), data); err != nil {
		return nil, err
	}
	if err := loadATMVols(filepath.Join(dir, atmVolsFile), data); err != nil {
		return nil, err
	}
	if err := loadDeltaVols(filepath.Join(dir, deltaVolsFile), data); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err := loadHistorical(filepath.Join(dir, historicalFile), data); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return data, nil
}

func readRecords(path string, wantCols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = wantCols
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	return records[1:], nil
}

func parseFloat(path, field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad %s value %q: %w", path, field, s, err)
	}
	return v, nil
}

func loadSpots(path string, data *Data) error {
	records, err := readRecords(path, 3)
	if err != nil {
		return err
	}
	for _, rec := range records {
		rate, err := parseFloat(path, "rate", rec[2])
		if err != nil {
			return err
		}
		data.Spots[PairKey(rec[0], rec[1])] = rate
	}
	return nil
}

func loadYields(path string, data *Data) error {
	records, err := readRecords(path, 3)
	if err != nil {
		return err
	}
	for _, rec := range records {
		days, err := parseFloat(path, "tenor_days", rec[1])
		if err != nil {
			return err
		}
		y, err := parseFloat(path, "yield", rec[2])
		if err != nil {
			return err
		}
		data.Yields[rec[0]] = append(data.Yields[rec[0]], TenorPoint{Days: days, Value: y})
	}
	return nil
}

func loadATMVols(path string, data *Data) error {
	records, err := readRecords(path, 4)
	if err != nil {
		return err
	}
	for _, rec := range records {
		days, err := parseFloat(path, "tenor_days", rec[2])
		if err != nil {
			return err
		}
		v, err := parseFloat(path, "vol", rec[3])
		if err != nil {
			return err
		}
		key := VolKey(rec[0], rec[1])
		data.ATMVols[key] = append(data.ATMVols[key], TenorPoint{Days: days, Value: v})
	}
	return nil
}

func loadDeltaVols(path string, data *Data) error {
	records, err := readRecords(path, 7)
	if err != nil {
		return err
	}
	for _, rec := range records {
		delta, err := parseFloat(path, "delta", rec[3])
		if err != nil {
			return err
		}
		days, err := parseFloat(path, "tenor_days", rec[5])
		if err != nil {
			return err
		}
		v, err := parseFloat(path, "vol", rec[6])
		if err != nil {
			return err
		}

		key := VolKey(rec[0], rec[1])
		var curves map[string]DeltaVolCurve
		switch rec[2] {
		case "MS":
			curves = data.Strangles
		case "RR":
			curves = data.RiskReversals
		default:
			return fmt.Errorf("%s: unknown delta vol kind %q", path, rec[2])
		}

		dc := curves[key]
		if len(dc.Points) > 0 && dc.DeltaFlag != rec[4] {
			return fmt.Errorf("%s: inconsistent delta flag for curve %s", path, key)
		}
		dc.Delta = delta
		dc.DeltaFlag = rec[4]
		dc.Points = append(dc.Points, TenorPoint{Days: days, Value: v})
		curves[key] = dc
	}
	return nil
}

func loadHistorical(path string, data *Data) error {
	records, err := readRecords(path, 4)
	if err != nil {
		return err
	}
	for _, rec := range records {
		date, err := time.Parse("2006-01-02", rec[2])
		if err != nil {
			return fmt.Errorf("%s: bad date %q: %w", path, rec[2], err)
		}
		rate, err := parseFloat(path, "rate", rec[3])
		if err != nil {
			return err
		}
		key := PairKey(rec[0], rec[1])
		data.Historical[key] = append(data.Historical[key], HistoricalRate{Date: date, Rate: rate})
	}
	return nil
}
