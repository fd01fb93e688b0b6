package market

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS spots (
	ccy_for  TEXT NOT NULL,
	ccy_dom  TEXT NOT NULL,
	rate     REAL NOT NULL,
	PRIMARY KEY (ccy_for, ccy_dom)
);

CREATE TABLE IF NOT EXISTS yields (
	curve      TEXT NOT NULL,
	tenor_days REAL NOT NULL,
	yield      REAL NOT NULL,
	PRIMARY KEY (curve, tenor_days)
);

CREATE TABLE IF NOT EXISTS atm_vols (
	curve      TEXT NOT NULL,
	counter    TEXT NOT NULL,
	tenor_days REAL NOT NULL,
	vol        REAL NOT NULL,
	PRIMARY KEY (curve, counter, tenor_days)
);

CREATE TABLE IF NOT EXISTS delta_vols (
	curve      TEXT NOT NULL,
	counter    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	delta      REAL NOT NULL,
	delta_flag TEXT NOT NULL,
	tenor_days REAL NOT NULL,
	vol        REAL NOT NULL,
	PRIMARY KEY (curve, counter, kind, tenor_days)
);

CREATE TABLE IF NOT EXISTS historical_rates (
	ccy_for TEXT NOT NULL,
	ccy_dom TEXT NOT NULL,
	date    TEXT NOT NULL,
	rate    REAL NOT NULL,
	PRIMARY KEY (ccy_for, ccy_dom, date)
);
`

// SQLiteStore is a SQLite-backed market-data store with the same shape
// as the CSV directory loader.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a market-data database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open market db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init market schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads the full data set into memory.
func (s *SQLiteStore) Load() (*Data, error) {
	data := NewData()

	rows, err := s.db.Query(`SELECT ccy_for, ccy_dom, rate FROM spots`)
	if err != nil {
		return nil, fmt.Errorf("query spots: %w", err)
	}
	for rows.Next() {
		var forCcy, domCcy string
		var rate float64
		if err := rows.Scan(&forCcy, &domCcy, &rate); err != nil {
			rows.Close()
			return nil, err
		}
		data.Spots[PairKey(forCcy, domCcy)] = rate
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT curve, tenor_days, yield FROM yields ORDER BY curve, tenor_days`)
	if err != nil {
		return nil, fmt.Errorf("query yields: %w", err)
	}
	for rows.Next() {
		var curve string
		var days, y float64
		if err := rows.Scan(&curve, &days, &y); err != nil {
			rows.Close()
			return nil, err
		}
		data.Yields[curve] = append(data.Yields[curve], TenorPoint{Days: days, Value: y})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT curve, counter, tenor_days, vol FROM atm_vols ORDER BY curve, counter, tenor_days`)
	if err != nil {
		return nil, fmt.Errorf("query atm vols: %w", err)
	}
	for rows.Next() {
		var curve, counter string
		var days, v float64
		if err := rows.Scan(&curve, &counter, &days, &v); err != nil {
			rows.Close()
			return nil, err
		}
		key := VolKey(curve, counter)
		data.ATMVols[key] = append(data.ATMVols[key], TenorPoint{Days: days, Value: v})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT curve, counter, kind, delta, delta_flag, tenor_days, vol FROM delta_vols ORDER BY curve, counter, kind, tenor_days`)
	if err != nil {
		return nil, fmt.Errorf("query delta vols: %w", err)
	}
	for rows.Next() {
		var curve, counter, kind, flag string
		var delta, days, v float64
		if err := rows.Scan(&curve, &counter, &kind, &delta, &flag, &days, &v); err != nil {
			rows.Close()
			return nil, err
		}

		key := VolKey(curve, counter)
		var curves map[string]DeltaVolCurve
		switch kind {
		case "MS":
			curves = data.Strangles
		case "RR":
			curves = data.RiskReversals
		default:
			rows.Close()
			return nil, fmt.Errorf("unknown delta vol kind %q in market db", kind)
		}
		dc := curves[key]
		dc.Delta = delta
		dc.DeltaFlag = flag
		dc.Points = append(dc.Points, TenorPoint{Days: days, Value: v})
		curves[key] = dc
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT ccy_for, ccy_dom, date, rate FROM historical_rates ORDER BY ccy_for, ccy_dom, date`)
	if err != nil {
		return nil, fmt.Errorf("query historical rates: %w", err)
	}
	for rows.Next() {
		var forCcy, domCcy, date string
		var rate float64
		if err := rows.Scan(&forCcy, &domCcy, &date, &rate); err != nil {
			rows.Close()
			return nil, err
		}
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("bad date %q in market db: %w", date, err)
		}
		key := PairKey(forCcy, domCcy)
		data.Historical[key] = append(data.Historical[key], HistoricalRate{Date: day, Rate: rate})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return data, nil
}

// Import writes an in-memory data set into the store, replacing rows
// that share a primary key.
func (s *SQLiteStore) Import(data *Data) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, rate := range data.Spots {
		forCcy, domCcy := key[:3], key[3:]
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO spots (ccy_for, ccy_dom, rate) VALUES (?, ?, ?)`,
			forCcy, domCcy, rate,
		); err != nil {
			return err
		}
	}
	for curve, points := range data.Yields {
		for _, p := range points {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO yields (curve, tenor_days, yield) VALUES (?, ?, ?)`,
				curve, p.Days, p.Value,
			); err != nil {
				return err
			}
		}
	}
	for key, points := range data.ATMVols {
		curve, counter := splitVolKey(key)
		for _, p := range points {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO atm_vols (curve, counter, tenor_days, vol) VALUES (?, ?, ?, ?)`,
				curve, counter, p.Days, p.Value,
			); err != nil {
				return err
			}
		}
	}
	if err := importDeltaVols(tx, data.Strangles, "MS"); err != nil {
		return err
	}
	if err := importDeltaVols(tx, data.RiskReversals, "RR"); err != nil {
		return err
	}
	for key, series := range data.Historical {
		forCcy, domCcy := key[:3], key[3:]
		for _, h := range series {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO historical_rates (ccy_for, ccy_dom, date, rate) VALUES (?, ?, ?, ?)`,
				forCcy, domCcy, h.Date.Format("2006-01-02"), h.Rate,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func importDeltaVols(tx *sql.Tx, curves map[string]DeltaVolCurve, kind string) error {
	for key, dc := range curves {
		curve, counter := splitVolKey(key)
		for _, p := range dc.Points {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO delta_vols (curve, counter, kind, delta, delta_flag, tenor_days, vol)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				curve, counter, kind, dc.Delta, dc.DeltaFlag, p.Days, p.Value,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func splitVolKey(key string) (curve, counter string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
