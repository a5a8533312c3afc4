// Package measurements persists raw weather observations in an embedded
// sqlite database. The global model trains on this history.
package measurements

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yava-code/weatherAI/internal/weather"
)

// Stats summarizes the stored history.
type Stats struct {
	Count              int64   `json:"count"`
	AverageTemperature float64 `json:"average_temperature"`
}

// SQLiteStore implements measurement persistence on modernc.org/sqlite
// (pure Go driver, no cgo).
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies the schema.
func New(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps concurrent scheduler writes and request reads cheap.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("measurements: could not set WAL mode:", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS weather_measurements (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        city TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        temperature REAL,
        humidity REAL,
        wind_speed REAL
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Insert appends one measurement.
func (s *SQLiteStore) Insert(ctx context.Context, m weather.Measurement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weather_measurements(city, timestamp, temperature, humidity, wind_speed) VALUES(?,?,?,?,?)`,
		m.City, m.Timestamp.UTC().Format(time.RFC3339), m.Temperature, m.Humidity, m.WindSpeed)
	if err != nil {
		return fmt.Errorf("insert measurement for %s: %w", m.City, err)
	}
	return nil
}

// All returns the full measurement history, oldest first.
func (s *SQLiteStore) All(ctx context.Context) ([]weather.Measurement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, city, timestamp, temperature, humidity, wind_speed FROM weather_measurements ORDER BY timestamp`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weather.Measurement
	for rows.Next() {
		var m weather.Measurement
		var ts string
		if err := rows.Scan(&m.ID, &m.City, &ts, &m.Temperature, &m.Humidity, &m.WindSpeed); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			m.Timestamp = t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Stats returns the row count and average temperature of the history.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(temperature) FROM weather_measurements`).Scan(&st.Count, &avg)
	if err != nil {
		return Stats{}, err
	}
	if avg.Valid {
		st.AverageTemperature = avg.Float64
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
