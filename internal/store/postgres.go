// Package store is the relational observation backend, backed by PostgreSQL
// via pgx. It serves three tables: stations (reference metadata, 1-based
// ids), daily_features (the derived observation table, 0-based schema ids,
// lowercase column names), and heat_index (recorded ground truth, 1-based
// ids). The 1-based ids are converted to the pipeline's 0-based form here.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heatwatch/hi-forecast/internal/domain"
)

// ConnectionError means the store is unreachable. Without station metadata
// no forecast is possible, so callers treat it as fatal.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to store: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DB is one connection pool, acquired per process and released on shutdown.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens and verifies the pool.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Err: err}
	}
	return &DB{pool: pool}, nil
}

// Close releases the pool.
func (db *DB) Close() { db.pool.Close() }

// Ping verifies the pool is still usable; used by the readiness endpoint.
func (db *DB) Ping(ctx context.Context) error { return db.pool.Ping(ctx) }

// Stations returns the station reference set in ascending id order, with
// the stored 1-based ids shifted to the pipeline's 0-based form.
func (db *DB) Stations(ctx context.Context) ([]domain.StationRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, latitude, longitude FROM stations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	var out []domain.StationRecord
	for rows.Next() {
		var (
			id       int
			lat, lon float64
		)
		if err := rows.Scan(&id, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		out = append(out, domain.StationRecord{ID: id - 1, Latitude: lat, Longitude: lon})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read stations: %w", err)
	}
	return out, nil
}

// Actual returns the recorded heat index for a station and date, or nil when
// no ground truth exists yet. stationID is 0-based.
func (db *DB) Actual(ctx context.Context, stationID int, date time.Time) (*float64, error) {
	var v float64
	err := db.pool.QueryRow(ctx,
		`SELECT actual FROM heat_index WHERE station = $1 AND date = $2`,
		stationID+1, date).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ground truth: %w", err)
	}
	return &v, nil
}

// RowsForDate returns the observation rows recorded on exactly date.
func (db *DB) RowsForDate(ctx context.Context, date time.Time) ([]domain.Row, error) {
	return db.queryRows(ctx,
		`SELECT * FROM daily_features WHERE date = $1`, date)
}

// RowsInRange returns the observation rows with from <= date <= to.
func (db *DB) RowsInRange(ctx context.Context, from, to time.Time) ([]domain.Row, error) {
	return db.queryRows(ctx,
		`SELECT * FROM daily_features WHERE date BETWEEN $1 AND $2 ORDER BY date, station`, from, to)
}

// queryRows maps result columns by name through domain.Canonicalize, so the
// store's lowercase identifiers come out under canonical training names.
// Columns that neither canonicalize nor coerce to a number are dropped.
func (db *DB) queryRows(ctx context.Context, sql string, args ...any) ([]domain.Row, error) {
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		if canonical, ok := domain.Canonicalize(fd.Name); ok {
			names[i] = canonical
		}
	}

	var out []domain.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read observation row: %w", err)
		}

		row := domain.Row{Values: make(map[string]float64, len(values))}
		for i, raw := range values {
			switch {
			case names[i] == "":
				continue
			case names[i] == domain.ColDate:
				if ts, ok := raw.(time.Time); ok {
					row.Date = ts.UTC()
				}
			default:
				if v, ok := toFloat64(raw); ok {
					row.Values[names[i]] = v
				}
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	return out, nil
}

// toFloat64 coerces the scan types pgx produces for numeric-ish columns.
// NULL and non-numeric values report false, which leaves the column absent
// from the row rather than zero.
func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	default:
		return 0, false
	}
}
