// Package store journals orchestration outcomes to SQLite for the
// history endpoint. It is observability only: nothing on the hot path
// reads it, and no cache or quota state is restored from it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one journaled orchestration.
type Record struct {
	RequestID      string    `json:"request_id"`
	Timestamp      time.Time `json:"timestamp"`
	CacheKey       string    `json:"cache_key"`
	Outcome        string    `json:"outcome"`
	FailureClass   string    `json:"failure_class,omitempty"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	PairCount      int       `json:"pair_count"`
	FailedPairs    int       `json:"failed_pairs"`
	ForecastDays   int       `json:"forecast_days"`
	LocationID     string    `json:"location_id,omitempty"`
}

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore opens the journal database, enabling WAL mode and creating
// the schema if needed.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS orchestrations (
		request_id TEXT PRIMARY KEY,
		ts DATETIME NOT NULL,
		cache_key TEXT NOT NULL,
		outcome TEXT NOT NULL,
		failure_class TEXT,
		elapsed_seconds REAL NOT NULL DEFAULT 0,
		pair_count INTEGER NOT NULL DEFAULT 0,
		failed_pairs INTEGER NOT NULL DEFAULT 0,
		forecast_days INTEGER NOT NULL DEFAULT 0,
		location_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_orchestrations_ts ON orchestrations(ts);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create orchestrations table: %w", err)
	}
	return nil
}

// AppendOutcome writes one orchestration record.
func (s *Store) AppendOutcome(ctx context.Context, rec Record) error {
	query := `
	INSERT INTO orchestrations
		(request_id, ts, cache_key, outcome, failure_class, elapsed_seconds, pair_count, failed_pairs, forecast_days, location_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.RequestID,
		rec.Timestamp.UTC(),
		rec.CacheKey,
		rec.Outcome,
		rec.FailureClass,
		rec.ElapsedSeconds,
		rec.PairCount,
		rec.FailedPairs,
		rec.ForecastDays,
		rec.LocationID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert orchestration record: %w", err)
	}
	return nil
}

// RecentOutcomes returns the newest records, newest first.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT request_id, ts, cache_key, outcome, failure_class, elapsed_seconds, pair_count, failed_pairs, forecast_days, location_id
	FROM orchestrations
	ORDER BY ts DESC
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orchestrations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var failureClass, locationID sql.NullString
		if err := rows.Scan(
			&rec.RequestID,
			&rec.Timestamp,
			&rec.CacheKey,
			&rec.Outcome,
			&failureClass,
			&rec.ElapsedSeconds,
			&rec.PairCount,
			&rec.FailedPairs,
			&rec.ForecastDays,
			&locationID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan orchestration record: %w", err)
		}
		rec.FailureClass = failureClass.String
		rec.LocationID = locationID.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
