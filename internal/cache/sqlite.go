package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hilodev/csuodo/internal/odometer"
)

// SQLiteStore keeps result artifacts in the odometer_cache table instead
// of next to the logs, for deployments where the log volume is read-only.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a database-backed Store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore { return &SQLiteStore{db: db} }

// Get loads the cached result for dir, if a row exists.
func (s *SQLiteStore) Get(ctx context.Context, dir string) (*odometer.FileResult, bool, error) {
	var mileageJSON, movesJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT mileage, nmoves FROM odometer_cache WHERE directory = ?`, dir,
	).Scan(&mileageJSON, &movesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache row %q: %w", dir, err)
	}

	var res odometer.FileResult
	if err := json.Unmarshal([]byte(mileageJSON), &res.Mileage); err != nil {
		return nil, false, fmt.Errorf("parse cached mileage for %q: %w", dir, err)
	}
	if err := json.Unmarshal([]byte(movesJSON), &res.Moves); err != nil {
		return nil, false, fmt.Errorf("parse cached nmoves for %q: %w", dir, err)
	}
	return &res, true, nil
}

// Put upserts the result row for dir.
func (s *SQLiteStore) Put(ctx context.Context, dir string, res *odometer.FileResult) error {
	mileageJSON, err := json.Marshal(res.Mileage)
	if err != nil {
		return fmt.Errorf("encode mileage: %w", err)
	}
	movesJSON, err := json.Marshal(res.Moves)
	if err != nil {
		return fmt.Errorf("encode nmoves: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO odometer_cache (directory, mileage, nmoves, cached_at)
		VALUES (?, ?, ?, ?)`,
		dir, string(mileageJSON), string(movesJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write cache row %q: %w", dir, err)
	}
	return nil
}

// Delete removes dir's row. A missing row is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, dir string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM odometer_cache WHERE directory = ?`, dir); err != nil {
		return fmt.Errorf("delete cache row %q: %w", dir, err)
	}
	return nil
}
