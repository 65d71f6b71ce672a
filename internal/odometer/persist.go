package odometer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hilodev/csuodo/internal/csu"
)

func insertRunRecord(db *sql.DB, startedAt time.Time, triggeredBy string) (int64, error) {
	now := startedAt.Unix()
	res, err := db.Exec(`
		INSERT INTO run_history
			(started_at, status, triggered_by, created_at)
		VALUES (?, 'running', ?, ?)`,
		now, triggeredBy, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func finaliseRunRecord(db *sql.DB, runID int64, status string, finishedAt time.Time, durationSecs int64, p *Progress, errMsg string) error {
	var errVal interface{}
	if errMsg != "" {
		errVal = errMsg
	}
	_, err := db.Exec(`
		UPDATE run_history
		SET status           = ?,
		    finished_at      = ?,
		    duration_seconds = ?,
		    files_processed  = ?,
		    files_skipped    = ?,
		    cache_hits       = ?,
		    cache_misses     = ?,
		    lines_read       = ?,
		    records_accepted = ?,
		    lines_skipped    = ?,
		    error            = ?
		WHERE id = ?`,
		status, finishedAt.Unix(), durationSecs,
		p.FilesProcessed.Load(),
		p.FilesSkipped.Load(),
		p.CacheHits.Load(),
		p.CacheMisses.Load(),
		p.LinesRead.Load(),
		p.RecordsAccepted.Load(),
		p.LinesSkipped.Load(),
		errVal,
		runID)
	return err
}

// persistAggregate writes the per-bar totals and accepted file spans of a
// completed run in a single transaction, so the API never serves a run
// with a partial bar set.
func persistAggregate(ctx context.Context, db *sql.DB, runID int64, agg *Aggregate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmtBar, err := tx.PrepareContext(ctx, `
		INSERT INTO bar_totals (run_id, bar, mileage_m, nmoves)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare bar_totals insert: %w", err)
	}
	defer stmtBar.Close()

	for bar := 1; bar <= csu.NumBars; bar++ {
		if _, err := stmtBar.ExecContext(ctx,
			runID, bar, agg.Mileage[bar-1], agg.Moves[bar-1]); err != nil {
			return fmt.Errorf("insert bar %d: %w", bar, err)
		}
	}

	stmtSpan, err := tx.PrepareContext(ctx, `
		INSERT INTO file_spans (run_id, path, start_at, end_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file_spans insert: %w", err)
	}
	defer stmtSpan.Close()

	for _, s := range agg.Spans {
		if _, err := stmtSpan.ExecContext(ctx,
			runID, s.Path, s.Start.Unix(), s.End.Unix()); err != nil {
			return fmt.Errorf("insert span %q: %w", s.Path, err)
		}
	}

	return tx.Commit()
}
