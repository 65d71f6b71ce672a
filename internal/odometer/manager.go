package odometer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned when a run is started while one is in progress.
var ErrAlreadyRunning = errors.New("a run is already in progress")

// ErrNoActiveRun is returned when cancel is called with no run in progress.
var ErrNoActiveRun = errors.New("no run is currently in progress")

// ActiveRun holds live information about the running corpus pass.
type ActiveRun struct {
	ID          int64
	StartedAt   time.Time
	TriggeredBy string
	Progress    *Progress
}

// Manager enforces a single-active-run invariant and exposes start/cancel.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	db       *sql.DB
	store    Store
	cfg      Config
	exporter Exporter

	active   *ActiveRun
	cancelFn context.CancelFunc
}

// NewManager creates a Manager. exporter may be nil when no report handoff
// is wanted (tests).
func NewManager(db *sql.DB, store Store, cfg Config, exporter Exporter) *Manager {
	return &Manager{db: db, store: store, cfg: cfg, exporter: exporter}
}

// UpdateConfig replaces the discovery config used for future runs.
// It does not affect a currently running pass.
func (m *Manager) UpdateConfig(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// Start launches an asynchronous corpus run. Returns an ActiveRun snapshot
// or ErrAlreadyRunning if one is in progress.
func (m *Manager) Start(parentCtx context.Context, triggeredBy string) (*ActiveRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrAlreadyRunning
	}

	// Create the run_history record now so the ID is available in the HTTP
	// response before the goroutine begins executing.
	startedAt := time.Now()
	runID, err := insertRunRecord(m.db, startedAt, triggeredBy)
	if err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}

	progress := &Progress{}
	runCtx, cancel := context.WithCancel(parentCtx)

	active := &ActiveRun{
		ID:          runID,
		StartedAt:   startedAt,
		TriggeredBy: triggeredBy,
		Progress:    progress,
	}
	m.active = active
	m.cancelFn = cancel

	runner := NewRunner(m.store, m.cfg)

	go func() {
		m.execute(runCtx, runner, runID, triggeredBy, startedAt, progress)

		m.mu.Lock()
		m.active = nil
		m.cancelFn = nil
		m.mu.Unlock()
	}()

	return active, nil
}

// execute drives one run to a terminal status and records the outcome.
func (m *Manager) execute(ctx context.Context, runner *Runner, runID int64, triggeredBy string, startedAt time.Time, progress *Progress) {
	slog.Info("run started", "id", runID, "triggered_by", triggeredBy)

	agg, runErr := runner.Run(ctx, progress)

	status := "completed"
	switch {
	case ctx.Err() != nil:
		status = "cancelled"
		if runErr == nil {
			runErr = ctx.Err()
		}
	case runErr != nil:
		status = "failed"
	}

	if status == "completed" {
		if err := persistAggregate(context.Background(), m.db, runID, agg); err != nil {
			slog.Error("persist aggregate", "id", runID, "error", err)
			status = "failed"
			runErr = err
		}
	}
	if status == "completed" && m.exporter != nil {
		if err := m.exporter.Export(agg); err != nil {
			slog.Error("export report data", "id", runID, "error", err)
		}
	}

	finishedAt := time.Now()
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		var overlap *OverlapError
		if errors.As(runErr, &overlap) {
			slog.Error("found overlap between log files",
				"new", overlap.New.Path, "new_start", overlap.New.Start,
				"existing", overlap.Existing.Path,
				"existing_start", overlap.Existing.Start,
				"existing_end", overlap.Existing.End)
		} else if !errors.Is(runErr, context.Canceled) {
			slog.Error("run error", "id", runID, "error", runErr)
		}
	}

	if err := finaliseRunRecord(m.db, runID, status, finishedAt,
		int64(finishedAt.Sub(startedAt).Seconds()), progress, errMsg); err != nil {
		slog.Error("finalise run record", "id", runID, "error", err)
	}

	slog.Info("run finished", "id", runID, "status", status,
		"files_processed", progress.FilesProcessed.Load(),
		"cache_hits", progress.CacheHits.Load(),
		"cache_misses", progress.CacheMisses.Load())
}

// Cancel stops the currently running pass. Returns ErrNoActiveRun if idle.
func (m *Manager) Cancel() (*ActiveRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrNoActiveRun
	}

	snap := *m.active
	m.cancelFn()
	return &snap, nil
}

// ActiveRun returns a snapshot of the running pass, or nil when idle.
func (m *Manager) ActiveRun() *ActiveRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	snap := *m.active
	return &snap
}

// MarkStaleRunsFailed marks any run_history rows still in 'running' state
// as 'failed'. Called once at startup in case a previous process died
// mid-run.
func MarkStaleRunsFailed(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE run_history
		SET status = 'failed', finished_at = ?
		WHERE status = 'running'`,
		time.Now().Unix())
	if err != nil {
		return fmt.Errorf("mark stale runs failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Warn("marked stale runs as failed", "count", n)
	}
	return nil
}
