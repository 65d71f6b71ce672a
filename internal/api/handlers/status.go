package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/hilodev/csuodo/internal/odometer"
	"github.com/hilodev/csuodo/internal/scheduler"
)

// StatusHandler handles GET /api/status.
type StatusHandler struct {
	DB      *sql.DB
	Manager *odometer.Manager
	Sched   *scheduler.Scheduler
	Paused  bool
	Version string
}

type statusResponse struct {
	Version          string            `json:"version"`
	ActiveRun        *activeRunInfo    `json:"active_run"`
	Schedule         scheduleInfo      `json:"schedule"`
	LastCompletedRun *completedRunInfo `json:"last_completed_run"`
}

type activeRunInfo struct {
	ID          int64           `json:"id"`
	StartedAt   time.Time       `json:"started_at"`
	TriggeredBy string          `json:"triggered_by"`
	Progress    runProgressInfo `json:"progress"`
}

type runProgressInfo struct {
	FilesProcessed  int64 `json:"files_processed"`
	FilesSkipped    int64 `json:"files_skipped"`
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
	LinesRead       int64 `json:"lines_read"`
	RecordsAccepted int64 `json:"records_accepted"`
	LinesSkipped    int64 `json:"lines_skipped"`
}

type scheduleInfo struct {
	Cron      string     `json:"cron"`
	Paused    bool       `json:"paused"`
	NextRunAt *time.Time `json:"next_run_at"`
}

type completedRunInfo struct {
	ID              int64     `json:"id"`
	FinishedAt      time.Time `json:"finished_at"`
	FilesProcessed  int64     `json:"files_processed"`
	FilesSkipped    int64     `json:"files_skipped"`
	CacheHits       int64     `json:"cache_hits"`
	CacheMisses     int64     `json:"cache_misses"`
	CacheHitRate    float64   `json:"cache_hit_rate"`
	RecordsAccepted int64     `json:"records_accepted"`
}

// ServeHTTP returns the system status as JSON.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:   h.Version,
		ActiveRun: h.activeRun(),
		Schedule: scheduleInfo{
			Cron:      h.Sched.CronExpr(),
			Paused:    h.Paused,
			NextRunAt: h.Sched.NextRunAt(),
		},
		LastCompletedRun: h.lastCompletedRun(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *StatusHandler) activeRun() *activeRunInfo {
	active := h.Manager.ActiveRun()
	if active == nil {
		return nil
	}
	p := active.Progress
	return &activeRunInfo{
		ID:          active.ID,
		StartedAt:   active.StartedAt.UTC(),
		TriggeredBy: active.TriggeredBy,
		Progress: runProgressInfo{
			FilesProcessed:  p.FilesProcessed.Load(),
			FilesSkipped:    p.FilesSkipped.Load(),
			CacheHits:       p.CacheHits.Load(),
			CacheMisses:     p.CacheMisses.Load(),
			LinesRead:       p.LinesRead.Load(),
			RecordsAccepted: p.RecordsAccepted.Load(),
			LinesSkipped:    p.LinesSkipped.Load(),
		},
	}
}

func (h *StatusHandler) lastCompletedRun() *completedRunInfo {
	if h.DB == nil {
		return nil
	}
	row := h.DB.QueryRow(`
		SELECT id, finished_at, files_processed, files_skipped,
		       cache_hits, cache_misses, records_accepted
		FROM run_history
		WHERE status = 'completed'
		ORDER BY finished_at DESC
		LIMIT 1`)

	var (
		info       completedRunInfo
		finishedAt int64
	)
	err := row.Scan(&info.ID, &finishedAt, &info.FilesProcessed, &info.FilesSkipped,
		&info.CacheHits, &info.CacheMisses, &info.RecordsAccepted)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("status: query last run", "error", err)
		}
		return nil
	}
	info.FinishedAt = time.Unix(finishedAt, 0).UTC()
	if total := info.CacheHits + info.CacheMisses; total > 0 {
		info.CacheHitRate = float64(info.CacheHits) / float64(total)
	}
	return &info
}
