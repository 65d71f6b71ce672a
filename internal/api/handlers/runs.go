package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hilodev/csuodo/internal/odometer"
)

// RunsHandler handles run-related API endpoints.
type RunsHandler struct {
	DB      *sql.DB
	Manager *odometer.Manager
}

// Create handles POST /api/runs — triggers a manual corpus pass.
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	active, err := h.Manager.Start(context.Background(), "manual")
	if err != nil {
		if errors.Is(err, odometer.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "RUN_ALREADY_RUNNING", "A run is already in progress")
			return
		}
		slog.Error("runs: start", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start run")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":           active.ID,
		"status":       "running",
		"started_at":   active.StartedAt.UTC().Format(time.RFC3339),
		"triggered_by": active.TriggeredBy,
	})
}

// Cancel handles DELETE /api/runs/current.
func (h *RunsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Manager.Cancel()
	if err != nil {
		if errors.Is(err, odometer.ErrNoActiveRun) {
			writeError(w, http.StatusNotFound, "NO_ACTIVE_RUN", "No run is currently in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          snap.ID,
		"status":      "cancelled",
		"started_at":  snap.StartedAt.UTC().Format(time.RFC3339),
		"finished_at": time.Now().UTC().Format(time.RFC3339),
	})
}

type runItem struct {
	ID              int64   `json:"id"`
	StartedAt       string  `json:"started_at"`
	FinishedAt      *string `json:"finished_at"`
	Status          string  `json:"status"`
	TriggeredBy     string  `json:"triggered_by"`
	FilesProcessed  int64   `json:"files_processed"`
	FilesSkipped    int64   `json:"files_skipped"`
	CacheHits       int64   `json:"cache_hits"`
	CacheMisses     int64   `json:"cache_misses"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	LinesRead       int64   `json:"lines_read"`
	RecordsAccepted int64   `json:"records_accepted"`
	LinesSkipped    int64   `json:"lines_skipped"`
	DurationSeconds *int64  `json:"duration_seconds"`
	Error           *string `json:"error"`
}

func scanRunRow(scan func(dest ...any) error) (runItem, error) {
	var (
		it         runItem
		startedAt  int64
		finishedAt sql.NullInt64
		durSecs    sql.NullInt64
		errMsg     sql.NullString
	)
	err := scan(
		&it.ID, &startedAt, &finishedAt, &it.Status, &it.TriggeredBy,
		&it.FilesProcessed, &it.FilesSkipped, &it.CacheHits, &it.CacheMisses,
		&it.LinesRead, &it.RecordsAccepted, &it.LinesSkipped,
		&durSecs, &errMsg,
	)
	if err != nil {
		return it, err
	}
	it.StartedAt = time.Unix(startedAt, 0).UTC().Format(time.RFC3339)
	if finishedAt.Valid {
		s := time.Unix(finishedAt.Int64, 0).UTC().Format(time.RFC3339)
		it.FinishedAt = &s
	}
	if durSecs.Valid {
		it.DurationSeconds = &durSecs.Int64
	}
	if errMsg.Valid {
		it.Error = &errMsg.String
	}
	if total := it.CacheHits + it.CacheMisses; total > 0 {
		it.CacheHitRate = float64(it.CacheHits) / float64(total)
	}
	return it, nil
}

const runColumns = `id, started_at, finished_at, status, triggered_by,
	files_processed, files_skipped, cache_hits, cache_misses,
	lines_read, records_accepted, lines_skipped,
	duration_seconds, error`

// List handles GET /api/runs — returns run history newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	rows, err := h.DB.QueryContext(r.Context(), `
		SELECT `+runColumns+`
		FROM run_history
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		slog.Error("runs list: query", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	defer rows.Close()

	var items []runItem
	for rows.Next() {
		it, err := scanRunRow(rows.Scan)
		if err != nil {
			slog.Error("runs list: scan row", "error", err)
			continue
		}
		items = append(items, it)
	}
	if items == nil {
		items = []runItem{}
	}

	var total int
	h.DB.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM run_history`).Scan(&total)

	writeJSON(w, http.StatusOK, ListResponse[runItem]{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /api/runs/:id, including the file spans the run accepted.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid run ID")
		return
	}

	row := h.DB.QueryRowContext(r.Context(),
		`SELECT `+runColumns+` FROM run_history WHERE id = ?`, id)
	it, err := scanRunRow(row.Scan)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	type spanItem struct {
		Path  string `json:"path"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
	type runDetail struct {
		runItem
		Spans []spanItem `json:"spans"`
	}
	detail := runDetail{runItem: it, Spans: []spanItem{}}

	spanRows, err := h.DB.QueryContext(r.Context(), `
		SELECT path, start_at, end_at
		FROM file_spans WHERE run_id = ?
		ORDER BY start_at`, id)
	if err == nil {
		defer spanRows.Close()
		for spanRows.Next() {
			var s spanItem
			var startAt, endAt int64
			if spanRows.Scan(&s.Path, &startAt, &endAt) == nil {
				s.Start = time.Unix(startAt, 0).UTC().Format(time.RFC3339)
				s.End = time.Unix(endAt, 0).UTC().Format(time.RFC3339)
				detail.Spans = append(detail.Spans, s)
			}
		}
	}

	writeJSON(w, http.StatusOK, detail)
}
