package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/hilodev/csuodo/internal/csu"
)

// OdometerHandler serves the per-bar and per-slit totals of the latest
// completed run.
type OdometerHandler struct {
	DB *sql.DB
}

// latestRunID returns the newest completed run, or 0 when none exists.
func (h *OdometerHandler) latestRunID() (id int64, finishedAt int64, err error) {
	err = h.DB.QueryRow(`
		SELECT id, finished_at FROM run_history
		WHERE status = 'completed'
		ORDER BY finished_at DESC
		LIMIT 1`).Scan(&id, &finishedAt)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return id, finishedAt, err
}

type barTotal struct {
	Bar     int     `json:"bar"`
	Slit    int     `json:"slit"`
	Arm     string  `json:"arm"`
	Mileage float64 `json:"mileage_m"`
	Moves   int64   `json:"nmoves"`
}

// Bars handles GET /api/odometer.
func (h *OdometerHandler) Bars(w http.ResponseWriter, r *http.Request) {
	runID, finishedAt, err := h.latestRunID()
	if err != nil {
		slog.Error("odometer: query latest run", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if runID == 0 {
		writeError(w, http.StatusNotFound, "NO_COMPLETED_RUN", "No completed run yet")
		return
	}

	rows, err := h.DB.QueryContext(r.Context(), `
		SELECT bar, mileage_m, nmoves
		FROM bar_totals WHERE run_id = ?
		ORDER BY bar`, runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	defer rows.Close()

	bars := make([]barTotal, 0, csu.NumBars)
	for rows.Next() {
		var b barTotal
		if err := rows.Scan(&b.Bar, &b.Mileage, &b.Moves); err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		b.Slit = csu.SlitFor(b.Bar)
		if csu.IsLeft(b.Bar) {
			b.Arm = "left"
		} else {
			b.Arm = "right"
		}
		bars = append(bars, b)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":      runID,
		"finished_at": time.Unix(finishedAt, 0).UTC().Format(time.RFC3339),
		"bars":        bars,
	})
}

type slitTotal struct {
	Slit    int     `json:"slit"`
	Mileage float64 `json:"mileage_m"`
	Moves   int64   `json:"nmoves"`
}

// Slits handles GET /api/odometer/slits.
func (h *OdometerHandler) Slits(w http.ResponseWriter, r *http.Request) {
	runID, finishedAt, err := h.latestRunID()
	if err != nil {
		slog.Error("odometer: query latest run", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if runID == 0 {
		writeError(w, http.StatusNotFound, "NO_COMPLETED_RUN", "No completed run yet")
		return
	}

	rows, err := h.DB.QueryContext(r.Context(), `
		SELECT (bar + 1) / 2 AS slit, SUM(mileage_m), SUM(nmoves)
		FROM bar_totals WHERE run_id = ?
		GROUP BY slit ORDER BY slit`, runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	defer rows.Close()

	var (
		slits      []slitTotal
		maxMileage float64
		maxMoves   int64
	)
	for rows.Next() {
		var s slitTotal
		if err := rows.Scan(&s.Slit, &s.Mileage, &s.Moves); err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		if s.Mileage > maxMileage {
			maxMileage = s.Mileage
		}
		if s.Moves > maxMoves {
			maxMoves = s.Moves
		}
		slits = append(slits, s)
	}
	if slits == nil {
		slits = []slitTotal{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":           runID,
		"finished_at":      time.Unix(finishedAt, 0).UTC().Format(time.RFC3339),
		"slits":            slits,
		"max_slit_mileage": maxMileage,
		"max_slit_moves":   maxMoves,
	})
}
