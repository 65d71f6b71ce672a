package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/hilodev/csuodo/internal/config"
	"github.com/hilodev/csuodo/internal/db"
)

// ConfigHandler handles GET/PATCH /api/config.
type ConfigHandler struct {
	DB  *sql.DB
	Cfg *config.Config

	// OnSchedule re-registers the recompute job when the cron expression
	// changes; wired from main.
	OnSchedule func(expr string) error

	mu sync.Mutex // guards Cfg mutations
}

// ConfigPatch describes the fields that can be updated at runtime.
// Only supplied (non-nil) fields are applied.
type ConfigPatch struct {
	Schedule *string `json:"schedule"`
	Paused   *bool   `json:"paused"`
}

// Get handles GET /api/config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.Cfg)
}

// apply applies each non-nil patch field to the config, persists it to the
// settings table, and re-registers the cron job when needed.
func (h *ConfigHandler) apply(patch ConfigPatch) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if patch.Schedule != nil {
		if h.OnSchedule != nil {
			if err := h.OnSchedule(*patch.Schedule); err != nil {
				return err
			}
		}
		h.Cfg.Schedule = *patch.Schedule
		db.SaveSetting(h.DB, "schedule", *patch.Schedule)
	}
	if patch.Paused != nil {
		h.Cfg.Paused = *patch.Paused
		db.SaveSetting(h.DB, "paused", strconv.FormatBool(*patch.Paused))
	}
	return nil
}

// Update handles PATCH /api/config.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch ConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	if err := h.apply(patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.Cfg)
}
