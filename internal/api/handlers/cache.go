package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hilodev/csuodo/internal/odometer"
)

// CacheHandler exposes manual cache invalidation. The result cache is
// never invalidated automatically; deleting a directory's artifact is the
// only way to force a corrected source log to be re-parsed.
type CacheHandler struct {
	Store odometer.Store
}

// Delete handles DELETE /api/cache?directory=<path>.
func (h *CacheHandler) Delete(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("directory")
	if dir == "" {
		writeError(w, http.StatusBadRequest, "MISSING_DIRECTORY", "directory query parameter is required")
		return
	}
	if err := h.Store.Delete(r.Context(), dir); err != nil {
		slog.Error("cache: delete artifact", "dir", dir, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	slog.Info("cache artifact invalidated", "dir", dir)
	writeJSON(w, http.StatusOK, map[string]string{
		"directory": dir,
		"status":    "invalidated",
	})
}
