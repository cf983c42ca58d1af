package handlers

import (
	"net/http"

	"github.com/toozhub/toozhub/internal/repo"
)

// SystemHandler serves the dashboard overview counters and the database
// maintenance tools.
type SystemHandler struct {
	Repo *repo.SystemRepo
}

// Overview returns entity counts for the dashboard landing page.
func (h *SystemHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Repo.GetOverview(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, overview, http.StatusOK)
}

// DBInfo reports database name, size and per-table statistics.
func (h *SystemHandler) DBInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Repo.GetDBInfo(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, info, http.StatusOK)
}

// Reindex rebuilds table indexes and reports per-table results. Partial
// failures still return the steps that completed, with success false.
func (h *SystemHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	results, err := h.Repo.Reindex(r.Context())
	if results == nil {
		results = []string{}
	}
	if err != nil {
		JSON(w, map[string]interface{}{
			"message": "reindex failed",
			"results": results,
			"success": false,
		}, http.StatusInternalServerError)
		return
	}
	JSON(w, map[string]interface{}{
		"message": "reindex completed",
		"results": results,
		"success": true,
	}, http.StatusOK)
}

// Repair vacuums tables and probes referential integrity.
func (h *SystemHandler) Repair(w http.ResponseWriter, r *http.Request) {
	results, err := h.Repo.Repair(r.Context())
	if results == nil {
		results = []string{}
	}
	if err != nil {
		JSON(w, map[string]interface{}{
			"message": "repair failed",
			"results": results,
			"success": false,
		}, http.StatusInternalServerError)
		return
	}
	JSON(w, map[string]interface{}{
		"message": "repair completed",
		"results": results,
		"success": true,
	}, http.StatusOK)
}
