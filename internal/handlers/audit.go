package handlers

import (
	"net/http"

	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// AuditHandler serves the admin audit log viewer.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// List returns audit entries, newest first, filterable by entity_type and
// action query params.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 50)
	filter := repo.AuditFilter{
		EntityType: r.URL.Query().Get("entity_type"),
		Action:     r.URL.Query().Get("action"),
	}

	logs, err := h.Repo.List(r.Context(), limit, offset, filter)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), filter)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.AuditEntry{}
	}

	JSON(w, models.AuditPage{
		Logs:   logs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, http.StatusOK)
}
