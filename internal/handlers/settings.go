package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
	"github.com/toozhub/toozhub/internal/settings"
)

// SettingsHandler serves the admin settings editor. The known keys and
// their types come from the settings schema; stored rows are coerced to
// their declared type before they reach the client.
type SettingsHandler struct {
	Repo *repo.SettingRepo
}

// Tree returns every setting grouped category -> key -> value.
func (h *SettingsHandler) Tree(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Repo.All(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	tree := models.SettingsTree{}
	for _, row := range rows {
		raw, _ := row.Value.(string)
		value, err := settings.Coerce(row.ValueType, raw)
		if err != nil {
			// Bad stored value: surface the raw text rather than failing the page.
			slog.Warn("setting holds malformed value", "category", row.Category, "key", row.Key, "error", err)
			value = raw
		}
		if tree[row.Category] == nil {
			tree[row.Category] = map[string]models.SettingValue{}
		}
		tree[row.Category][row.Key] = models.SettingValue{
			Value:       value,
			ValueType:   row.ValueType,
			Description: row.Description,
		}
	}

	JSON(w, map[string]interface{}{"settings": tree}, http.StatusOK)
}

// Update applies a batch of setting writes. Unknown keys and type
// mismatches fail the whole batch with field-level details.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Settings []struct {
			Category string      `json:"category"`
			Key      string      `json:"key"`
			Value    interface{} `json:"value"`
		} `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(input.Settings) == 0 {
		JSONError(w, "no settings provided", http.StatusBadRequest)
		return
	}

	writes := make([]repo.SettingWrite, 0, len(input.Settings))
	fields := make(map[string]string)
	for _, s := range input.Settings {
		name := s.Category + "." + s.Key
		field, ok := settings.Lookup(s.Category, s.Key)
		if !ok {
			fields[name] = "unknown setting"
			continue
		}
		raw, err := settings.Encode(field.Type, s.Value)
		if err != nil {
			fields[name] = err.Error()
			continue
		}
		desc := field.Description
		writes = append(writes, repo.SettingWrite{
			Category:    field.Category,
			Key:         field.Key,
			Value:       raw,
			ValueType:   field.Type,
			Description: &desc,
		})
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	// One transaction: a mid-batch failure must not leave a partial save.
	if err := h.Repo.UpsertAll(r.Context(), writes); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONMessage(w, fmt.Sprintf("%d settings updated", len(writes)), http.StatusOK)
}

// Delete removes one stored setting; a later init-defaults restores its
// default. Only schema keys are addressable.
func (h *SettingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	key := chi.URLParam(r, "key")
	if _, ok := settings.Lookup(category, key); !ok {
		JSONError(w, "unknown setting", http.StatusNotFound)
		return
	}

	if err := h.Repo.Delete(r.Context(), category, key); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "setting not set", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSONMessage(w, fmt.Sprintf("%s/%s removed", category, key), http.StatusOK)
}

// InitDefaults inserts every schema key that is missing, leaving existing
// rows untouched.
func (h *SettingsHandler) InitDefaults(w http.ResponseWriter, r *http.Request) {
	inserted := 0
	for _, f := range settings.Schema {
		desc := f.Description
		ok, err := h.Repo.InsertMissing(r.Context(), f.Category, f.Key, f.Default, f.Type, &desc)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if ok {
			inserted++
		}
	}
	JSONMessage(w, fmt.Sprintf("%d default settings initialized", inserted), http.StatusOK)
}
