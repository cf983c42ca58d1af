package models

import "time"

// Audit actions, one CREATE/UPDATE/DELETE triple per admin-managed entity.
const (
	ActionCreateUser    = "CREATE_USER"
	ActionUpdateUser    = "UPDATE_USER"
	ActionDeleteUser    = "DELETE_USER"
	ActionCreateVehicle = "CREATE_VEHICLE"
	ActionUpdateVehicle = "UPDATE_VEHICLE"
	ActionDeleteVehicle = "DELETE_VEHICLE"
	ActionCreateService = "CREATE_SERVICE"
	ActionUpdateService = "UPDATE_SERVICE"
	ActionDeleteService = "DELETE_SERVICE"
	ActionCreateRecord  = "CREATE_SERVICE_RECORD"
	ActionUpdateRecord  = "UPDATE_SERVICE_RECORD"
	ActionDeleteRecord  = "DELETE_SERVICE_RECORD"
)

// Audit entity types.
const (
	EntityUser    = "user"
	EntityVehicle = "vehicle"
	EntityService = "service"
	EntityRecord  = "service_record"
)

// AuditEntry is one audit_log row.
type AuditEntry struct {
	ID            int       `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	ActorEmail    string    `json:"actor_email"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      int       `json:"entity_id"`
	Details       string    `json:"details,omitempty"`
	SourceProject string    `json:"source_project"`
}

// AuditPage is the response shape of GET /admin-api/audit.
type AuditPage struct {
	Logs   []AuditEntry `json:"logs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
