package models

import "time"

// ServiceRecord is one service-history entry for a vehicle, performed by a
// service (repair shop) account.
type ServiceRecord struct {
	ID          int        `json:"id"`
	VehicleID   int        `json:"vehicle_id"`
	ServiceID   *int       `json:"service_id"`
	PerformedAt time.Time  `json:"performed_at"`
	Mileage     *int       `json:"mileage"`
	Description string     `json:"description"`
	Price       *float64   `json:"price"`
	Category    *string    `json:"category"`
	Note        *string    `json:"note"`
	CreatedAt   *time.Time `json:"created_at"`

	// Denormalized admin-list fields.
	VehicleNickname *string `json:"vehicle_nickname,omitempty"`
	VehicleBrand    *string `json:"vehicle_brand,omitempty"`
	VehicleModel    *string `json:"vehicle_model,omitempty"`
	VehiclePlate    *string `json:"vehicle_plate,omitempty"`
	ServiceEmail    *string `json:"service_email,omitempty"`
	ServiceName     *string `json:"service_name,omitempty"`
}

// RecordPage is the paginated response shape of GET /admin-api/records.
type RecordPage struct {
	Records []ServiceRecord `json:"records"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}
