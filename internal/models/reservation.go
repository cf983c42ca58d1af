package models

import "time"

// Reservation statuses.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation is a customer's booking of a vehicle into a service.
type Reservation struct {
	ID          int        `json:"id"`
	CustomerID  int        `json:"customer_id"`
	VehicleID   int        `json:"vehicle_id"`
	ServiceID   *int       `json:"service_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Note        *string    `json:"note"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"created_at"`
}
