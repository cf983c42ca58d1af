package models

import "time"

// Reminder is a customer-owned maintenance reminder for a vehicle.
type Reminder struct {
	ID         int        `json:"id"`
	CustomerID int        `json:"customer_id"`
	VehicleID  *int       `json:"vehicle_id"`
	Text       string     `json:"text"`
	DueDate    *time.Time `json:"due_date"`
	Done       bool       `json:"done"`
	CreatedAt  *time.Time `json:"created_at"`
}
