package models

import (
	"strings"
	"time"
)

// Vehicle is one row of the vehicles table. Ownership is by customer email,
// as in the mobile app's original schema.
type Vehicle struct {
	ID        int        `json:"id"`
	UserEmail string     `json:"user_email"`
	Nickname  *string    `json:"nickname"`
	Brand     *string    `json:"brand"`
	Model     *string    `json:"model"`
	Year      *int       `json:"year"`
	Plate     *string    `json:"plate"`
	VIN       *string    `json:"vin"`
	CreatedAt *time.Time `json:"created_at"`

	// Denormalized admin-list fields.
	ServiceCount int     `json:"service_count"`
	OwnerName    *string `json:"owner_name,omitempty"`
}

// DisplayName returns nickname, else "brand model", else "(unnamed)".
func (v Vehicle) DisplayName() string {
	if v.Nickname != nil && *v.Nickname != "" {
		return *v.Nickname
	}
	var parts []string
	if v.Brand != nil && *v.Brand != "" {
		parts = append(parts, *v.Brand)
	}
	if v.Model != nil && *v.Model != "" {
		parts = append(parts, *v.Model)
	}
	if name := strings.Join(parts, " "); name != "" {
		return name
	}
	return "(unnamed)"
}
