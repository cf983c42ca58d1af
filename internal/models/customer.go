package models

import "time"

// Roles stored on a customer row. Services (repair shops) share the customers
// table with end users and are discriminated by role.
const (
	RoleUser           = "user"
	RoleService        = "service"
	RoleAdmin          = "admin"
	RoleDeveloperAdmin = "developer_admin"
)

// Customer is one row of the customers table: an end user, a repair shop
// account, or an admin, depending on Role.
type Customer struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	Name         *string    `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	City         *string    `json:"city"`
	Phone        *string    `json:"phone"`
	ICO          *string    `json:"ico"`
	CreatedAt    *time.Time `json:"created_at"`
}

// UserSummary is the admin list view of a customer, with the denormalized
// vehicle count the dashboard shows on each card.
type UserSummary struct {
	ID            int        `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	Role          string     `json:"role"`
	City          *string    `json:"city"`
	Phone         *string    `json:"phone"`
	ICO           *string    `json:"ico,omitempty"`
	CreatedAt     *time.Time `json:"created_at"`
	VehiclesCount int        `json:"vehicles_count"`
}

// DisplayName returns the name shown on a card: name, else email.
func (u UserSummary) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
