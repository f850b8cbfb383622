package domain

import "time"

// TechnicianRole enumerates operator roles.
type TechnicianRole string

const (
	RoleTechnician TechnicianRole = "TECHNICIAN"
	RoleSupervisor TechnicianRole = "SUPERVISOR"
	RoleAdmin      TechnicianRole = "ADMIN"
)

// Technician models a field engineer or back-office operator.
type Technician struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         TechnicianRole
	ZoneID       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
