package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a marketplace role (matches user_role enum)
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// User mirrors an identity-service account locally so that bookings and
// chats can reference it by foreign key
type User struct {
	ID          uuid.UUID `db:"id"`
	Role        Role      `db:"role"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Actor is the authenticated caller of an operation
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin returns true if the actor is an admin
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsProvider returns true if the actor is a provider
func (a Actor) IsProvider() bool {
	return a.Role == RoleProvider
}

// IsCustomer returns true if the actor is a customer
func (a Actor) IsCustomer() bool {
	return a.Role == RoleCustomer
}

// ValidRoles returns the roles a token may carry
func ValidRoles() []Role {
	return []Role{RoleCustomer, RoleProvider, RoleAdmin}
}

// IsValidRole checks if role is a known marketplace role
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}
