package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleStaff and RoleTenant are the two roles the authorization guard
// distinguishes. They appear as the "role" claim in issued tokens.
const (
	RoleStaff  = "staff"
	RoleTenant = "tenant"
)

// User is a login identity. Staff users manage the portfolio; non-staff
// users are expected to be linked from a Tenant record.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Role() string {
	if u.IsStaff {
		return RoleStaff
	}
	return RoleTenant
}
