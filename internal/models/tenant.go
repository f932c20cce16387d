package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantStatusType defines the possible states of a tenancy.
type TenantStatusType string

const (
	TenantStatusActive   TenantStatusType = "active"
	TenantStatusInactive TenantStatusType = "inactive"
	TenantStatusPending  TenantStatusType = "pending"
)

// Tenant is a person renting a unit. UserID optionally links the tenant
// to a login identity; UnitID references (does not own) a unit and is
// nulled when that unit is deleted.
type Tenant struct {
	Versioned

	ID                    uuid.UUID        `json:"id"`
	UserID                *uuid.UUID       `json:"user_id,omitempty"`
	FirstName             string           `json:"first_name"`
	LastName              string           `json:"last_name"`
	Email                 string           `json:"email"`
	Phone                 string           `json:"phone"`
	IDNumber              string           `json:"id_number"`
	UnitID                *uuid.UUID       `json:"unit_id,omitempty"`
	LeaseStartDate        *time.Time       `json:"lease_start_date,omitempty"`
	LeaseEndDate          *time.Time       `json:"lease_end_date,omitempty"`
	RentAmount            *decimal.Decimal `json:"rent_amount,omitempty"`
	DepositPaid           *decimal.Decimal `json:"deposit_paid,omitempty"`
	EmergencyContactName  string           `json:"emergency_contact_name"`
	EmergencyContactPhone string           `json:"emergency_contact_phone"`
	Status                TenantStatusType `json:"status"`
	Notes                 string           `json:"notes"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// ----- concurrency helpers -----
func (t *Tenant) GetID() string { return t.ID.String() }

func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}
