package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateTenantRequest struct {
	UserID                *uuid.UUID       `json:"user_id"`
	FirstName             string           `json:"first_name" validate:"required,max=100"`
	LastName              string           `json:"last_name" validate:"required,max=100"`
	Email                 string           `json:"email" validate:"required,email"`
	Phone                 string           `json:"phone" validate:"required"`
	IDNumber              string           `json:"id_number" validate:"required,max=20"`
	UnitID                *uuid.UUID       `json:"unit_id"`
	LeaseStartDate        *time.Time       `json:"lease_start_date"`
	LeaseEndDate          *time.Time       `json:"lease_end_date"`
	RentAmount            *decimal.Decimal `json:"rent_amount"`
	DepositPaid           *decimal.Decimal `json:"deposit_paid"`
	EmergencyContactName  string           `json:"emergency_contact_name" validate:"max=100"`
	EmergencyContactPhone string           `json:"emergency_contact_phone"`
	Status                string           `json:"status" validate:"omitempty,oneof=active inactive pending"`
	Notes                 string           `json:"notes"`
}

type UpdateTenantRequest struct {
	UserID                *uuid.UUID       `json:"user_id"`
	FirstName             string           `json:"first_name" validate:"required,max=100"`
	LastName              string           `json:"last_name" validate:"required,max=100"`
	Email                 string           `json:"email" validate:"required,email"`
	Phone                 string           `json:"phone" validate:"required"`
	IDNumber              string           `json:"id_number" validate:"required,max=20"`
	UnitID                *uuid.UUID       `json:"unit_id"`
	LeaseStartDate        *time.Time       `json:"lease_start_date"`
	LeaseEndDate          *time.Time       `json:"lease_end_date"`
	RentAmount            *decimal.Decimal `json:"rent_amount"`
	DepositPaid           *decimal.Decimal `json:"deposit_paid"`
	EmergencyContactName  string           `json:"emergency_contact_name" validate:"max=100"`
	EmergencyContactPhone string           `json:"emergency_contact_phone"`
	Status                string           `json:"status" validate:"required,oneof=active inactive pending"`
	Notes                 string           `json:"notes"`
}
