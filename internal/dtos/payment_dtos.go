package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	TenantID        uuid.UUID       `json:"tenant_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	PaymentType     string          `json:"payment_type" validate:"required,oneof=rent deposit"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=cash mpesa bank_transfer"`
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Description     string          `json:"description"`
	Status          string          `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	PeriodStart     *time.Time      `json:"period_start"`
	PeriodEnd       *time.Time      `json:"period_end"`
}

type UpdatePaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	PaymentType     string          `json:"payment_type" validate:"required,oneof=rent deposit"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=cash mpesa bank_transfer"`
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Description     string          `json:"description"`
	Status          string          `json:"status" validate:"required,oneof=pending completed failed refunded"`
	PeriodStart     *time.Time      `json:"period_start"`
	PeriodEnd       *time.Time      `json:"period_end"`
}

// STKPushRequest starts a mobile-money collection against a tenant.
type STKPushRequest struct {
	TenantID    uuid.UUID       `json:"tenant_id" validate:"required"`
	PhoneNumber string          `json:"phone_number" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentType string          `json:"payment_type" validate:"omitempty,oneof=rent deposit"`
	Description string          `json:"description"`
}

type STKPushResponse struct {
	PaymentID         uuid.UUID `json:"payment_id"`
	CheckoutRequestID string    `json:"checkout_request_id"`
	CustomerMessage   string    `json:"customer_message"`
}
