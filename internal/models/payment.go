package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType distinguishes what the money was for.
type PaymentType string

const (
	PaymentTypeRent    PaymentType = "rent"
	PaymentTypeDeposit PaymentType = "deposit"
)

// PaymentMethodType records how the money arrived.
type PaymentMethodType string

const (
	PaymentMethodCash         PaymentMethodType = "cash"
	PaymentMethodMpesa        PaymentMethodType = "mpesa"
	PaymentMethodBankTransfer PaymentMethodType = "bank_transfer"
)

// PaymentStatusType defines the possible states of a payment.
type PaymentStatusType string

const (
	PaymentStatusPending   PaymentStatusType = "pending"
	PaymentStatusCompleted PaymentStatusType = "completed"
	PaymentStatusFailed    PaymentStatusType = "failed"
	PaymentStatusRefunded  PaymentStatusType = "refunded"
)

// Payment is a single ledger entry belonging to a tenant.
// CheckoutRequestID carries the provider tracking token for payments
// recorded from an M-Pesa callback; it is unique in the store, which is
// what makes redelivered callbacks idempotent.
type Payment struct {
	Versioned

	ID                uuid.UUID         `json:"id"`
	TenantID          uuid.UUID         `json:"tenant_id"`
	Amount            decimal.Decimal   `json:"amount"`
	PaymentType       PaymentType       `json:"payment_type"`
	PaymentMethod     PaymentMethodType `json:"payment_method"`
	PaymentDate       time.Time         `json:"payment_date"`
	ReferenceNumber   string            `json:"reference_number"`
	Description       string            `json:"description"`
	Status            PaymentStatusType `json:"status"`
	PeriodStart       *time.Time        `json:"period_start,omitempty"`
	PeriodEnd         *time.Time        `json:"period_end,omitempty"`
	CheckoutRequestID *string           `json:"checkout_request_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ----- concurrency helpers -----
func (p *Payment) GetID() string { return p.ID.String() }
