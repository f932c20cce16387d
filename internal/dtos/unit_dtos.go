package dtos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateUnitRequest struct {
	PropertyID    uuid.UUID        `json:"property_id" validate:"required"`
	UnitNumber    string           `json:"unit_number" validate:"required,max=20"`
	UnitType      string           `json:"unit_type" validate:"required,oneof=studio 1br 2br 3br 4br penthouse commercial"`
	Floor         string           `json:"floor" validate:"max=10"`
	Bedrooms      int              `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int              `json:"bathrooms" validate:"gte=0"`
	RentAmount    decimal.Decimal  `json:"rent_amount" validate:"required"`
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
	Status        string           `json:"status" validate:"omitempty,oneof=available occupied maintenance reserved"`
	Description   string           `json:"description"`
}

type UpdateUnitRequest struct {
	UnitNumber    string           `json:"unit_number" validate:"required,max=20"`
	UnitType      string           `json:"unit_type" validate:"required,oneof=studio 1br 2br 3br 4br penthouse commercial"`
	Floor         string           `json:"floor" validate:"max=10"`
	Bedrooms      int              `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int              `json:"bathrooms" validate:"gte=0"`
	RentAmount    decimal.Decimal  `json:"rent_amount" validate:"required"`
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
	Status        string           `json:"status" validate:"required,oneof=available occupied maintenance reserved"`
	Description   string           `json:"description"`
}
