package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitType enumerates the rentable unit layouts.
type UnitType string

const (
	UnitTypeStudio     UnitType = "studio"
	UnitTypeOneBed     UnitType = "1br"
	UnitTypeTwoBed     UnitType = "2br"
	UnitTypeThreeBed   UnitType = "3br"
	UnitTypeFourBed    UnitType = "4br"
	UnitTypePenthouse  UnitType = "penthouse"
	UnitTypeCommercial UnitType = "commercial"
)

// UnitStatusType defines the possible states of a unit.
type UnitStatusType string

const (
	UnitStatusAvailable   UnitStatusType = "available"
	UnitStatusOccupied    UnitStatusType = "occupied"
	UnitStatusMaintenance UnitStatusType = "maintenance"
	UnitStatusReserved    UnitStatusType = "reserved"
)

// Unit represents a single rentable space within a property.
// IsOccupied is derived from Status on every write; the store layer
// overwrites whatever the caller put in it.
type Unit struct {
	Versioned

	ID            uuid.UUID        `json:"id"`
	PropertyID    uuid.UUID        `json:"property_id"`
	UnitNumber    string           `json:"unit_number"`
	UnitType      UnitType         `json:"unit_type"`
	Floor         string           `json:"floor"`
	Bedrooms      int              `json:"bedrooms"`
	Bathrooms     int              `json:"bathrooms"`
	RentAmount    decimal.Decimal  `json:"rent_amount"`
	DepositAmount *decimal.Decimal `json:"deposit_amount,omitempty"`
	Status        UnitStatusType   `json:"status"`
	IsOccupied    bool             `json:"is_occupied"`
	Description   string           `json:"description"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ----- concurrency helpers -----
func (u *Unit) GetID() string { return u.ID.String() }
