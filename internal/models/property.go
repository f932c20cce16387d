package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType classifies what kind of building a property is.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeMixed      PropertyType = "mixed"
)

// PropertyStatusType defines the possible states of a property.
type PropertyStatusType string

const (
	PropertyStatusActive      PropertyStatusType = "active"
	PropertyStatusInactive    PropertyStatusType = "inactive"
	PropertyStatusMaintenance PropertyStatusType = "maintenance"
)

type Property struct {
	Versioned

	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	PropertyType PropertyType       `json:"property_type"`
	Address      string             `json:"address"`
	City         string             `json:"city"`
	County       string             `json:"county"`
	Description  string             `json:"description"`
	TotalUnits   int                `json:"total_units"`
	Status       PropertyStatusType `json:"status"`
	ManagerID    *uuid.UUID         `json:"manager_id,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ----- concurrency helpers -----
func (p *Property) GetID() string { return p.ID.String() }

// OccupancyRate derives the percentage of occupied units from the
// declared total. Defined as 0 when TotalUnits is 0.
func OccupancyRate(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(occupied) / float64(total) * 100
	return float64(int(rate*10+0.5)) / 10
}
