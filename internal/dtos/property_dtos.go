package dtos

import (
	"github.com/google/uuid"
)

type CreatePropertyRequest struct {
	Name         string     `json:"name" validate:"required,max=200"`
	PropertyType string     `json:"property_type" validate:"required,oneof=apartment house commercial mixed"`
	Address      string     `json:"address" validate:"required"`
	City         string     `json:"city" validate:"required,max=100"`
	County       string     `json:"county" validate:"required,max=100"`
	Description  string     `json:"description"`
	TotalUnits   int        `json:"total_units" validate:"gte=0"`
	Status       string     `json:"status" validate:"omitempty,oneof=active inactive maintenance"`
	ManagerID    *uuid.UUID `json:"manager_id"`
}

type UpdatePropertyRequest struct {
	Name         string     `json:"name" validate:"required,max=200"`
	PropertyType string     `json:"property_type" validate:"required,oneof=apartment house commercial mixed"`
	Address      string     `json:"address" validate:"required"`
	City         string     `json:"city" validate:"required,max=100"`
	County       string     `json:"county" validate:"required,max=100"`
	Description  string     `json:"description"`
	TotalUnits   int        `json:"total_units" validate:"gte=0"`
	Status       string     `json:"status" validate:"required,oneof=active inactive maintenance"`
	ManagerID    *uuid.UUID `json:"manager_id"`
}

// PropertyStatsResponse summarizes one property for its detail page.
type PropertyStatsResponse struct {
	TotalUnits    int     `json:"total_units"`
	OccupiedUnits int     `json:"occupied_units"`
	OccupancyRate float64 `json:"occupancy_rate"`
}
