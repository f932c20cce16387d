package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/services"
	"github.com/nyumbani/rental-service/internal/utils"
)

var propertyValidate = validator.New()

type PropertyController struct {
	propertyService *services.PropertyService
}

func NewPropertyController(s *services.PropertyService) *PropertyController {
	return &PropertyController{propertyService: s}
}

// POST /api/v1/properties/
func (c *PropertyController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := propertyValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	p, err := c.propertyService.Create(r.Context(), &req)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not create property", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GET /api/v1/properties/
func (c *PropertyController) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repositories.PropertyFilter{
		Search:       q.Get("search"),
		Status:       models.PropertyStatusType(q.Get("status")),
		PropertyType: models.PropertyType(q.Get("property_type")),
	}
	list, err := c.propertyService.List(r.Context(), f)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list properties", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/properties/{id}/
func (c *PropertyController) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := c.propertyService.GetByID(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not fetch property", nil, err)
		return
	}
	if p == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Property not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// PUT /api/v1/properties/{id}/
func (c *PropertyController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := propertyValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	p, err := c.propertyService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Property not found", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not update property", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// DELETE /api/v1/properties/{id}/
func (c *PropertyController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.propertyService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Property not found", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not delete property", nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/properties/{id}/stats/
func (c *PropertyController) StatsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	stats, err := c.propertyService.Stats(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not compute property stats", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GET /api/v1/properties/{id}/units/
func (c *PropertyController) UnitsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	units, err := c.propertyService.Units(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list units", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, units)
}
