package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/services"
	"github.com/nyumbani/rental-service/internal/utils"
)

var unitValidate = validator.New()

type UnitController struct {
	unitService *services.UnitService
}

func NewUnitController(s *services.UnitService) *UnitController {
	return &UnitController{unitService: s}
}

// POST /api/v1/units/
func (c *UnitController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := unitValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	u, err := c.unitService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, utils.ErrUnitNumberExists) {
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Unit number already exists for this property", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not create unit", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, u)
}

// GET /api/v1/units/
func (c *UnitController) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repositories.UnitFilter{
		Search:   q.Get("search"),
		Status:   models.UnitStatusType(q.Get("status")),
		UnitType: models.UnitType(q.Get("unit_type")),
	}
	if raw := q.Get("property_id"); raw != "" {
		propID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property_id", nil, err)
			return
		}
		f.PropertyID = &propID
	}

	list, err := c.unitService.List(r.Context(), f)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list units", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/units/{id}/
func (c *UnitController) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := c.unitService.GetByID(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not fetch unit", nil, err)
		return
	}
	if u == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// PUT /api/v1/units/{id}/
func (c *UnitController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := unitValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	u, err := c.unitService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrUnitNumberExists):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Unit number already exists for this property", nil)
		case errors.Is(err, pgx.ErrNoRows):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not update unit", nil, err)
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// DELETE /api/v1/units/{id}/
func (c *UnitController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.unitService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Unit not found", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not delete unit", nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/units/{id}/tenants/
func (c *UnitController) TenantsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tenants, err := c.unitService.Tenants(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list tenants", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tenants)
}
