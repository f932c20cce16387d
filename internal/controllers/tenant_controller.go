package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/services"
	"github.com/nyumbani/rental-service/internal/utils"
)

var tenantValidate = validator.New()

type TenantController struct {
	tenantService *services.TenantService
}

func NewTenantController(s *services.TenantService) *TenantController {
	return &TenantController{tenantService: s}
}

// POST /api/v1/tenants/
func (c *TenantController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := tenantValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	t, err := c.tenantService.Create(r.Context(), &req)
	if err != nil {
		respondTenantError(w, err, "Could not create tenant")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, t)
}

// GET /api/v1/tenants/
func (c *TenantController) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repositories.TenantFilter{
		Search: q.Get("search"),
		Status: models.TenantStatusType(q.Get("status")),
	}
	if raw := q.Get("property_id"); raw != "" {
		propID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property_id", nil, err)
			return
		}
		f.PropertyID = &propID
	}

	list, err := c.tenantService.List(r.Context(), f)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list tenants", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/tenants/{id}/
func (c *TenantController) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := c.tenantService.GetByID(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not fetch tenant", nil, err)
		return
	}
	if t == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Tenant not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// PUT /api/v1/tenants/{id}/
func (c *TenantController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := tenantValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	t, err := c.tenantService.Update(r.Context(), id, &req)
	if err != nil {
		respondTenantError(w, err, "Could not update tenant")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// DELETE /api/v1/tenants/{id}/
func (c *TenantController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.tenantService.Delete(r.Context(), id); err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not delete tenant", nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/tenants/{id}/payments/
func (c *TenantController) PaymentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	payments, err := c.tenantService.Payments(r.Context(), id, limit)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list payments", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, payments)
}

func respondTenantError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrInvalidPhone):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Phone number is not a valid Kenyan MSISDN", nil)
	case errors.Is(err, utils.ErrEmailExists):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Email already in use", nil)
	case errors.Is(err, utils.ErrRowVersionConflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict, "Tenant was modified concurrently, retry", nil)
	case errors.Is(err, pgx.ErrNoRows):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Tenant not found", nil)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, fallback, nil, err)
	}
}
