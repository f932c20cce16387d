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

var paymentValidate = validator.New()

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(s *services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: s}
}

// POST /api/v1/payments/
func (c *PaymentController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := paymentValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	p, err := c.paymentService.Create(r.Context(), &req)
	if err != nil {
		respondPaymentError(w, err, "Could not create payment")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GET /api/v1/payments/
func (c *PaymentController) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repositories.PaymentFilter{
		Search: q.Get("search"),
		Type:   models.PaymentType(q.Get("payment_type")),
		Method: models.PaymentMethodType(q.Get("payment_method")),
		Status: models.PaymentStatusType(q.Get("status")),
	}
	if raw := q.Get("tenant_id"); raw != "" {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid tenant_id", nil, err)
			return
		}
		f.TenantID = &tenantID
	}

	list, err := c.paymentService.List(r.Context(), f)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not list payments", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/payments/{id}/
func (c *PaymentController) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := c.paymentService.GetByID(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not fetch payment", nil, err)
		return
	}
	if p == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// PUT /api/v1/payments/{id}/
func (c *PaymentController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := paymentValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	p, err := c.paymentService.Update(r.Context(), id, &req)
	if err != nil {
		respondPaymentError(w, err, "Could not update payment")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// DELETE /api/v1/payments/{id}/
func (c *PaymentController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.paymentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not delete payment", nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/payments/mpesa/initiate/
func (c *PaymentController) InitiateSTKPushHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.STKPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON", nil, err)
		return
	}
	if err := paymentValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil)
		return
	}

	resp, err := c.paymentService.InitiateSTKPush(r.Context(), &req)
	if err != nil {
		respondPaymentError(w, err, "Could not initiate payment")
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, resp)
}

func respondPaymentError(w http.ResponseWriter, err error, fallback string) {
	var appErr *utils.AppError
	switch {
	case errors.Is(err, utils.ErrInvalidPhone):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Phone number is not a valid Kenyan MSISDN", nil)
	case errors.Is(err, utils.ErrInvalidAmount):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Amount must be at least 1 KES", nil)
	case errors.As(err, &appErr):
		utils.HandleAppError(w, err)
	case errors.Is(err, utils.ErrRowVersionConflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict, "Payment was modified concurrently, retry", nil)
	case errors.Is(err, pgx.ErrNoRows):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found", nil)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, fallback, nil, err)
	}
}
