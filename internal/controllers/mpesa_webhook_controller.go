package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/nyumbani/rental-service/internal/mpesa"
	"github.com/nyumbani/rental-service/internal/services"
	"github.com/nyumbani/rental-service/internal/utils"
)

type MpesaWebhookController struct {
	paymentService *services.PaymentService
}

func NewMpesaWebhookController(s *services.PaymentService) *MpesaWebhookController {
	return &MpesaWebhookController{paymentService: s}
}

// CallbackHandler -> POST /api/v1/payments/mpesa/callback/
//
// Daraja retries deliveries that are not acknowledged, so every
// well-formed request is acked with ResultCode 0 regardless of what the
// matcher decided; only unparseable JSON gets a rejection.
func (c *MpesaWebhookController) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to read M-Pesa callback body")
		utils.RespondWithJSON(w, http.StatusOK, mpesa.AckRejected("Could not read body"))
		return
	}

	var envelope mpesa.CallbackEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		utils.Logger.WithError(err).Error("Discarding malformed M-Pesa callback")
		utils.RespondWithJSON(w, http.StatusOK, mpesa.AckRejected("Invalid payload"))
		return
	}

	// A parseable body is always acked with code 0 so Daraja stops
	// retrying, even when it carries nothing we can match.
	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		utils.Logger.Warn("M-Pesa callback missing CheckoutRequestID, discarding")
		utils.RespondWithJSON(w, http.StatusOK, mpesa.AckAccepted())
		return
	}

	c.paymentService.HandleStkCallback(r.Context(), &cb)
	utils.RespondWithJSON(w, http.StatusOK, mpesa.AckAccepted())
}
