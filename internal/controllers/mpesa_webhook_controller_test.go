package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/rental-service/internal/mpesa"
)

// Rejection paths never reach the payment service, so a nil service is
// enough to exercise them.

func postCallback(t *testing.T, body string) (*httptest.ResponseRecorder, mpesa.Ack) {
	t.Helper()
	c := NewMpesaWebhookController(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/mpesa/callback/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	c.CallbackHandler(rec, req)

	var ack mpesa.Ack
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ack))
	return rec, ack
}

func TestCallbackHandlerMalformedJSON(t *testing.T) {
	rec, ack := postCallback(t, `{"Body": not-json`)

	// Provider retries on non-200, so even rejections return 200.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ack.ResultCode)
}

func TestCallbackHandlerMissingCheckoutRequestID(t *testing.T) {
	rec, ack := postCallback(t, `{"Body":{"stkCallback":{"ResultCode":0}}}`)

	// Parseable but unmatchable: ack code 0 so the provider stops retrying.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, ack.ResultCode)
}
