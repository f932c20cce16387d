package mpesa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("key", "secret", "174379", "passkey", "https://example.com/callback", true, 5*time.Second)
	require.NoError(t, err)
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c.BaseURL = base
	return c, srv
}

func TestSTKPushSuccess(t *testing.T) {
	var tokenCalls, pushCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1", "expires_in": "3599"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		calls := atomic.AddInt32(&pushCalls, 1)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var req stkPushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "174379", req.BusinessShortCode)
		assert.Equal(t, "CustomerPayBillOnline", req.TransactionType)
		assert.Equal(t, "254712345678", req.PhoneNumber)
		assert.NotEmpty(t, req.Password)
		if calls == 1 {
			// Fractional amounts are truncated to whole shillings.
			assert.Equal(t, "1500", req.Amount)
		}

		json.NewEncoder(w).Encode(STKPushResponse{
			MerchantRequestID:   "mr-1",
			CheckoutRequestID:   "ws_CO_1",
			ResponseCode:        "0",
			ResponseDescription: "Success",
			CustomerMessage:     "Success. Request accepted for processing",
		})
	})

	c, _ := newTestClient(t, mux)

	resp, err := c.STKPush(context.Background(), "254712345678", decimal.NewFromFloat(1500.75), "John Doe", "rent")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_1", resp.CheckoutRequestID)
	assert.True(t, resp.Accepted())

	// Second push reuses the cached token.
	_, err = c.STKPush(context.Background(), "254712345678", decimal.NewFromInt(200), "John Doe", "rent")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&pushCalls))
}

func TestSTKPushProviderError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "expires_in": "3599"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"requestId":    "req-1",
			"errorCode":    "400.002.02",
			"errorMessage": "Bad Request - Invalid Amount",
		})
	})

	c, _ := newTestClient(t, mux)

	_, err := c.STKPush(context.Background(), "254712345678", decimal.NewFromInt(100), "Jane", "rent")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "400.002.02", apiErr.Code)
}

func TestTokenFailureSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"requestId":    "req-2",
			"errorCode":    "401.002.01",
			"errorMessage": "Invalid Credentials",
		})
	})

	c, _ := newTestClient(t, mux)

	_, err := c.STKPush(context.Background(), "254712345678", decimal.NewFromInt(100), "Jane", "rent")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "401.002.01", apiErr.Code)
}

func TestPasswordDerivation(t *testing.T) {
	c, err := NewClient("k", "s", "174379", "passkey", "cb", true, time.Second)
	require.NoError(t, err)
	// base64("174379" + "passkey" + ts)
	assert.Equal(t, "MTc0Mzc5cGFzc2tleTIwMjYwMTAyMTUwNDA1", c.password("20260102150405"))
}
