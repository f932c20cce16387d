package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, sub, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func protectedHandler(gotUserID, gotRole *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID = UserIDFromContext(r.Context())
		*gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireRoleHappyPath(t *testing.T) {
	key := testKey(t)
	var userID, role string
	h := RequireRole(&key.PublicKey, "staff")(protectedHandler(&userID, &role))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, "user-1", "staff", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "staff", role)
}

func TestRequireRoleMissingHeader(t *testing.T) {
	key := testKey(t)
	var userID, role string
	h := RequireRole(&key.PublicKey, "staff")(protectedHandler(&userID, &role))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, userID)
}

func TestRequireRoleExpiredToken(t *testing.T) {
	key := testKey(t)
	var userID, role string
	h := RequireRole(&key.PublicKey, "staff")(protectedHandler(&userID, &role))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, "user-1", "staff", time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token_expired")
}

func TestRequireRoleWrongRole(t *testing.T) {
	key := testKey(t)
	var userID, role string
	h := RequireRole(&key.PublicKey, "staff")(protectedHandler(&userID, &role))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, "user-2", "tenant", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, userID)
}

func TestRequireRoleAnyAuthenticated(t *testing.T) {
	key := testKey(t)
	var userID, role string
	h := RequireRole(&key.PublicKey, "")(protectedHandler(&userID, &role))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, "user-3", "tenant", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tenant", role)
}

func TestRequireRoleForeignKeyRejected(t *testing.T) {
	key := testKey(t)
	other := testKey(t)
	var userID, role string
	h := RequireRole(&key.PublicKey, "staff")(protectedHandler(&userID, &role))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, other, "user-4", "staff", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
