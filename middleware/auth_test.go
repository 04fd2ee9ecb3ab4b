package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateMockClerkJWT builds a token with Clerk-shaped claims signed with a
// throwaway key. It can never pass real verification, which is exactly what
// the rejection tests need.
func generateMockClerkJWT(t *testing.T, clerkID string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-testing-only"))
	require.NoError(t, err)
	return signed
}

func nextRecorder(called *bool, clerkID *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, ok := GetClerkID(r.Context()); ok {
			*clerkID = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestClerkAuthMiddlewareMissingHeader(t *testing.T) {
	var called bool
	var id string
	handler := ClerkAuthMiddleware(nextRecorder(&called, &id))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestClerkAuthMiddlewareInvalidFormat(t *testing.T) {
	var called bool
	var id string
	handler := ClerkAuthMiddleware(nextRecorder(&called, &id))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	req.Header.Set("Authorization", "Token abc123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestClerkAuthMiddlewareRejectsForgedToken(t *testing.T) {
	var called bool
	var id string
	handler := ClerkAuthMiddleware(nextRecorder(&called, &id))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	req.Header.Set("Authorization", "Bearer "+generateMockClerkJWT(t, "user_forged"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestOptionalAuthMiddlewareAnonymous(t *testing.T) {
	var called bool
	var id string
	handler := OptionalAuthMiddleware(nextRecorder(&called, &id))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/streak/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called, "anonymous requests pass through")
	assert.Empty(t, id)
}

func TestOptionalAuthMiddlewareForgedTokenStillAnonymous(t *testing.T) {
	var called bool
	var id string
	handler := OptionalAuthMiddleware(nextRecorder(&called, &id))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/streak/status", nil)
	req.Header.Set("Authorization", "Bearer "+generateMockClerkJWT(t, "user_forged"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
	assert.Empty(t, id, "an unverifiable token must not attach an identity")
}

func TestGetClerkID(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClerkIDKey, "user_abc")

	id, ok := GetClerkID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user_abc", id)

	_, ok = GetClerkID(context.Background())
	assert.False(t, ok)
}
