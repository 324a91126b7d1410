package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-acs-bot/internal/models"
)

const secret = "test-secret"

func protected(t *testing.T) http.Handler {
	return AuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := GetUserFromContext(r.Context()); claims != nil {
			w.Header().Set("X-User", claims.Username)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuthMiddleware(t *testing.T) {
	h := protected(t)
	token, err := GenerateToken(secret, &models.User{ID: 1, Username: "admin", Role: "admin"}, time.Now())
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"health is public", "/health", "", http.StatusNoContent},
		{"webhook is public", "/telegram/isp1/webhook", "", http.StatusNoContent},
		{"missing header", "/api/bots", "", http.StatusUnauthorized},
		{"not bearer", "/api/bots", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "/api/bots", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/api/bots", "Bearer " + token, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestAuthMiddlewareRejectsExpiredAndForeignTokens(t *testing.T) {
	h := protected(t)
	user := &models.User{ID: 1, Username: "admin", Role: "admin"}

	expired, err := GenerateToken(secret, user, time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)
	foreign, err := GenerateToken("other-secret", user, time.Now())
	require.NoError(t, err)

	for _, tok := range []string{expired, foreign} {
		req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestClaimsReachHandler(t *testing.T) {
	token, err := GenerateToken(secret, &models.User{ID: 7, Username: "ops", Role: "admin"}, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/bots", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(t).ServeHTTP(rec, req)

	assert.Equal(t, "ops", rec.Header().Get("X-User"))
}
