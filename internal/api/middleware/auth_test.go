package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func echoAccount(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := GetAccountID(r.Context())
		assert.True(t, ok)
		assert.Equal(t, int64(42), accountID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuth(testSecret, "admin")
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{
			name:   "valid token",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "42", "exp": exp}),
			want:   http.StatusNoContent,
		},
		{
			name:   "missing header",
			header: "",
			want:   http.StatusUnauthorized,
		},
		{
			name:   "wrong secret",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, "other", jwt.MapClaims{"sub": "42", "exp": exp}),
			want:   http.StatusUnauthorized,
		},
		{
			name:   "expired",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "42", "exp": time.Now().Add(-time.Hour).Unix()}),
			want:   http.StatusUnauthorized,
		},
		{
			name:   "non numeric subject",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "sam", "exp": exp}),
			want:   http.StatusUnauthorized,
		},
		{
			name:   "other hmac algorithm",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{"sub": "42", "exp": exp}),
			want:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			auth.Authenticate(echoAccount(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	auth := NewAuth(testSecret, "admin")
	exp := time.Now().Add(time.Hour).Unix()
	handler := auth.Authenticate(auth.RequireAdmin(echoAccount(t)))

	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "admin", role: "admin", want: http.StatusNoContent},
		{name: "customer", role: "customer", want: http.StatusForbidden},
		{name: "no role", role: "", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{"sub": "42", "exp": exp}
			if tt.role != "" {
				claims["role"] = tt.role
			}
			req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, claims))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
