package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
)

type contextKey string

const (
	accountIDKey contextKey = "account_id"
	roleKey      contextKey = "role"
)

const (
	msgMissingToken = "missing bearer token"
	msgInvalidToken = "invalid token"
	msgForbidden    = "forbidden"
)

var errInvalidSubject = errors.New("token subject is not a positive account id")

// Auth проверяет bearer-токен (HS256) и кладёт в контекст ID аккаунта (claim sub) и роль (claim role)
type Auth struct {
	secret    []byte
	adminRole string
}

func NewAuth(secret, adminRole string) *Auth {
	return &Auth{secret: []byte(secret), adminRole: adminRole}
}

// Authenticate middleware для защищённых маршрутов
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			handlers.RespondUnauthorized(w, msgMissingToken)
			return
		}

		accountID, role, err := a.parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			handlers.RespondUnauthorized(w, msgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пропускает только токены с ролью администратора. Ставится после Authenticate
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(roleKey).(string)
		if role != a.adminRole {
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) parse(raw string) (int64, string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, "", err
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, "", err
	}
	accountID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || accountID <= 0 {
		return 0, "", errInvalidSubject
	}

	role, _ := claims["role"].(string)
	return accountID, role, nil
}

// GetAccountID возвращает ID аккаунта из контекста запроса
func GetAccountID(ctx context.Context) (int64, bool) {
	accountID, ok := ctx.Value(accountIDKey).(int64)
	return accountID, ok
}

// WithAccountID кладёт ID аккаунта в контекст (для тестов обработчиков)
func WithAccountID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}
