package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

const (
	adminRole       = "admin"
	tokenCookieName = "token"
)

// Claims is the token payload issued to panel users.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth only lets through requests carrying a valid HS256 token with the
// admin role. The token comes from the Authorization header or the token
// cookie. An empty secret disables the check.
func AdminAuth(jwtSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("AdminAuth")
	return func(next http.Handler) http.Handler {
		if jwtSecret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := tokenFromRequest(r)
			if err != nil {
				log.Debug("no usable token", zap.String("path", r.URL.Path), zap.Error(err))
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				msg := "token is invalid"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token has expired"
				}
				log.Warn("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				writeAuthError(w, http.StatusUnauthorized, msg)
				return
			}

			if claims.Role != adminRole {
				log.Warn("non-admin token on admin route",
					zap.String("path", r.URL.Path), zap.String("user_id", claims.UserID), zap.String("role", claims.Role))
				writeAuthError(w, http.StatusForbidden, "admin role required")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", errors.New("authorization header format must be 'Bearer <token>'")
		}
		return parts[1], nil
	}
	if c, err := r.Cookie(tokenCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errors.New("authorization token is not provided")
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
