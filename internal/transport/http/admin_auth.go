package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

type adminKey struct{}

// AdminFromContext returns the subject of the admin token that authorized the request.
func AdminFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(adminKey{}).(string)
	return sub, ok
}

// logAdminAction records who performed a destructive admin request.
func logAdminAction(r *http.Request, action string) {
	sub, ok := AdminFromContext(r.Context())
	if !ok || sub == "" {
		sub = "unknown"
	}
	log.Printf("admin %s: %s", sub, action)
}

// IssueAdminToken signs an HS256 token carrying the admin role.
func IssueAdminToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("admin jwt secret not configured")
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": adminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// AdminAuth rejects requests without a valid admin bearer token. With no
// secret configured every admin request is refused.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				respondWithError(w, http.StatusServiceUnavailable, "admin access is not configured", "", nil)
				return
			}

			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header must be 'Bearer <token>'", "", nil)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				log.Printf("admin auth: rejected token: %v", err)
				respondWithError(w, http.StatusUnauthorized, "invalid token", "", nil)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || claims["role"] != adminRole {
				respondWithError(w, http.StatusForbidden, "admin role required", "", nil)
				return
			}
			sub, _ := claims["sub"].(string)
			ctx := context.WithValue(r.Context(), adminKey{}, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
