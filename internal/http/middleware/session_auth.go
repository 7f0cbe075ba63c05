package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/clinic-booking/internal/apperr"
)

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// SessionCookie is the cookie the auth service sets alongside the bearer token.
const SessionCookie = "access_token"

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionJWT requires a valid HS256 session token, read from the
// Authorization header or the access_token cookie.
func SessionJWT(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				apperr.Write(w, apperr.ErrUnauthorized)
				return
			}
			raw := sessionToken(r)
			if raw == "" {
				apperr.Write(w, apperr.ErrUnauthorized)
				return
			}
			claims := &SessionClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				apperr.Write(w, apperr.ErrUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects sessions whose role differs from role. It must run
// after SessionJWT.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := SessionFromContext(r.Context())
			if !ok || claims.Role != role {
				apperr.Write(w, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the session claims if present.
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(*SessionClaims)
	return claims, ok
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
