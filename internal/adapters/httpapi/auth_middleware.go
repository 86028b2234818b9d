package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
)

// TokenVerifier validates a session token and returns its member id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.MemberID, error)
}

// NewAuthMiddleware enforces Authorization: Bearer <session token>.
//
// On success, it stores the authenticated member id in request context.
func NewAuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, msg := bearerToken(r)
			if msg != "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", msg, nil)
				return
			}
			id, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithMemberID(r.Context(), id)))
		})
	}
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit member id via X-Debug-Member. Without the header a
// bearer token is still honored when v is non-nil; otherwise it falls back to
// defaultMember (if provided).
//
// Do NOT use this in production deployments.
func NewDevAuthMiddleware(defaultMember domain.MemberID, v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := domain.MemberID(strings.TrimSpace(r.Header.Get("X-Debug-Member")))
			if id == "" && v != nil {
				if raw, msg := bearerToken(r); msg == "" {
					if verified, err := v.Verify(r.Context(), raw); err == nil {
						id = verified
					}
				}
			}
			if id == "" {
				id = domain.MemberID(strings.TrimSpace(string(defaultMember)))
			}
			if id == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing member (set X-Debug-Member)", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithMemberID(r.Context(), id)))
		})
	}
}

// bearerToken extracts the token; msg is non-empty when the header is unusable.
func bearerToken(r *http.Request) (token string, msg string) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", "missing Authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return "", "malformed Authorization header"
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
	if raw == "" {
		return "", "missing bearer token"
	}
	return raw, ""
}
