// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/citizen-records/backend/internal/auth"
	"github.com/citizen-records/backend/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityResolver resolves a request's credentials into an identity.
type IdentityResolver interface {
	// Resolve runs the full resolution sequence for one request.
	Resolve(w http.ResponseWriter, r *http.Request) (*models.Identity, error)
}

// RequireAuth runs identity resolution once per request and stores the
// resolved identity in the request context. Any credential failure gets
// the same generic 401 body; a storage failure on the session path gets
// a retryable 500.
func RequireAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(w, r)
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				writeJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			case err != nil:
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the administrative role. It must run
// after RequireAuth; a resolved non-admin identity is 403, never 401.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if err := auth.RequireAdmin(identity); err != nil {
			if errors.Is(err, auth.ErrForbidden) {
				writeJSONError(w, http.StatusForbidden, "Admin access required")
			} else {
				writeJSONError(w, http.StatusUnauthorized, "Authentication required")
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext extracts the resolved identity from the request
// context. Returns nil if resolution has not run.
func IdentityFromContext(ctx context.Context) *models.Identity {
	if id, ok := ctx.Value(identityKey).(*models.Identity); ok {
		return id
	}
	return nil
}

// WithIdentity returns a child context carrying the identity; exported
// for handler tests.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
