// Package auth implements the identity resolution policy: the ordered
// attempt sequence that converts a request's credentials into a single
// resolved identity or a rejection.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/citizen-records/backend/internal/models"
	"github.com/citizen-records/backend/internal/token"
)

// Outcomes of resolution. Every credential failure (missing, malformed,
// tampered, expired) collapses to ErrUnauthenticated so the response
// never reveals why a credential was rejected; ErrForbidden is distinct
// because it means a valid identity with an insufficient role.
var (
	// ErrUnauthenticated means no path yielded an identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the identity lacks the required role.
	ErrForbidden = errors.New("admin access required")
)

// SessionManager is the session state machine consumed by the resolver.
type SessionManager interface {
	// Create stores a fresh session and returns its id.
	Create(ctx context.Context, user *models.User) (string, error)
	// Touch evaluates and refreshes a session; (nil, nil) when not active.
	Touch(ctx context.Context, id string) (*models.Identity, error)
}

// RememberStore is the persistent-login store consumed by the resolver.
type RememberStore interface {
	// Resolve returns the owner of a live token, or nil.
	Resolve(ctx context.Context, tok string) *models.User
}

// TokenVerifier validates self-contained bearer tokens.
type TokenVerifier interface {
	// Verify checks a token and returns its claims.
	Verify(tok string) (*token.Claims, error)
}

// Resolver decides, once per request, which credential path applies.
// Resolution order is fixed: active session, then persistent-login
// token, then bearer token; it never proceeds past the first success.
type Resolver struct {
	sessions SessionManager
	remember RememberStore
	codec    TokenVerifier
	secure   bool
	log      *zap.Logger
}

// NewResolver constructs a Resolver over the three credential paths.
// secure marks the cookies it sets as Secure (TLS deployments).
func NewResolver(sessions SessionManager, remember RememberStore, codec TokenVerifier, secure bool, log *zap.Logger) *Resolver {
	return &Resolver{sessions: sessions, remember: remember, codec: codec, secure: secure, log: log}
}

// Resolve runs the full resolution sequence. The only mutations are the
// explicit cookie side effects: a fresh session cookie on successful
// silent reauthentication, and clearing of stale cookies. A storage
// error on the session path is returned as-is for the transport to map
// to a retryable server error.
func (rs *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (*models.Identity, error) {
	id, err := rs.ResolveSession(w, r)
	if err != nil || id != nil {
		return id, err
	}

	// 3. Bearer token supplied directly on the request.
	if raw := bearerToken(r); raw != "" {
		claims, err := rs.codec.Verify(raw)
		if err != nil {
			return nil, ErrUnauthenticated
		}
		return claims.Identity(), nil
	}

	// 4. No credential at all.
	return nil, ErrUnauthenticated
}

// ResolveSession runs only the cookie-based steps: the active-session
// check and, failing that, silent re-establishment from the
// persistent-login cookie. Returns (nil, nil) when neither applies,
// which the session-status endpoint reports as "not logged in".
func (rs *Resolver) ResolveSession(w http.ResponseWriter, r *http.Request) (*models.Identity, error) {
	// 1. Active session wins outright.
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		identity, err := rs.sessions.Touch(r.Context(), c.Value)
		if err != nil {
			return nil, err
		}
		if identity != nil {
			return identity, nil
		}
		// Dead session id; invalidate the cookie before falling through.
		ClearSessionCookie(w, rs.secure)
	}

	// 2. Silent re-establishment from the persistent-login token.
	if c, err := r.Cookie(RememberCookieName); err == nil && c.Value != "" {
		user := rs.remember.Resolve(r.Context(), c.Value)
		if user == nil {
			// Unknown, expired, or store unavailable: clear the stale
			// cookie and continue; this path never blocks a request.
			ClearRememberCookie(w, rs.secure)
			return nil, nil
		}
		sessionID, err := rs.sessions.Create(r.Context(), user)
		if err != nil {
			// The identity is established; only the follow-up session
			// could not be stored. The next request retries step 2.
			rs.log.Warn("session create after silent reauth failed", zap.Error(err))
		} else {
			SetSessionCookie(w, sessionID, rs.secure)
		}
		return &models.Identity{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			Source:   models.SourceRemember,
		}, nil
	}

	return nil, nil
}

// bearerToken extracts the token from an "Authorization: Bearer" header,
// or returns "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAdmin is the role gate: a pure post-condition on an already
// resolved identity. A valid non-admin identity is Forbidden, never
// Unauthenticated.
func RequireAdmin(identity *models.Identity) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
