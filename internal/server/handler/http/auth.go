// Package http provides HTTP handlers for registration, login, session
// management, and logout.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/citizen-records/backend/internal/auth"
	"github.com/citizen-records/backend/internal/middleware"
	"github.com/citizen-records/backend/internal/models"
	"github.com/citizen-records/backend/internal/service"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	// Register creates a new account with role "user".
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	// Login verifies credentials by username or email.
	Login(ctx context.Context, login, password string) (*models.User, error)
	// ListUsers returns all accounts for the admin listing.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// TokenIssuer issues signed bearer tokens.
type TokenIssuer interface {
	// Issue returns a signed token embedding the user's attributes.
	Issue(user *models.User) (string, error)
}

// SessionManager is the subset of session operations the handlers use.
type SessionManager interface {
	// Create stores a fresh session and returns its id.
	Create(ctx context.Context, user *models.User) (string, error)
	// Touch evaluates and refreshes a session; (nil, nil) when not active.
	Touch(ctx context.Context, id string) (*models.Identity, error)
	// Destroy removes a session record; idempotent.
	Destroy(ctx context.Context, id string) error
}

// RememberService is the persistent-login surface the handlers use.
type RememberService interface {
	// Issue installs a fresh persistent-login token; "" on failure.
	Issue(ctx context.Context, userID string) string
	// Revoke deletes tokens by user id or value; idempotent.
	Revoke(ctx context.Context, userID, token string)
}

// SessionResolver runs the cookie-based resolution steps only.
type SessionResolver interface {
	// ResolveSession checks the session cookie, then the remember cookie.
	ResolveSession(w http.ResponseWriter, r *http.Request) (*models.Identity, error)
}

// AuthHandler handles HTTP requests for registration, login, and the
// session lifecycle.
type AuthHandler struct {
	// AuthService performs account operations.
	AuthService AuthService
	// Tokens issues bearer tokens for the stateless path.
	Tokens TokenIssuer
	// Sessions drives the server-side session state machine.
	Sessions SessionManager
	// Remember manages persistent-login tokens.
	Remember RememberService
	// Resolver performs cookie-based identity resolution.
	Resolver SessionResolver
	// RememberTTL is the persistent-login cookie lifetime.
	RememberTTL time.Duration
	// SecureCookies marks emitted cookies Secure.
	SecureCookies bool
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	// Username is the login name to register.
	Username string `json:"username"`
	// Email is the account email address.
	Email string `json:"email"`
	// Password is the plaintext password; hashed before storage.
	Password string `json:"password"`
}

// LoginRequest represents the JSON payload for both login endpoints.
type LoginRequest struct {
	// Username is the login name or email.
	Username string `json:"username"`
	// Password is the plaintext password.
	Password string `json:"password"`
	// RememberMe opts in to a persistent-login token (session login only).
	RememberMe bool `json:"remember_me"`
}

// userPayload is the public account shape returned to clients.
type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func userJSON(u *models.User) userPayload {
	return userPayload{ID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role)}
}

// Register handles user registration requests. It expects a JSON body
// with username, email, and password, creates the account with role
// "user", and returns 201 with a freshly issued bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	tok, err := h.Tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "User registered successfully",
		"token":   tok,
		"user":    userJSON(user),
	})
}

// Login handles stateless token login. On valid credentials it returns
// a bearer token; unknown account and wrong password get the same
// generic 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	user, ok := h.verifyCredentials(w, r)
	if !ok {
		return
	}

	tok, err := h.Tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   tok,
		"user":    userJSON(user),
	})
}

// LoginSession handles cookie-based login. On valid credentials it
// creates a server-side session and sets the session cookie; with
// remember_me it additionally issues a persistent-login token. A
// persistent-token failure never fails the login.
func (h *AuthHandler) LoginSession(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sessionID, err := h.Sessions.Create(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	auth.SetSessionCookie(w, sessionID, h.SecureCookies)

	if req.RememberMe {
		if tok := h.Remember.Issue(r.Context(), user.ID); tok != "" {
			auth.SetRememberCookie(w, tok, time.Now().Add(h.RememberTTL), h.SecureCookies)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Login successful",
		"user":       userJSON(user),
		"session_id": sessionID,
	})
}

// CheckSession reports the current cookie-based login state. It runs
// the session check and, failing that, silent re-establishment from the
// remember cookie; the bearer path is deliberately not consulted.
func (h *AuthHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Resolver.ResolveSession(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if identity == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"logged_in": false,
			"message":   "Session expired or not logged in",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"logged_in": true,
		"user": userPayload{
			ID:       identity.UserID,
			Username: identity.Username,
			Email:    identity.Email,
			Role:     string(identity.Role),
		},
	})
}

// Logout destroys the session, revokes the persistent-login token, and
// clears both cookies. Idempotent: logging out without a session still
// succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var userID string

	if c, err := r.Cookie(auth.SessionCookieName); err == nil && c.Value != "" {
		if identity, err := h.Sessions.Touch(r.Context(), c.Value); err == nil && identity != nil {
			userID = identity.UserID
		}
		if err := h.Sessions.Destroy(r.Context(), c.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	var rememberToken string
	if c, err := r.Cookie(auth.RememberCookieName); err == nil {
		rememberToken = c.Value
	}
	if userID != "" || rememberToken != "" {
		h.Remember.Revoke(r.Context(), userID, rememberToken)
	}

	auth.ClearSessionCookie(w, h.SecureCookies)
	auth.ClearRememberCookie(w, h.SecureCookies)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me returns the identity resolved for the current request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": userPayload{
			ID:       identity.UserID,
			Username: identity.Username,
			Email:    identity.Email,
			Role:     string(identity.Role),
		},
		"source": string(identity.Source),
	})
}

// verifyCredentials decodes a login body and checks it against the auth
// service, writing the response on failure.
func (h *AuthHandler) verifyCredentials(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return nil, false
	}

	user, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return nil, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return user, true
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
