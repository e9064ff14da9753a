// Package models defines the core data structures for users, sessions,
// and persistent-login tokens.
package models

import "time"

// Role identifies the privilege level of a user account.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "user"
	// RoleAdmin grants access to administrative endpoints.
	RoleAdmin Role = "admin"
)

// User represents an application account with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the login name chosen by the user.
	Username string
	// Email is the unique email address of the user.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string
	// Role is the privilege level of the account.
	Role Role
	// CreatedAt is when the account was registered.
	CreatedAt time.Time
}

// Session is a server-held session record tied to a cookie-borne id.
type Session struct {
	// ID is the session identifier stored in the client cookie.
	ID string
	// UserID references the owning user.
	UserID string
	// Username is a snapshot of the user's login name.
	Username string
	// Email is a snapshot of the user's email.
	Email string
	// Role is a snapshot of the user's role at session creation.
	Role Role
	// LoggedIn marks the session as authenticated.
	LoggedIn bool
	// LastActivity is refreshed on every request that finds the session alive.
	LastActivity time.Time
}

// RememberToken is a long-lived persistent-login credential.
type RememberToken struct {
	// UserID references the owning user; at most one live token per user.
	UserID string
	// Token is the opaque 64-hex-character credential value.
	Token string
	// ExpiresAt is the fixed expiry, 30 days after issuance.
	ExpiresAt time.Time
}

// Identity is the outcome of resolving a request's credentials.
type Identity struct {
	// UserID is the resolved account id.
	UserID string
	// Username is the resolved login name.
	Username string
	// Email is the resolved email; empty when resolved from a bearer
	// token, which does not carry one.
	Email string
	// Role is the resolved privilege level.
	Role Role
	// Source records which credential path established the identity.
	Source IdentitySource
}

// IdentitySource names the credential path that produced an Identity.
type IdentitySource string

const (
	// SourceSession means an active server-side session.
	SourceSession IdentitySource = "session"
	// SourceRemember means a session re-established from a persistent-login token.
	SourceRemember IdentitySource = "remember"
	// SourceBearer means a self-contained signed bearer token.
	SourceBearer IdentitySource = "bearer"
)

// IsAdmin reports whether the identity holds the administrative role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
