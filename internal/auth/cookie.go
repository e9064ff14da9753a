package auth

import (
	"net/http"
	"time"
)

// Cookie names used by the transport.
const (
	// SessionCookieName carries the server-side session id.
	SessionCookieName = "session_id"
	// RememberCookieName carries the persistent-login token.
	RememberCookieName = "remember_token"
)

// SetSessionCookie delivers a session id to the client. Session-scoped,
// HttpOnly, SameSite=Strict.
func SetSessionCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}

// ClearSessionCookie invalidates the client-held session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}

// SetRememberCookie delivers a persistent-login token with the given
// expiry (30 days in the default configuration). HttpOnly; Secure only
// over TLS.
func SetRememberCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
	})
}

// ClearRememberCookie invalidates the client-held persistent-login cookie.
func ClearRememberCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
	})
}
