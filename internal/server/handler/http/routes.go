// Package http provides HTTP routing and middleware configuration for
// the citizen-records authentication service.
package http

import (
	"net/http"
	"time"

	"github.com/citizen-records/backend/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns the HTTP handler serving the
// authentication API. It applies JSON content-type enforcement and
// request logging globally, and runs identity resolution only on the
// protected groups.
//
// Routes:
//
//	POST /api/register       → authHandler.Register
//	POST /api/login          → authHandler.Login (bearer token)
//	POST /api/login-session  → authHandler.LoginSession (cookie session)
//	GET  /api/check-session  → authHandler.CheckSession
//	POST /api/logout         → authHandler.Logout
//	GET  /api/me             → authHandler.Me          (RequireAuth)
//	GET  /api/admin/users    → adminHandler.Users      (RequireAuth + RequireAdmin)
func NewRouter(
	authHandler *AuthHandler,
	adminHandler *AdminHandler,
	resolver middleware.IdentityResolver,
	storageTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Bound every request's context so storage calls cannot block
	// indefinitely
	r.Use(chiMiddleware.Timeout(storageTimeout))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/login-session", authHandler.LoginSession)
		r.Get("/check-session", authHandler.CheckSession)
		r.Post("/logout", authHandler.Logout)

		// Protected group: requires a resolved identity
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(resolver))
			r.Get("/me", authHandler.Me)

			// Admin group: additionally requires the admin role
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/admin/users", adminHandler.Users)
			})
		})
	})

	return r
}
