package http

import (
	"net/http"
)

// AdminHandler handles administrative endpoints; the router guards them
// with the admin role gate.
type AdminHandler struct {
	// AuthService performs the account listing.
	AuthService AuthService
}

// Users returns all registered accounts, newest first, without password
// hashes.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.AuthService.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := make([]userPayload, 0, len(users))
	for i := range users {
		payload = append(payload, userJSON(&users[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   payload,
	})
}
