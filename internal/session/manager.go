// Package session owns the server-side session state machine: creation,
// sliding-window expiry, and destruction. It is the single source of
// truth for whether a caller is authenticated on the cookie-based path.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/citizen-records/backend/internal/models"
)

// Repository defines the persistence operations required by the Manager.
type Repository interface {
	// Get looks a session up by id; (nil, nil) when absent.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Insert stores a new session record.
	Insert(ctx context.Context, s *models.Session) error
	// UpdateLastActivity refreshes the activity timestamp of a session.
	UpdateLastActivity(ctx context.Context, id string, at time.Time) error
	// Delete removes a session record; absence is not an error.
	Delete(ctx context.Context, id string) error
}

// Manager drives session records through Absent, Active, and Destroyed.
// Touch is the only place the inactivity timeout is evaluated; nothing
// else may read last_activity.
type Manager struct {
	repo    Repository
	timeout time.Duration
	now     func() time.Time
}

// NewManager constructs a Manager over repo with the given inactivity
// timeout.
func NewManager(repo Repository, timeout time.Duration) *Manager {
	return &Manager{repo: repo, timeout: timeout, now: time.Now}
}

// Create stores a fresh session for user and returns its id for
// delivery as the session cookie. Absent -> Active.
func (m *Manager) Create(ctx context.Context, user *models.User) (string, error) {
	s := &models.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		LoggedIn:     true,
		LastActivity: m.now(),
	}
	if err := m.repo.Insert(ctx, s); err != nil {
		return "", err
	}
	return s.ID, nil
}

// Touch evaluates the session against the inactivity window and must
// run before any other check on an authenticated request. An absent or
// not-logged-in record yields (nil, nil). A record idle longer than the
// timeout is deleted immediately and also yields (nil, nil); callers
// only ever observe Active or effectively-Destroyed. Within the window
// the timestamp is refreshed and the session identity returned.
func (m *Manager) Touch(ctx context.Context, id string) (*models.Identity, error) {
	s, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || !s.LoggedIn {
		return nil, nil
	}

	now := m.now()
	if now.Sub(s.LastActivity) > m.timeout {
		if err := m.repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := m.repo.UpdateLastActivity(ctx, id, now); err != nil {
		return nil, err
	}
	return &models.Identity{
		UserID:   s.UserID,
		Username: s.Username,
		Email:    s.Email,
		Role:     s.Role,
		Source:   models.SourceSession,
	}, nil
}

// Destroy removes the session record. Active or Expired -> Destroyed;
// idempotent, so logging out twice is harmless.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}
