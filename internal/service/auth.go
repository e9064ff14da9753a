// Package service provides authentication business logic, delegating
// persistence to repositories.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/citizen-records/backend/internal/models"
)

// Sentinel errors for the auth service; handlers map them to HTTP
// statuses.
var (
	// ErrUserExists means the username or email is already registered.
	ErrUserExists = errors.New("username or email already exists")
	// ErrInvalidEmail means the email failed format validation.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword means the password is shorter than six characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrInvalidCredentials covers both unknown account and wrong
	// password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// UserExists returns true if a user with the given username or email exists.
	UserExists(ctx context.Context, username, email string) (bool, error)
	// CreateUser stores a new user record.
	CreateUser(ctx context.Context, u *models.User) error
	// FindByLogin looks a user up by username or email; (nil, nil) when absent.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// ListUsers returns all accounts, newest first.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash produces a storable digest of password.
	Hash(password string) (string, error)
	// Verify reports whether password matches digest.
	Verify(password, digest string) bool
}

// AuthService implements registration and credential verification by
// delegating to a UserRepository and a PasswordHasher.
type AuthService struct {
	repo   UserRepository
	hasher PasswordHasher
}

// NewAuthService constructs an AuthService from the given repository and
// hasher.
func NewAuthService(repo UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{repo: repo, hasher: hasher}
}

// Register validates the input, hashes the password, and creates a new
// account with role "user". Returns ErrUserExists when the username or
// email is taken.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	exists, err := s.repo.UserExists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials for the given username or email. Unknown
// account and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ListUsers returns all accounts for the admin listing.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}
