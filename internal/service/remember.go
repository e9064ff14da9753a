package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/citizen-records/backend/internal/models"
)

// RememberRepository defines the persistence operations required by the
// persistent-login service.
type RememberRepository interface {
	// Replace atomically installs the token as the user's single live one.
	Replace(ctx context.Context, rt *models.RememberToken) error
	// Resolve returns the owner of a live token; (nil, nil) when absent
	// or expired.
	Resolve(ctx context.Context, token string) (*models.User, error)
	// Delete removes tokens by user id or token value; idempotent.
	Delete(ctx context.Context, userID, token string) error
}

// RememberService issues and resolves persistent-login tokens. The path
// is a convenience, never a security boundary of last resort: every
// storage failure here is swallowed, logged, and treated as "no
// persistent login" so it cannot block request handling.
type RememberService struct {
	repo RememberRepository
	ttl  time.Duration
	log  *zap.Logger
}

// NewRememberService constructs a RememberService with the given token
// lifetime.
func NewRememberService(repo RememberRepository, ttl time.Duration, log *zap.Logger) *RememberService {
	return &RememberService{repo: repo, ttl: ttl, log: log}
}

// Issue generates a 256-bit random token for the user, hex-encoded to
// 64 characters, expiring ttl from now, and installs it as the user's
// only live token (the previous one, if any, stops resolving). Returns
// "" when generation or storage fails; login proceeds without the
// remember cookie in that case.
func (s *RememberService) Issue(ctx context.Context, userID string) string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		s.log.Warn("remember token generation failed", zap.Error(err))
		return ""
	}
	rt := &models.RememberToken{
		UserID:    userID,
		Token:     hex.EncodeToString(buf),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.repo.Replace(ctx, rt); err != nil {
		s.log.Warn("remember token store failed", zap.Error(err))
		return ""
	}
	return rt.Token
}

// Resolve returns the user behind a live token, or nil when the token
// is unknown, expired, or the store is unavailable. Possession of a
// live token equals authentication for this path; the token is not
// rotated on use.
func (s *RememberService) Resolve(ctx context.Context, token string) *models.User {
	u, err := s.repo.Resolve(ctx, token)
	if err != nil {
		s.log.Warn("remember token lookup failed", zap.Error(err))
		return nil
	}
	return u
}

// Revoke deletes any token for the user id or matching the token value.
// Idempotent; failures are logged and swallowed.
func (s *RememberService) Revoke(ctx context.Context, userID, token string) {
	if err := s.repo.Delete(ctx, userID, token); err != nil {
		s.log.Warn("remember token revoke failed", zap.Error(err))
	}
}
