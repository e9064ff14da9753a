package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/citizen-records/backend/internal/models"
)

// fakeRememberRepo implements RememberRepository in memory with the same
// replace semantics as the Postgres implementation.
type fakeRememberRepo struct {
	tokens     map[string]*models.RememberToken // keyed by user id
	replaceErr error
	resolveErr error
	deleteErr  error
}

func newFakeRememberRepo() *fakeRememberRepo {
	return &fakeRememberRepo{tokens: map[string]*models.RememberToken{}}
}

func (f *fakeRememberRepo) Replace(_ context.Context, rt *models.RememberToken) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	cp := *rt
	f.tokens[rt.UserID] = &cp
	return nil
}

func (f *fakeRememberRepo) Resolve(_ context.Context, token string) (*models.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	for _, rt := range f.tokens {
		if rt.Token == token && rt.ExpiresAt.After(time.Now()) {
			return &models.User{ID: rt.UserID, Username: "owner", Role: models.RoleUser}, nil
		}
	}
	return nil, nil
}

func (f *fakeRememberRepo) Delete(_ context.Context, userID, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for uid, rt := range f.tokens {
		if uid == userID || rt.Token == token {
			delete(f.tokens, uid)
		}
	}
	return nil
}

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestIssue_TokenShape(t *testing.T) {
	repo := newFakeRememberRepo()
	s := NewRememberService(repo, 720*time.Hour, zap.NewNop())

	tok := s.Issue(context.Background(), "u-1")
	if !hexToken.MatchString(tok) {
		t.Fatalf("expected a 64-hex-character token, got %q", tok)
	}

	stored := repo.tokens["u-1"]
	if stored == nil || stored.Token != tok {
		t.Fatal("expected the token to be persisted")
	}
	ttl := time.Until(stored.ExpiresAt)
	if ttl < 719*time.Hour || ttl > 721*time.Hour {
		t.Errorf("expected ~30 day expiry, got %v", ttl)
	}
}

func TestIssue_SupersedesPreviousToken(t *testing.T) {
	repo := newFakeRememberRepo()
	s := NewRememberService(repo, 720*time.Hour, zap.NewNop())

	first := s.Issue(context.Background(), "u-1")
	second := s.Issue(context.Background(), "u-1")
	if first == second {
		t.Fatal("expected a fresh token on re-issue")
	}

	if u := s.Resolve(context.Background(), first); u != nil {
		t.Error("expected the superseded token to stop resolving")
	}
	if u := s.Resolve(context.Background(), second); u == nil {
		t.Error("expected the new token to resolve")
	}
}

func TestIssue_StorageFailureSwallowed(t *testing.T) {
	repo := newFakeRememberRepo()
	repo.replaceErr = errors.New("db down")
	s := NewRememberService(repo, 720*time.Hour, zap.NewNop())

	if tok := s.Issue(context.Background(), "u-1"); tok != "" {
		t.Errorf("expected empty token on storage failure, got %q", tok)
	}
}

func TestResolve_NotRotated(t *testing.T) {
	repo := newFakeRememberRepo()
	s := NewRememberService(repo, 720*time.Hour, zap.NewNop())

	tok := s.Issue(context.Background(), "u-1")

	// Repeated silent logins reuse the same token until expiry or
	// replacement.
	for i := 0; i < 3; i++ {
		u := s.Resolve(context.Background(), tok)
		if u == nil || u.ID != "u-1" {
			t.Fatalf("resolve %d: expected owner, got %+v", i, u)
		}
	}
	if repo.tokens["u-1"].Token != tok {
		t.Error("expected the stored token to be unchanged after use")
	}
}

func TestResolve_StorageFailureIsNone(t *testing.T) {
	repo := newFakeRememberRepo()
	repo.resolveErr = errors.New("db down")
	s := NewRememberService(repo, 720*time.Hour, zap.NewNop())

	if u := s.Resolve(context.Background(), "whatever"); u != nil {
		t.Errorf("expected nil on storage failure, got %+v", u)
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	repo := newFakeRememberRepo()
	s := NewRememberService(repo, 720*time.Hour, zap.NewNop())

	tok := s.Issue(context.Background(), "u-1")
	s.Revoke(context.Background(), "u-1", tok)
	if len(repo.tokens) != 0 {
		t.Fatal("expected the token to be deleted")
	}
	// Revoking again, or with a storage error, must not panic or error.
	s.Revoke(context.Background(), "u-1", tok)
	repo.deleteErr = errors.New("db down")
	s.Revoke(context.Background(), "u-1", tok)
}
