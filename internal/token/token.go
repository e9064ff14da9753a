// Package token implements the signed bearer-token codec: a stateless
// HS256 credential carrying identity claims and a fixed expiry. Any
// process holding the secret can validate a token without shared
// session storage; the tradeoff is that there is no server-side
// revocation, only the expiry window.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/citizen-records/backend/internal/models"
)

// Rejection reasons. Handlers collapse all of them to one generic
// unauthenticated response; they exist so tests and logs can tell the
// cases apart.
var (
	// ErrMalformed means the token is not three '.'-joined segments.
	ErrMalformed = errors.New("token: malformed")
	// ErrInvalidSignature means the signature does not match the payload.
	ErrInvalidSignature = errors.New("token: invalid signature")
	// ErrExpired means the token is past its expiry.
	ErrExpired = errors.New("token: expired")
)

// Claims is the payload embedded in a bearer token: a snapshot of the
// principal at issuance time. It is not invalidated by later account
// changes until the token expires.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is the account id of the token holder.
	UserID string `json:"user_id"`
	// Username is the login name at issuance.
	Username string `json:"username"`
	// Role is the privilege level at issuance.
	Role string `json:"role"`
}

// Codec issues and verifies bearer tokens with a server-held secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret and stamping expiries
// ttl after issuance.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl, now: time.Now}
}

// Issue serializes and signs a token for the given user, valid from now
// until now+ttl.
func (c *Codec) Issue(user *models.User) (string, error) {
	now := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	return t.SignedString(c.secret)
}

// Verify checks a token and returns its claims. Rejection order:
// malformed structure first, then signature mismatch, then expiry. On
// success the embedded claims are returned unchanged.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case err != nil:
		return nil, ErrInvalidSignature
	}
	if !t.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

// Identity converts verified claims into a resolved identity.
func (cl *Claims) Identity() *models.Identity {
	return &models.Identity{
		UserID:   cl.UserID,
		Username: cl.Username,
		Role:     models.Role(cl.Role),
		Source:   models.SourceBearer,
	}
}
