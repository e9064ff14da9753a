package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/citizen-records/backend/internal/models"
)

// PostgresRememberRepository implements persistent-login token
// persistence on a PostgreSQL database.
type PostgresRememberRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresRememberRepository creates a new PostgresRememberRepository
// with the given database connection.
func NewPostgresRememberRepository(db *sql.DB) *PostgresRememberRepository {
	return &PostgresRememberRepository{DB: db}
}

// Replace atomically installs rt as the single live token for its user,
// invalidating any previous one. Delete-then-insert inside one
// transaction; last writer wins under concurrent logins.
func (r *PostgresRememberRepository) Replace(ctx context.Context, rt *models.RememberToken) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM remember_tokens WHERE user_id = $1`,
		rt.UserID,
	); err != nil {
		return fmt.Errorf("delete old token: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO remember_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		rt.UserID, rt.Token, rt.ExpiresAt,
	); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return tx.Commit()
}

// Resolve looks a live token up and returns the owning user's current
// attributes. Expiry is evaluated in SQL; expired or unknown tokens
// return (nil, nil). The token is not rotated on use.
func (r *PostgresRememberRepository) Resolve(ctx context.Context, token string) (*models.User, error) {
	u := &models.User{}
	var role string
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT u.id, u.username, u.email, u.role
		   FROM remember_tokens rt
		   JOIN users u ON rt.user_id = u.id
		  WHERE rt.token = $1 AND rt.expires_at > now()`,
		token,
	).Scan(&u.ID, &u.Username, &u.Email, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// Delete removes tokens matching the user id or the token value.
// Idempotent; absence of a record is not an error.
func (r *PostgresRememberRepository) Delete(ctx context.Context, userID, token string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`DELETE FROM remember_tokens WHERE user_id = $1 OR token = $2`,
		userID, token,
	)
	return err
}
