// Package repository provides Postgres persistence for users, sessions,
// and persistent-login tokens.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/citizen-records/backend/internal/models"
)

// PostgresUserRepository implements user persistence on a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// UserExists checks whether a user with the given username or email exists.
func (r *PostgresUserRepository) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&exists)
	return exists, err
}

// CreateUser inserts a new user record.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt,
	)
	return err
}

// FindByLogin looks a user up by username or email. Returns (nil, nil)
// when no user matches.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	u := &models.User{}
	var role string
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash, role, created_at
		   FROM users WHERE username = $1 OR email = $1`,
		login,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// ListUsers returns all user accounts without password hashes, newest first.
func (r *PostgresUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(
		ctx,
		`SELECT id, username, email, role, created_at
		   FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}
