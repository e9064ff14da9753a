package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/citizen-records/backend/internal/models"
)

// PostgresSessionRepository implements session-record persistence on a
// PostgreSQL database. Each write is a single-row statement, so
// concurrent logins and logouts for the same user cannot leave a
// partial record.
type PostgresSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository
// with the given database connection.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// Get looks a session up by id. Returns (nil, nil) when no record exists.
func (r *PostgresSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	s := &models.Session{}
	var role string
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, user_id, username, email, role, logged_in, last_activity
		   FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Username, &s.Email, &role, &s.LoggedIn, &s.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Role = models.Role(role)
	return s, nil
}

// Insert stores a new session record.
func (r *PostgresSessionRepository) Insert(ctx context.Context, s *models.Session) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO sessions (id, user_id, username, email, role, logged_in, last_activity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.Username, s.Email, string(s.Role), s.LoggedIn, s.LastActivity,
	)
	return err
}

// UpdateLastActivity refreshes the activity timestamp of a session.
func (r *PostgresSessionRepository) UpdateLastActivity(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(
		ctx,
		`UPDATE sessions SET last_activity = $2 WHERE id = $1`,
		id, at,
	)
	return err
}

// Delete removes a session record. Deleting an absent record is not an error.
func (r *PostgresSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	return err
}
