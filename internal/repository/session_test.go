package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/citizen-records/backend/internal/models"
)

func setupSessionMock(t *testing.T) (*PostgresSessionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresSessionRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestSessionGet_Found(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	last := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "username", "email", "role", "logged_in", "last_activity"}).
		AddRow("s-1", "u-1", "alice", "alice@example.com", "user", true, last)
	mock.ExpectQuery(`SELECT id, user_id, username, email, role, logged_in, last_activity`).
		WithArgs("s-1").
		WillReturnRows(rows)

	s, err := repo.Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("expected a session, got nil")
	}
	if !s.LoggedIn || s.UserID != "u-1" {
		t.Errorf("unexpected session: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionGet_Absent(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, user_id, username, email, role, logged_in, last_activity`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "email", "role", "logged_in", "last_activity"}))

	s, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil for absent session, got %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionInsert(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	s := &models.Session{
		ID:           "s-1",
		UserID:       "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		Role:         models.RoleUser,
		LoggedIn:     true,
		LastActivity: time.Now(),
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (id, user_id, username, email, role, logged_in, last_activity)`)).
		WithArgs(s.ID, s.UserID, s.Username, s.Email, "user", true, s.LastActivity).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Insert(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionUpdateLastActivity(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET last_activity = $2 WHERE id = $1`)).
		WithArgs("s-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLastActivity(context.Background(), "s-1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionDelete(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = $1`)).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows affected is still success: deletion is idempotent.
	if err := repo.Delete(context.Background(), "s-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessionDelete_Error(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = $1`)).
		WithArgs("s-1").
		WillReturnError(errors.New("delete failed"))

	if err := repo.Delete(context.Background(), "s-1"); err == nil {
		t.Error("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
