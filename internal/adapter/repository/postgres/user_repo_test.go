package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/pocketledger/internal/domain"
)

func testUser() *domain.User {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:           "01HUSER",
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	user := testUser()

	mockPool.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := newUserRepositoryWithPool(mockPool)
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	mockPool := newMockPool(t)
	user := testUser()

	mockPool.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	repo := newUserRepositoryWithPool(mockPool)
	err := repo.Create(context.Background(), user)
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	mockPool := newMockPool(t)
	user := testUser()

	rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
		AddRow(user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	mockPool.ExpectQuery("FROM users").WithArgs("alice").WillReturnRows(rows)

	repo := newUserRepositoryWithPool(mockPool)
	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID || got.PasswordHash != user.PasswordHash {
		t.Fatalf("unexpected user: %+v", got)
	}

	assertExpectations(t, mockPool)
}

func TestUserRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM users").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	repo := newUserRepositoryWithPool(mockPool)
	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryUpdate(t *testing.T) {
	tests := []struct {
		name    string
		result  pgconn.CommandTag
		execErr error
		wantErr error
	}{
		{name: "updated", result: pgxmock.NewResult("UPDATE", 1)},
		{name: "missing", result: pgxmock.NewResult("UPDATE", 0), wantErr: domain.ErrUserNotFound},
		{name: "username taken", execErr: &pgconn.PgError{Code: uniqueViolation}, wantErr: domain.ErrDuplicateUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			user := testUser()

			exp := mockPool.ExpectExec("UPDATE users").
				WithArgs(user.ID, user.Username, user.PasswordHash, user.UpdatedAt)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			repo := newUserRepositoryWithPool(mockPool)
			err := repo.Update(context.Background(), user)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
