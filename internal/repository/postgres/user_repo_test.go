package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"smartledger/internal/domain"
	"smartledger/internal/repository/postgres"
)

func testUser() *domain.User {
	return &domain.User{
		UserID:       "u1",
		Email:        "a@test.com",
		PasswordHash: "$2a$04$hash",
	}
}

func TestUserRepo_Create_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), testUser())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), testUser())

	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepo_Create_DuplicateUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_user_id_key" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), testUser())

	assert.ErrorIs(t, err, domain.ErrDuplicateUserID)
}

func TestUserRepo_SetToken_UnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET token").
		WithArgs("tok", "2026-04-15 10:30:00", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetToken(context.Background(), "missing", "tok", "2026-04-15 10:30:00")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByToken_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectQuery("SELECT \\* FROM users WHERE token").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_UpdateEmail_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET email").
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`))

	err := repo.UpdateEmail(context.Background(), "u1", "taken@test.com")

	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}
