package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/tastytrail-backend/internal/models"
	"github.com/ignatzorin/tastytrail-backend/internal/repository/common"
)

var accountColumnNames = []string{
	"id", "full_name", "email", "mobile", "password_hash", "role",
	"reset_otp", "otp_expires_at", "is_otp_verified", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*AccountRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewAccountRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(accountColumnNames).
			AddRow(id.String(), "Анна", "a@x.com", "1234567890", "hash", models.RoleUser, nil, nil, false, now, now))

	account, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, account.ID)
	assert.True(t, account.HasPassword())
	assert.Nil(t, account.ResetOtp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email = \$1`).
		WithArgs("none@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "none@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByID_DriverError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	hash := "hash"

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs(sqlmock.AnyArg(), "Анна", "a@x.com", "1234567890", &hash, models.RoleOwner, nil, nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	account := &models.Account{
		FullName:     "Анна",
		Email:        "a@x.com",
		Mobile:       "1234567890",
		PasswordHash: &hash,
		Role:         models.RoleOwner,
	}
	require.NoError(t, repo.Create(context.Background(), account))

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.Equal(t, now, account.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.Account{Email: "a@x.com", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestAccountRepository_Save(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	code := 123456
	account := &models.Account{
		ID:       uuid.New(),
		FullName: "Анна",
		Mobile:   "1234567890",
		ResetOtp: &code,
	}

	mock.ExpectQuery(`UPDATE accounts`).
		WithArgs(sqlmock.AnyArg(), "Анна", "1234567890", nil, &code, nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	require.NoError(t, repo.Save(context.Background(), account))
	assert.Equal(t, now, account.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Save_Missing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE accounts`).WillReturnError(sql.ErrNoRows)

	err := repo.Save(context.Background(), &models.Account{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
