package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/tastytrail-backend/internal/models"
	"github.com/ignatzorin/tastytrail-backend/internal/repository/common"
)

// Ошибки хранилища аккаунтов. Обе совместимы с общими ошибками common через errors.Is.
var (
	ErrAccountNotFound = fmt.Errorf("account %w", common.ErrNotFound)
	ErrDuplicateEmail  = fmt.Errorf("account email %w", common.ErrAlreadyExists)
)

const (
	accountsTable   = "accounts"
	accountsColumns = `id, full_name, email, mobile, password_hash, role, reset_otp, otp_expires_at, is_otp_verified, created_at, updated_at`
)

// AccountRepository хранит аккаунты в таблице accounts PostgreSQL.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository создаёт экземпляр репозитория.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByEmail возвращает аккаунт по email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := common.GetByField[models.Account](ctx, r.db, accountsTable, accountsColumns, "email", email, ErrAccountNotFound)
	if err != nil {
		return nil, fmt.Errorf("account repository: %w", err)
	}
	return account, nil
}

// GetByID возвращает аккаунт по идентификатору.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := common.GetByField[models.Account](ctx, r.db, accountsTable, accountsColumns, "id", id, ErrAccountNotFound)
	if err != nil {
		return nil, fmt.Errorf("account repository: %w", err)
	}
	return account, nil
}

// Create сохраняет новый аккаунт. Уникальный индекс по email отсекает
// проигравшего в гонке параллельных регистраций.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	query := `
		INSERT INTO accounts (id, full_name, email, mobile, password_hash, role, reset_otp, otp_expires_at, is_otp_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		account.ID, account.FullName, account.Email, account.Mobile, account.PasswordHash,
		account.Role, account.ResetOtp, account.OtpExpiresAt, account.IsOtpVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("account repository: create %w", err)
	}

	return nil
}

// Save перезаписывает изменяемые поля аккаунта: пароль и состояние кода сброса.
// Роль и email не меняются.
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET full_name = $2,
			mobile = $3,
			password_hash = $4,
			reset_otp = $5,
			otp_expires_at = $6,
			is_otp_verified = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	var updatedAt time.Time
	if err := r.db.QueryRowxContext(
		ctx, query,
		account.ID, account.FullName, account.Mobile, account.PasswordHash,
		account.ResetOtp, account.OtpExpiresAt, account.IsOtpVerified,
	).Scan(&updatedAt); err != nil {
		if isNoRows(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("account repository: save %w", err)
	}
	account.UpdatedAt = updatedAt

	return nil
}

// Ping проверяет доступность базы.
func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
