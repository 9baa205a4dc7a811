package models

import (
	"time"

	"github.com/google/uuid"
)

// Account описывает учётную запись пользователя платформы.
type Account struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	FullName      string     `db:"full_name" json:"fullName"`
	Email         string     `db:"email" json:"email"`
	Mobile        string     `db:"mobile" json:"mobile"`
	PasswordHash  *string    `db:"password_hash" json:"-"`
	Role          string     `db:"role" json:"role"`
	ResetOtp      *int       `db:"reset_otp" json:"-"`
	OtpExpiresAt  *time.Time `db:"otp_expires_at" json:"-"`
	IsOtpVerified bool       `db:"is_otp_verified" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// HasPassword сообщает, зарегистрирован ли аккаунт по паролю.
// Аккаунты, созданные через внешний провайдер, пароля не имеют.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// OtpChallenge возвращает текущее состояние кода сброса пароля.
func (a *Account) OtpChallenge() OtpChallenge {
	return OtpChallenge{
		Code:      a.ResetOtp,
		ExpiresAt: a.OtpExpiresAt,
		Verified:  a.IsOtpVerified,
	}
}

// ApplyOtpChallenge записывает состояние кода в аккаунт.
func (a *Account) ApplyOtpChallenge(ch OtpChallenge) {
	a.ResetOtp = ch.Code
	a.OtpExpiresAt = ch.ExpiresAt
	a.IsOtpVerified = ch.Verified
}

// OtpChallenge хранит код, срок его действия и признак подтверждения.
type OtpChallenge struct {
	Code      *int
	ExpiresAt *time.Time
	Verified  bool
}

// Active сообщает, есть ли у аккаунта выданный и ещё не подтверждённый код.
func (c OtpChallenge) Active() bool {
	return c.Code != nil && c.ExpiresAt != nil
}
