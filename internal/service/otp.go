package service

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ignatzorin/tastytrail-backend/internal/models"
	"github.com/ignatzorin/tastytrail-backend/internal/pkg/apperror"
)

// Параметры одноразового кода сброса пароля.
const (
	OtpMin = 100000
	OtpMax = 999999
	OtpTTL = 5 * time.Minute
)

// OtpEngine выдаёт и проверяет шестизначные коды сброса пароля.
type OtpEngine struct {
	now func() time.Time
}

// NewOtpEngine создаёт движок кодов с системными часами.
func NewOtpEngine() *OtpEngine {
	return &OtpEngine{now: time.Now}
}

// Generate возвращает новое активное состояние: случайный код и срок через 5 минут.
func (e *OtpEngine) Generate() (models.OtpChallenge, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(OtpMax-OtpMin+1))
	if err != nil {
		return models.OtpChallenge{}, fmt.Errorf("otp engine: %w", err)
	}

	code := OtpMin + int(n.Int64())
	expiresAt := e.now().Add(OtpTTL)

	return models.OtpChallenge{
		Code:      &code,
		ExpiresAt: &expiresAt,
		Verified:  false,
	}, nil
}

// Verify сверяет присланный код с текущим состоянием. При успехе возвращает
// подтверждённое состояние с очищенными кодом и сроком, чтобы код нельзя было
// использовать повторно.
func (e *OtpEngine) Verify(ch models.OtpChallenge, submitted string) (models.OtpChallenge, error) {
	if !ch.Active() {
		return ch, apperror.ErrOtpNotRequested
	}

	if e.now().After(*ch.ExpiresAt) {
		return ch, apperror.ErrOtpExpired
	}

	code, ok := coerceOtp(submitted)
	if !ok || code != *ch.Code {
		return ch, apperror.ErrOtpMismatch
	}

	return models.OtpChallenge{Verified: true}, nil
}

// coerceOtp приводит код к числу: допускаются пробелы по краям, ведущие нули
// и числовая запись с дробной частью или экспонентой, если значение целое
// (123456.0, 1.23456e5).
func coerceOtp(submitted string) (int, bool) {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(submitted); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(submitted, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > maxCoercedOtp {
		return 0, false
	}
	return int(f), true
}

// maxCoercedOtp отсекает значения, которые не помещаются в int без потерь.
const maxCoercedOtp = 1 << 53
