package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/tastytrail-backend/internal/logger"
	"github.com/ignatzorin/tastytrail-backend/internal/metrics"
	"github.com/ignatzorin/tastytrail-backend/internal/models"
	"github.com/ignatzorin/tastytrail-backend/internal/notification"
	"github.com/ignatzorin/tastytrail-backend/internal/pkg/apperror"
	"github.com/ignatzorin/tastytrail-backend/internal/repository"
	"github.com/ignatzorin/tastytrail-backend/internal/validation"
)

// DefaultRequestTimeout ограничивает время одной операции, если таймаут не задан.
const DefaultRequestTimeout = 10 * time.Second

// AccountRepository описывает зависимости AuthService от слоя хранилища.
// Реализация обязана обеспечивать уникальность email и возвращать
// repository.ErrDuplicateEmail при нарушении.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Save(ctx context.Context, account *models.Account) error
}

// Notifier принимает письма к отправке. Результат доставки вызывающему не возвращается.
type Notifier interface {
	Enqueue(msg notification.Message)
}

// AuthService инкапсулирует бизнес-логику регистрации, входа и сброса пароля.
type AuthService struct {
	repo     AccountRepository
	hasher   *PasswordHasher
	tokens   *TokenManager
	otp      *OtpEngine
	notifier Notifier
	timeout  time.Duration
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,bcryptmax"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
	Role     string `json:"role" validate:"required,role"`
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SendOtpInput запрос кода сброса пароля.
type SendOtpInput struct {
	Email string `json:"email" validate:"required"`
}

// VerifyOtpInput проверка кода сброса пароля.
type VerifyOtpInput struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// ResetPasswordInput установка нового пароля после подтверждения кода.
type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,bcryptmax"`
}

// FederatedLoginInput данные, полученные от внешнего провайдера (Google).
type FederatedLoginInput struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
	Role     string `json:"role" validate:"required,role"`
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	Account   *models.Account
	Token     string
	ExpiresAt time.Time
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AccountRepository, hasher *PasswordHasher, tokens *TokenManager, otp *OtpEngine, notifier Notifier, timeout time.Duration) *AuthService {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		otp:      otp,
		notifier: notifier,
		timeout:  timeout,
	}
}

// SessionTTL срок жизни сессии, нужен HTTP-слою для cookie.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// Register создаёт аккаунт с паролем, выдаёт токен и ставит в очередь приветственное письмо.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	const op = "register"
	defer func() { err = s.finish(op, err) }()

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = validation.NormalizeEmail(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	if err := validation.Struct(in); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.ErrDuplicateAccount
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		FullName:     in.FullName,
		Email:        in.Email,
		Mobile:       in.Mobile,
		PasswordHash: &hash,
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.ErrDuplicateAccount
		}
		return nil, err
	}

	res, err = s.issue(account)
	if err != nil {
		return nil, err
	}

	msg, err := notification.WelcomeMessage(account.Email, account.FullName)
	if err != nil {
		logger.Get().WithField("account_id", account.ID).WithError(err).Warn("auth service: приветственное письмо не собрано")
	} else {
		s.notifier.Enqueue(msg)
	}

	return res, nil
}

// Login проверяет пароль и выдаёт сессионный токен.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (res *AuthResult, err error) {
	const op = "login"
	defer func() { err = s.finish(op, err) }()

	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperror.ErrAccountNotFound
		}
		return nil, err
	}

	// Аккаунт без пароля создан через внешний провайдер, вход по паролю для него невозможен.
	if !account.HasPassword() || !s.hasher.Verify(in.Password, *account.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(account)
}

// SendOtp выдаёт новый код сброса пароля, перезаписывая предыдущий.
func (s *AuthService) SendOtp(ctx context.Context, in SendOtpInput) (err error) {
	const op = "send_otp"
	defer func() { err = s.finish(op, err) }()

	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return apperror.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return apperror.ErrAccountNotFound
		}
		return err
	}

	challenge, err := s.otp.Generate()
	if err != nil {
		return err
	}
	account.ApplyOtpChallenge(challenge)

	if err := s.repo.Save(ctx, account); err != nil {
		return err
	}

	msg, err := notification.ResetOtpMessage(account.Email, account.FullName, *challenge.Code, OtpTTL)
	if err != nil {
		logger.Get().WithField("account_id", account.ID).WithError(err).Warn("auth service: письмо с кодом не собрано")
		return nil
	}
	s.notifier.Enqueue(msg)

	return nil
}

// VerifyOtp подтверждает код. После успеха код и срок очищаются, а сброс пароля разрешается.
func (s *AuthService) VerifyOtp(ctx context.Context, in VerifyOtpInput) (err error) {
	const op = "verify_otp"
	defer func() { err = s.finish(op, err) }()

	in.Email = validation.NormalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	if err := validation.Struct(in); err != nil {
		return apperror.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		// Отсутствующий аккаунт не отличаем от незапрошенного кода.
		if errors.Is(err, repository.ErrAccountNotFound) {
			return apperror.ErrOtpNotRequested
		}
		return err
	}

	verified, err := s.otp.Verify(account.OtpChallenge(), in.Code)
	if err != nil {
		return err
	}
	account.ApplyOtpChallenge(verified)

	return s.repo.Save(ctx, account)
}

// ResetPassword устанавливает новый пароль, если код был подтверждён.
// Сам код здесь повторно не проверяется.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) (err error) {
	const op = "reset_password"
	defer func() { err = s.finish(op, err) }()

	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return apperror.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return apperror.ErrOtpVerificationRequired
		}
		return err
	}
	if !account.IsOtpVerified {
		return apperror.ErrOtpVerificationRequired
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = &hash
	// Окно сброса одноразовое.
	account.ApplyOtpChallenge(models.OtpChallenge{})

	return s.repo.Save(ctx, account)
}

// FederatedLogin сопоставляет вход через внешний провайдер с локальным аккаунтом по email.
func (s *AuthService) FederatedLogin(ctx context.Context, in FederatedLoginInput) (res *AuthResult, err error) {
	const op = "federated_login"
	defer func() { err = s.finish(op, err) }()

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = validation.NormalizeEmail(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	if err := validation.Struct(in); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrAccountNotFound):
		account, err = s.createFederated(ctx, in)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if account.HasPassword() {
		return nil, apperror.ErrPasswordAccountExists
	}

	return s.issue(account)
}

// createFederated создаёт аккаунт без пароля. Если параллельный запрос успел
// создать аккаунт с тем же email, возвращается аккаунт победителя.
func (s *AuthService) createFederated(ctx context.Context, in FederatedLoginInput) (*models.Account, error) {
	account := &models.Account{
		FullName: in.FullName,
		Email:    in.Email,
		Mobile:   in.Mobile,
		Role:     in.Role,
	}

	err := s.repo.Create(ctx, account)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, err
	}

	return s.repo.GetByEmail(ctx, in.Email)
}

// CurrentAccount возвращает аккаунт аутентифицированного пользователя.
func (s *AuthService) CurrentAccount(ctx context.Context, accountID uuid.UUID) (account *models.Account, err error) {
	const op = "current_account"
	defer func() { err = s.finish(op, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err = s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *AuthService) issue(account *models.Account) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Token: token, ExpiresAt: exp}, nil
}

// finish фиксирует результат операции в метриках и маскирует инфраструктурные
// ошибки общим INTERNAL_ERROR. Исходная ошибка остаётся только в логе.
func (s *AuthService) finish(op string, err error) error {
	if err == nil {
		metrics.ObserveAuth(op, "")
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		metrics.ObserveAuth(op, strings.ToLower(string(appErr.Code)))
		return err
	}

	metrics.ObserveAuth(op, strings.ToLower(string(apperror.ErrCodeInternal)))
	logger.Get().WithFields(logrus.Fields{
		"operation": op,
	}).WithError(err).Error("auth service: внутренняя ошибка")

	return apperror.Internal(err)
}
