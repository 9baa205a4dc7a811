package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeValidation              ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicateAccount        ErrorCode = "DUPLICATE_ACCOUNT"
	ErrCodeAccountNotFound         ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeInvalidCredentials      ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeOtpNotRequested         ErrorCode = "OTP_NOT_REQUESTED"
	ErrCodeOtpExpired              ErrorCode = "OTP_EXPIRED"
	ErrCodeOtpMismatch             ErrorCode = "OTP_MISMATCH"
	ErrCodeOtpVerificationRequired ErrorCode = "OTP_VERIFICATION_REQUIRED"
	ErrCodePasswordAccountExists   ErrorCode = "PASSWORD_ACCOUNT_EXISTS"
	ErrCodeUnauthorized            ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound                ErrorCode = "NOT_FOUND"
	ErrCodeRateLimited             ErrorCode = "RATE_LIMITED"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с обёрнутыми копиями.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation создаёт ошибку валидации с пользовательским сообщением.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Internal маскирует инфраструктурную ошибку общим сообщением.
func Internal(err error) *AppError {
	return Wrap(err, ErrCodeInternal, "внутренняя ошибка сервера")
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation,
		ErrCodeDuplicateAccount,
		ErrCodeOtpNotRequested,
		ErrCodeOtpExpired,
		ErrCodeOtpMismatch,
		ErrCodeOtpVerificationRequired,
		ErrCodePasswordAccountExists:
		return http.StatusBadRequest
	case ErrCodeAccountNotFound, ErrCodeInvalidCredentials, ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или INTERNAL_ERROR для неизвестных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

var (
	ErrDuplicateAccount        = New(ErrCodeDuplicateAccount, "email уже зарегистрирован, выполните вход")
	ErrAccountNotFound         = New(ErrCodeAccountNotFound, "пользователь не найден, сначала зарегистрируйтесь")
	ErrInvalidCredentials      = New(ErrCodeInvalidCredentials, "неверный пароль")
	ErrOtpNotRequested         = New(ErrCodeOtpNotRequested, "код не запрашивался или пользователь не найден")
	ErrOtpExpired              = New(ErrCodeOtpExpired, "срок действия кода истёк, запросите новый")
	ErrOtpMismatch             = New(ErrCodeOtpMismatch, "неверный код, попробуйте ещё раз")
	ErrOtpVerificationRequired = New(ErrCodeOtpVerificationRequired, "требуется подтверждение кода")
	ErrPasswordAccountExists   = New(ErrCodePasswordAccountExists, "email уже зарегистрирован с паролем, войдите по паролю")
	ErrUnauthorized            = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrNotFound                = New(ErrCodeNotFound, "пользователь не найден")
)
