package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/tastytrail-backend/internal/http/handlers/common"
	"github.com/ignatzorin/tastytrail-backend/internal/models"
	"github.com/ignatzorin/tastytrail-backend/internal/service"
)

// AuthService описывает операции аутентификации, которые нужны HTTP-слою.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	SendOtp(ctx context.Context, in service.SendOtpInput) error
	VerifyOtp(ctx context.Context, in service.VerifyOtpInput) error
	ResetPassword(ctx context.Context, in service.ResetPasswordInput) error
	FederatedLogin(ctx context.Context, in service.FederatedLoginInput) (*service.AuthResult, error)
	CurrentAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	SessionTTL() time.Duration
}

// AuthHandler предоставляет HTTP слой для регистрации, входа и сброса пароля.
type AuthHandler struct {
	auth   AuthService
	cookie CookiePolicy
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth AuthService, cookie CookiePolicy) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// Register обрабатывает POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, err)
		return
	}

	h.respondSession(c, http.StatusCreated, "регистрация прошла успешно", res)
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, err)
		return
	}

	h.respondSession(c, http.StatusOK, "вход выполнен", res)
}

// Logout обрабатывает POST /api/auth/logout. Отсутствие cookie ошибкой не считается.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.clearSessionCookie(c)
	common.RespondSuccess(c, http.StatusOK, "выход выполнен", nil)
}

// SendResetOtp обрабатывает POST /api/auth/send-reset-otp.
func (h *AuthHandler) SendResetOtp(c *gin.Context) {
	var req service.SendOtpInput
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.auth.SendOtp(c.Request.Context(), req); err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "код отправлен на email", nil)
}

// verifyOtpRequest принимает код в поле code или resetOtp, строкой или числом.
type verifyOtpRequest struct {
	Email    string  `json:"email"`
	Code     otpCode `json:"code"`
	ResetOtp otpCode `json:"resetOtp"`
}

// otpCode хранит код в виде строки независимо от JSON-типа.
type otpCode string

func (o *otpCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = otpCode(s)
		return nil
	}

	// Числа сохраняем как есть, приведение к коду выполняет сервис.
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*o = otpCode(n.String())
	return nil
}

// VerifyResetOtp обрабатывает POST /api/auth/verify-reset-otp.
func (h *AuthHandler) VerifyResetOtp(c *gin.Context) {
	var req verifyOtpRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	code := req.Code
	if code == "" {
		code = req.ResetOtp
	}

	if err := h.auth.VerifyOtp(c.Request.Context(), service.VerifyOtpInput{Email: req.Email, Code: string(code)}); err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "код подтверждён", nil)
}

// ResetPassword обрабатывает POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordInput
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req); err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "пароль успешно изменён", nil)
}

// GoogleAuth обрабатывает POST /api/auth/google-auth.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req service.FederatedLoginInput
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	res, err := h.auth.FederatedLogin(c.Request.Context(), req)
	if err != nil {
		common.Fail(c, err)
		return
	}

	h.respondSession(c, http.StatusOK, "вход через Google выполнен", res)
}

func (h *AuthHandler) respondSession(c *gin.Context, status int, message string, res *service.AuthResult) {
	h.cookie.setSessionCookie(c, res.Token, h.auth.SessionTTL())
	common.RespondSuccess(c, status, message, gin.H{
		"user":      res.Account,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}
