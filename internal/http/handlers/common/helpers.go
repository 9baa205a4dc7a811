package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/tastytrail-backend/internal/http/middleware"
	"github.com/ignatzorin/tastytrail-backend/internal/pkg/apperror"
)

// ErrAccountNotInContext возвращается, если маршрут не защищён AuthMiddleware.
var ErrAccountNotInContext = errors.New("аккаунт не найден в контексте")

// CurrentAccountID извлекает идентификатор аккаунта, положенный AuthMiddleware.
func CurrentAccountID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextAccountIDKey)
	if !exists {
		return uuid.Nil, ErrAccountNotInContext
	}

	accountID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrAccountNotInContext
	}

	return accountID, nil
}

// BindJSON разбирает тело запроса. Битый JSON превращается в VALIDATION_ERROR.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса")
	}
	return nil
}

// RespondSuccess отправляет ответ вида {success: true, message, ...payload}.
func RespondSuccess(c *gin.Context, statusCode int, message string, payload gin.H) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

// Fail передаёт ошибку в ErrorHandler и прерывает цепочку.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
