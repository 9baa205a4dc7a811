package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/tastytrail-backend/internal/pkg/apperror"
)

// Context ключи для gin.Context.
const (
	ContextAccountIDKey = "accountID"
	ContextRequestIDKey = "requestID"
)

// SessionCookieName имя cookie с сессионным токеном.
const SessionCookieName = "token"

// TokenParser проверяет сессионный токен и возвращает идентификатор аккаунта.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

// AuthMiddleware пропускает запрос только с валидным токеном из cookie или заголовка Authorization.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			_ = c.Error(apperror.ErrUnauthorized)
			c.Abort()
			return
		}

		accountID, err := tokens.Parse(raw)
		if err != nil || accountID == uuid.Nil {
			_ = c.Error(apperror.Wrap(err, apperror.ErrCodeUnauthorized, "токен невалиден"))
			c.Abort()
			return
		}

		c.Set(ContextAccountIDKey, accountID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
