package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/tastytrail-backend/internal/http/middleware"
)

// CookiePolicy описывает атрибуты сессионной cookie.
// Secure=true даёт SameSite=None; Secure для фронтенда на другом домене.
// Secure=false нужен только для локальной разработки по http: браузеры
// отвергают SameSite=None без Secure, поэтому используется Lax.
type CookiePolicy struct {
	Secure bool
}

func (p CookiePolicy) sameSite() http.SameSite {
	if p.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// setSessionCookie кладёт токен в HttpOnly cookie на время жизни сессии.
func (p CookiePolicy) setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}

// clearSessionCookie удаляет cookie с теми же атрибутами, с которыми она ставилась.
func (p CookiePolicy) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}
