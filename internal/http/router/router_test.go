package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/tastytrail-backend/internal/config"
	"github.com/ignatzorin/tastytrail-backend/internal/http/handlers"
	"github.com/ignatzorin/tastytrail-backend/internal/http/middleware"
	"github.com/ignatzorin/tastytrail-backend/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{"http://localhost:5173"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := middleware.NewRateLimitStore(nil)
	require.NoError(t, err)

	tokens := service.NewTokenManager("router-test-secret", time.Hour)
	auth := service.NewAuthService(nil, service.NewPasswordHasher(bcrypt.MinCost), tokens, service.NewOtpEngine(), nil, time.Second)

	ok := handlers.PingerFunc(func(context.Context) error { return nil })

	return SetupRouter(testConfig(), Deps{
		AuthHandler:    handlers.NewAuthHandler(auth, handlers.CookiePolicy{Secure: true}),
		UserHandler:    handlers.NewUserHandler(auth),
		HealthHandler:  handlers.NewHealthHandler(map[string]handlers.Pinger{"store": ok}),
		Tokens:         tokens,
		RateLimitStore: store,
	})
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/", "/health", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_CurrentUserRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/current", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ValidationBeforeStore(t *testing.T) {
	r := newTestRouter(t)

	// Хранилище не передано: запрос обязан отсечься валидацией раньше обращения к нему.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"fullName":"Анна","email":"a@x.com","password":"secret1","mobile":"12345","role":"user"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRouter_Logout(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
