package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/tastytrail-backend/internal/http/middleware"
	"github.com/ignatzorin/tastytrail-backend/internal/models"
	"github.com/ignatzorin/tastytrail-backend/internal/pkg/apperror"
)

func TestUserHandler_CurrentUser_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	handler := NewUserHandler(nil)
	r.GET("/api/user/current", handler.CurrentUser)

	req, _ := http.NewRequest("GET", "/api/user/current", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_CurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accountID := uuid.New()
	svc := &mockAuthService{}
	svc.On("CurrentAccount", mock.Anything, accountID).Return(&models.Account{ID: accountID, Email: "a@x.com"}, nil)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextAccountIDKey, accountID)
		c.Next()
	})
	r.GET("/api/user/current", NewUserHandler(svc).CurrentUser)

	req, _ := http.NewRequest("GET", "/api/user/current", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@x.com")
}

func TestUserHandler_CurrentUser_Deleted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accountID := uuid.New()
	svc := &mockAuthService{}
	svc.On("CurrentAccount", mock.Anything, accountID).Return(nil, apperror.ErrNotFound)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextAccountIDKey, accountID)
		c.Next()
	})
	r.GET("/api/user/current", NewUserHandler(svc).CurrentUser)

	req, _ := http.NewRequest("GET", "/api/user/current", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
