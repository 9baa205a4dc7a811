package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/tastytrail-backend/internal/http/handlers/common"
	"github.com/ignatzorin/tastytrail-backend/internal/models"
	"github.com/ignatzorin/tastytrail-backend/internal/pkg/apperror"
)

// AccountReader отдаёт аккаунт по идентификатору из токена.
type AccountReader interface {
	CurrentAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
}

// UserHandler обслуживает маршруты /api/user.
type UserHandler struct {
	accounts AccountReader
}

// NewUserHandler создаёт хэндлер.
func NewUserHandler(accounts AccountReader) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// CurrentUser обрабатывает GET /api/user/current.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	accountID, err := common.CurrentAccountID(c)
	if err != nil {
		common.Fail(c, apperror.ErrUnauthorized)
		return
	}

	account, err := h.accounts.CurrentAccount(c.Request.Context(), accountID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "пользователь найден", gin.H{"user": account})
}
