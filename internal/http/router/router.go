package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/tastytrail-backend/internal/config"
	"github.com/ignatzorin/tastytrail-backend/internal/http/handlers"
	"github.com/ignatzorin/tastytrail-backend/internal/http/middleware"
	"github.com/ignatzorin/tastytrail-backend/internal/metrics"
)

// Deps зависимости HTTP-слоя.
type Deps struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	HealthHandler  *handlers.HealthHandler
	Tokens         middleware.TokenParser
	RateLimitStore limiter.Store
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/", deps.HealthHandler.Root)
	r.GET("/health", deps.HealthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(deps.RateLimitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", deps.AuthHandler.Register)
		authGroup.POST("/login", deps.AuthHandler.Login)
		authGroup.POST("/logout", deps.AuthHandler.Logout)
		authGroup.POST("/send-reset-otp", deps.AuthHandler.SendResetOtp)
		authGroup.POST("/verify-reset-otp", deps.AuthHandler.VerifyResetOtp)
		authGroup.POST("/reset-password", deps.AuthHandler.ResetPassword)
		authGroup.POST("/google-auth", deps.AuthHandler.GoogleAuth)
	}

	userGroup := api.Group("/user")
	userGroup.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		userGroup.GET("/current", deps.UserHandler.CurrentUser)
	}

	return r
}
