package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/tastytrail-backend/internal/config"
	"github.com/ignatzorin/tastytrail-backend/internal/db"
	"github.com/ignatzorin/tastytrail-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/tastytrail-backend/internal/http/handlers"
	"github.com/ignatzorin/tastytrail-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/tastytrail-backend/internal/http/router"
	"github.com/ignatzorin/tastytrail-backend/internal/logger"
	"github.com/ignatzorin/tastytrail-backend/internal/notification"
	"github.com/ignatzorin/tastytrail-backend/internal/repository"
	"github.com/ignatzorin/tastytrail-backend/internal/service"
)

// accountStore хранилище аккаунтов вместе с проверкой доступности.
type accountStore interface {
	service.AccountRepository
	httpHandlers.Pinger
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}
	logEntry := logger.Log.WithField("component", "main")

	// Хранилище аккаунтов.
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logEntry.WithError(err).Fatal("не удалось подготовить хранилище")
	}
	defer closeStore()

	healthChecks := map[string]httpHandlers.Pinger{"store": store}

	// Redis нужен только для общего между инстансами rate limit.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logEntry.WithError(err).Fatal("некорректный REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logEntry.WithError(err).Warn("ошибка закрытия redis")
			}
		}()
		healthChecks["redis"] = httpHandlers.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	rateLimitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		logEntry.WithError(err).Fatal("не удалось создать хранилище rate limit")
	}

	// Фоновая отправка писем.
	mailLog := logger.Log.WithField("component", "mail")
	dispatcher := notification.NewDispatcher(
		notification.NewSMTPSender(cfg.SMTP, mailLog),
		notification.DispatcherConfig{
			Workers:     cfg.SMTP.Workers,
			QueueSize:   cfg.SMTP.QueueSize,
			SendTimeout: cfg.SMTP.Timeout,
		},
		mailLog,
	)
	dispatcher.Start(ctx)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(
		store,
		service.NewPasswordHasher(cfg.BcryptCost),
		tokenManager,
		service.NewOtpEngine(),
		dispatcher,
		cfg.RequestTimeout,
	)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Deps{
		AuthHandler:    httpHandlers.NewAuthHandler(authService, httpHandlers.CookiePolicy{Secure: cfg.CookieSecure}),
		UserHandler:    httpHandlers.NewUserHandler(authService),
		HealthHandler:  httpHandlers.NewHealthHandler(healthChecks),
		Tokens:         tokenManager,
		RateLimitStore: rateLimitStore,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	shutdownDone := make(chan struct{})
	goroutine.SafeGoWithContext(ctx, "shutdown", func(ctx context.Context) {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logEntry.WithError(err).Error("ошибка остановки http сервера")
		}
		if err := dispatcher.Stop(shutdownCtx); err != nil {
			logEntry.WithError(err).Warn("не все письма успели уйти до остановки")
		}
	})

	logEntry.WithFields(logrus.Fields{
		"port":  cfg.HTTPPort,
		"store": cfg.StoreDriver,
		"env":   cfg.Env,
	}).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logEntry.WithError(err).Fatal("сервер завершился с ошибкой")
	}

	<-shutdownDone
}

// openStore подключает выбранное хранилище и возвращает функцию закрытия.
func openStore(ctx context.Context, cfg *config.Config) (accountStore, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := db.NewMongo(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewAccountMongoRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(connectCtx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repo, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Log.WithError(err).Warn("main: ошибка отключения от mongo")
			}
		}, nil

	default:
		conn, err := db.NewPostgres(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(connectCtx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return repository.NewAccountRepository(conn), func() {
			if err := conn.Close(); err != nil {
				logger.Log.WithError(err).Warn("main: ошибка закрытия базы")
			}
		}, nil
	}
}
