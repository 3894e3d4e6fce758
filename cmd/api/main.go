package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(cfg config.Config, logger *slog.Logger) error {
	//DB接続
	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DSN()); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	//カタログキャッシュ（REDIS_URLが無ければ使わない）
	var catalogCache repository.CatalogCache = cache.NoopCache{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", "error", err)
		} else {
			catalogCache = cache.NewRedisCache(client, cfg.CatalogCacheTTL)
			logger.Info("redis connected")
		}
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderDetailRepo := infraRepo.NewOrderDetailGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := auth.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	inputValidator := validator.NewAuthValidator()

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, inputValidator, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, inputValidator, hasher, issuer, clock)
	resetUC := auth.NewResetPasswordUsecase(userRepo, inputValidator, hasher)
	meUC := auth.NewMeUsecase(userRepo)

	productUC := usecase.NewProductUsecase(categoryRepo, productRepo, txm, catalogCache, logger)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txm, cartRepo, catalogCache, logger)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderDetailRepo)

	//Handler生成
	e := server.New(cfg, logger, userRepo, server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, resetUC, meUC),
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(checkoutUC, orderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
