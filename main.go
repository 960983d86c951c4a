package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"restaurant-api/auth"
	"restaurant-api/cache"
	"restaurant-api/config"
	"restaurant-api/logger"
	"restaurant-api/repository"
	"restaurant-api/routes"
	"restaurant-api/seed"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := config.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	zlog.Info("database connected and migrated", zap.String("driver", cfg.DBDriver))

	if err := seed.Run(ctx, db, seed.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}, zlog); err != nil {
		return err
	}

	deps := routes.Deps{
		Log:      zlog,
		Tokens:   auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL),
		Users:    repository.NewUserRepository(db),
		Roles:    repository.NewRoleRepository(db),
		Products: repository.NewProductRepository(db),
		Orders:   repository.NewOrderRepository(db),
	}
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Cache = cache.NewRedisCache(client)
		zlog.Info("idempotency cache enabled", zap.String("redis", cfg.RedisAddr))
	}

	// CORS for frontend integration
	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposedHeaders: []string{"Link"},
	}).Handler(routes.NewRouter(deps))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
