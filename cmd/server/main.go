package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/giftshop-console/internal/api"
	"github.com/d60-Lab/giftshop-console/internal/api/handler"
	"github.com/d60-Lab/giftshop-console/internal/config"
	"github.com/d60-Lab/giftshop-console/internal/model"
	"github.com/d60-Lab/giftshop-console/internal/repository"
	"github.com/d60-Lab/giftshop-console/internal/service"
	"github.com/d60-Lab/giftshop-console/internal/session"
	"github.com/d60-Lab/giftshop-console/pkg/logger"
	"github.com/d60-Lab/giftshop-console/pkg/tracing"
)

// @title Giftshop Admin Console API
// @version 1.0
// @description 礼品店后台管理接口：订单列表/详情/状态变更与认证
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(os.Getenv("GIFTSHOP_CONFIG"))
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracer, err := tracing.Init(ctx, "giftshop-console", cfg.Otel.Endpoint)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}
	defer func() { _ = shutdownTracer(ctx) }()

	db, err := openDB(cfg)
	if err != nil {
		logger.Fatal("open database failed", zap.Error(err))
	}

	orderRepo := repository.NewGormOrderRepository(db)
	userRepo := repository.NewGormAdminUserRepository(db)
	if r, ok := orderRepo.(*repository.GormOrderRepository); ok {
		if err := r.InitSchema(); err != nil {
			logger.Fatal("migrate failed", zap.Error(err))
		}
	}
	if err := db.AutoMigrate(&model.AdminUser{}); err != nil {
		logger.Fatal("migrate admin users failed", zap.Error(err))
	}
	seedAdmin(ctx, userRepo)

	cache := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := cache.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, list cache and sessions degraded", zap.Error(err))
	}

	sessions := session.NewStore(cache, cfg.Auth.SessionTTL)
	roles := session.ContextRoleProvider{}

	orderSvc := service.NewOrderService(orderRepo, roles, cache, cfg.Cache.ListTTL)
	authSvc := service.NewAuthService(userRepo, sessions, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	h := handler.New(orderSvc, authSvc)
	router := api.NewRouter(h, authSvc, api.RouterOptions{
		Debug:      cfg.Server.Debug,
		LoginRate:  cfg.Auth.LoginRate,
		LoginBurst: cfg.Auth.LoginBurst,
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	_ = orderRepo.Close()
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	default:
		return gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	}
}

// seedAdmin 首次启动时创建默认超级管理员（密码通过环境变量下发）
func seedAdmin(ctx context.Context, users repository.AdminUserRepository) {
	email := os.Getenv("GIFTSHOP_SEED_ADMIN_EMAIL")
	password := os.Getenv("GIFTSHOP_SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("seed admin: hash password", zap.Error(err))
		return
	}
	user := &model.AdminUser{
		ID:       uuid.NewString(),
		Name:     "Root",
		Email:    email,
		Password: string(hash),
		Role:     session.RoleSuperAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		logger.Error("seed admin: create", zap.Error(err))
		return
	}
	logger.Info("seeded super admin", zap.String("email", email))
}
