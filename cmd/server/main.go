package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/api"
	"github.com/qs3c/edu_referral_server/internal/api/handler"
	"github.com/qs3c/edu_referral_server/internal/database"
	"github.com/qs3c/edu_referral_server/internal/pkg/cron"
	"github.com/qs3c/edu_referral_server/internal/pkg/logger"
	"github.com/qs3c/edu_referral_server/internal/pkg/queue"
	"github.com/qs3c/edu_referral_server/internal/pkg/session"
	"github.com/qs3c/edu_referral_server/internal/repository"
	"github.com/qs3c/edu_referral_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Server.Mode, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}
	zl.Info("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("failed to connect redis", zap.Error(err))
	}
	zl.Info("redis connected")

	// 初始化 Queue
	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)

	// 初始化 Repository
	agentRepo := repository.NewAgentRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	// 初始化 Service
	referralService := service.NewReferralService(agentRepo, userRepo, notifications, cfg, zl)
	authService := service.NewAuthService(db, userRepo, agentRepo, referralService, cfg, zl)
	userService := service.NewUserService(userRepo, zl)
	sessions := session.NewStore(rdb, time.Duration(cfg.Session.TTLHours)*time.Hour)
	adminService := service.NewAdminService(adminRepo, sessions, zl)
	couponService := service.NewCouponService(couponRepo, zl)
	subscriptionService := service.NewSubscriptionService(db, userRepo, couponRepo, subRepo, cfg, zl)
	revenueService := service.NewRevenueService(agentRepo, userRepo, subRepo, couponRepo)
	reconcileService := service.NewReconcileService(agentRepo, userRepo, zl)

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		if _, err := adminService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Password); err != nil {
			zl.Fatal("failed to ensure bootstrap admin", zap.Error(err))
		}
	}

	// 每日校正代理学员计数
	cronService := cron.NewService(reconcileService, zl)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewReferralHandler(referralService),
		handler.NewAgentHandler(referralService, revenueService),
		handler.NewAdminHandler(adminService),
		handler.NewCouponHandler(couponService, revenueService),
		handler.NewSubscriptionHandler(subscriptionService),
		handler.NewRevenueHandler(revenueService),
		handler.NewHealthHandler(db, rdb),
		adminService,
		cfg,
		zl,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router.Setup(),
	}

	go func() {
		zl.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zl.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	zl.Info("server stopped")
}
