package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/database"
	"github.com/qs3c/edu_referral_server/internal/pkg/email"
	"github.com/qs3c/edu_referral_server/internal/pkg/logger"
	"github.com/qs3c/edu_referral_server/internal/pkg/queue"
	"github.com/qs3c/edu_referral_server/internal/worker"
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

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("failed to connect redis", zap.Error(err))
	}
	zl.Info("redis connected")

	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	dispatcher := worker.NewDispatcher(
		notifications,
		email.NewService(&cfg.Email),
		time.Duration(cfg.Queue.PopTimeoutSeconds)*time.Second,
		cfg.Queue.MaxAttempts,
		zl,
	)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		zl.Info("received shutdown signal")
		cancel()
	}()

	workers := cfg.Queue.Workers
	if workers <= 0 {
		workers = 1
	}
	zl.Info("worker started", zap.Int("workers", workers), zap.String("queue", cfg.Queue.NotificationQueue))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			dispatcher.Run(ctx, workerID)
		}(i)
	}

	wg.Wait()
	zl.Info("worker shutdown complete")
}
