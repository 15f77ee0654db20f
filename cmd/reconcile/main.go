package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/database"
	"github.com/qs3c/edu_referral_server/internal/pkg/logger"
	"github.com/qs3c/edu_referral_server/internal/repository"
	"github.com/qs3c/edu_referral_server/internal/service"
)

var (
	apply   = flag.Bool("apply", false, "Write corrected total_students back to the agents table")
	timeout = flag.Duration("timeout", 5*time.Minute, "Abort if reconciliation takes longer than this")
)

func main() {
	flag.Parse()

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

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}

	reconciler := service.NewReconcileService(
		repository.NewAgentRepository(db),
		repository.NewUserRepository(db),
		zl,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	drifts, err := reconciler.ReconcileStudentCounts(ctx, *apply)
	if err != nil {
		zl.Fatal("reconcile failed", zap.Error(err))
	}

	// 输出统计
	log.Println(strings.Repeat("=", 60))
	log.Println("Student Counter Reconcile")
	log.Println(strings.Repeat("=", 60))
	for _, d := range drifts {
		log.Printf("  - agent %d (%s): stored=%d actual=%d", d.AgentID, d.AgentName, d.Stored, d.Actual)
	}
	log.Printf("Agents with drift: %d", len(drifts))
	if !*apply {
		log.Println("DRY RUN MODE - nothing was written")
		log.Println("   Run with -apply to write corrected counters")
	} else {
		log.Println("Reconcile completed")
	}
	log.Println(strings.Repeat("=", 60))
}
