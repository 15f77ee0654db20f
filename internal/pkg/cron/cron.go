package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/internal/service"
)

// Reconciler 重新计算代理学员计数
type Reconciler interface {
	ReconcileStudentCounts(ctx context.Context, apply bool) ([]service.CounterDrift, error)
}

type Service struct {
	reconciler Reconciler
	log        *zap.Logger
	timeout    time.Duration
	stopChan   chan struct{}
	stopOnce   sync.Once
}

func NewService(reconciler Reconciler, log *zap.Logger) *Service {
	return &Service{
		reconciler: reconciler,
		log:        log,
		timeout:    5 * time.Minute,
		stopChan:   make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyReconcile()
	s.log.Info("cron service started (daily student counter reconcile)")
}

// Stop 停止定时任务，可重复调用
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.log.Info("cron service stopped")
	})
}

// runDailyReconcile 每天 UTC 零点校正一次
func (s *Service) runDailyReconcile() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.reconcile()
			timer.Reset(24 * time.Hour)
		}
	}
}

func (s *Service) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	drifts, err := s.reconciler.ReconcileStudentCounts(ctx, true)
	if err != nil {
		s.log.Error("student counter reconcile failed", zap.Error(err))
		return
	}
	s.log.Info("student counter reconcile completed", zap.Int("corrected", len(drifts)))
}

// RunNow 立即执行一次校正（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) ([]service.CounterDrift, error) {
	s.log.Info("manual student counter reconcile triggered")
	return s.reconciler.ReconcileStudentCounts(ctx, true)
}
