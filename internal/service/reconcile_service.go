package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/internal/pkg/metrics"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

// CounterDrift 代理学员计数与实际学员数不一致的记录
type CounterDrift struct {
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Stored    int    `json:"stored"`
	Actual    int    `json:"actual"`
}

type ReconcileService struct {
	agentRepo *repository.AgentRepository
	userRepo  *repository.UserRepository
	log       *zap.Logger
}

func NewReconcileService(agentRepo *repository.AgentRepository, userRepo *repository.UserRepository, log *zap.Logger) *ReconcileService {
	return &ReconcileService{
		agentRepo: agentRepo,
		userRepo:  userRepo,
		log:       log,
	}
}

// ReconcileStudentCounts 按 users 表重新计算 total_students，apply 为 false 时只报告差异
func (s *ReconcileService) ReconcileStudentCounts(ctx context.Context, apply bool) ([]CounterDrift, error) {
	agents, err := s.agentRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.userRepo.StudentCounts(ctx)
	if err != nil {
		return nil, err
	}

	var drifts []CounterDrift
	for _, a := range agents {
		actual := counts[a.ID]
		if a.TotalStudents == actual {
			continue
		}
		drifts = append(drifts, CounterDrift{
			AgentID:   a.ID,
			AgentName: a.Name,
			Stored:    a.TotalStudents,
			Actual:    actual,
		})
	}

	if !apply {
		return drifts, nil
	}

	for _, d := range drifts {
		if err := s.agentRepo.UpdateFields(ctx, d.AgentID, map[string]interface{}{"total_students": d.Actual}); err != nil {
			return drifts, err
		}
		s.log.Info("student counter corrected",
			zap.Int64("agent_id", d.AgentID),
			zap.Int("stored", d.Stored),
			zap.Int("actual", d.Actual))
	}
	metrics.AddReconciled(len(drifts))

	return drifts, nil
}
