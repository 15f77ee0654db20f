package service

import (
	"context"

	"github.com/qs3c/edu_referral_server/internal/ledger"
	"github.com/qs3c/edu_referral_server/internal/model"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

type RevenueService struct {
	agentRepo  *repository.AgentRepository
	userRepo   *repository.UserRepository
	subRepo    *repository.SubscriptionRepository
	couponRepo *repository.CouponRepository
}

func NewRevenueService(
	agentRepo *repository.AgentRepository,
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	couponRepo *repository.CouponRepository,
) *RevenueService {
	return &RevenueService{
		agentRepo:  agentRepo,
		userRepo:   userRepo,
		subRepo:    subRepo,
		couponRepo: couponRepo,
	}
}

type snapshot struct {
	agents  []*model.Agent
	users   []*model.User
	subs    []*model.Subscription
	coupons []*model.Coupon
}

func (s *RevenueService) load(ctx context.Context) (*snapshot, error) {
	var (
		snap snapshot
		err  error
	)
	if snap.agents, err = s.agentRepo.All(ctx); err != nil {
		return nil, err
	}
	if snap.users, err = s.userRepo.All(ctx); err != nil {
		return nil, err
	}
	if snap.subs, err = s.subRepo.All(ctx); err != nil {
		return nil, err
	}
	if snap.coupons, err = s.couponRepo.All(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

// AgentPerformance 代理业绩，代理不存在时返回 found=false 的零值结果
func (s *RevenueService) AgentPerformance(ctx context.Context, agentID int64) (*dto.AgentPerformance, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	res := ledger.ComputePerformance(agentID, snap.agents, snap.users, snap.subs, snap.coupons)
	return toAgentPerformance(res), nil
}

// FleetSummary 全平台收入和佣金汇总
func (s *RevenueService) FleetSummary(ctx context.Context) (*dto.FleetSummary, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	fleet := ledger.ComputeFleet(snap.agents, snap.users, snap.subs, snap.coupons)

	summary := &dto.FleetSummary{
		TotalRevenue:         fleet.TotalRevenue,
		TotalOriginalRevenue: fleet.TotalOriginalRevenue,
		TotalDiscount:        fleet.TotalDiscount,
		TotalCommission:      fleet.TotalCommission,
		SubscriptionCount:    fleet.SubscriptionCount,
		UnattributedRevenue:  fleet.UnattributedRevenue,
		Agents:               make([]*dto.AgentPerformance, 0, len(fleet.Agents)),
	}
	for _, r := range fleet.Agents {
		summary.Agents = append(summary.Agents, toAgentPerformance(r))
	}
	return summary, nil
}

// SubscriptionRevenue 分页获取订阅收入明细
func (s *RevenueService) SubscriptionRevenue(ctx context.Context, page, pageSize int) ([]*dto.SubscriptionRevenue, int64, error) {
	subs, total, err := s.subRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.userRepo.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	agents, err := s.agentRepo.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	coupons, err := s.couponRepo.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	userByID := make(map[int64]*model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	agentByID := make(map[int64]*model.Agent, len(agents))
	for _, a := range agents {
		agentByID[a.ID] = a
	}

	items := make([]*dto.SubscriptionRevenue, 0, len(subs))
	for _, sub := range subs {
		user := userByID[sub.UserID]
		var agent *model.Agent
		if user != nil && user.AgentID != nil {
			agent = agentByID[*user.AgentID]
		}
		items = append(items, toSubscriptionRevenue(sub, ledger.ComputeRevenue(sub, coupons), user, agent))
	}
	return items, total, nil
}

// CouponUtilization 优惠券使用统计
func (s *RevenueService) CouponUtilization(ctx context.Context) ([]*dto.CouponUtilization, error) {
	subs, err := s.subRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	coupons, err := s.couponRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	usage := ledger.ComputeCouponUtilization(subs, coupons)
	items := make([]*dto.CouponUtilization, 0, len(usage))
	for _, u := range usage {
		items = append(items, &dto.CouponUtilization{
			Code:          u.Code,
			Discount:      u.Discount,
			Status:        u.Status,
			MaxUses:       u.MaxUses,
			UsedCount:     u.UsedCount,
			RemainingUses: u.RemainingUses,
			Effective:     u.Effective,
			Redemptions:   u.Redemptions,
			TotalDiscount: u.TotalDiscount,
		})
	}
	return items, nil
}

func toAgentPerformance(r ledger.Result) *dto.AgentPerformance {
	return &dto.AgentPerformance{
		AgentID:              r.AgentID,
		AgentName:            r.AgentName,
		Found:                r.Found,
		CommissionRate:       r.CommissionRate,
		TotalRevenue:         r.TotalRevenue,
		TotalOriginalRevenue: r.TotalOriginalRevenue,
		CommissionPaid:       r.CommissionPaid,
		UserCount:            r.UserCount,
		DistinctUsers:        r.DistinctUsers,
	}
}
