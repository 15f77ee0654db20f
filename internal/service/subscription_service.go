package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/ledger"
	"github.com/qs3c/edu_referral_server/internal/model"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

var ErrPlanNotFound = errors.New("订阅套餐不存在")

const subscriptionStatusActive = "active"

type SubscriptionService struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	couponRepo *repository.CouponRepository
	subRepo    *repository.SubscriptionRepository
	cfg        *config.Config
	log        *zap.Logger
}

func NewSubscriptionService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	couponRepo *repository.CouponRepository,
	subRepo *repository.SubscriptionRepository,
	cfg *config.Config,
	log *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		db:         db,
		userRepo:   userRepo,
		couponRepo: couponRepo,
		subRepo:    subRepo,
		cfg:        cfg,
		log:        log,
	}
}

// CreateSubscription 创建订阅，使用优惠券时在同一事务内占用一次次数
func (s *SubscriptionService) CreateSubscription(ctx context.Context, userID int64, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionRevenue, error) {
	plan, ok := s.cfg.Plan(req.Plan)
	if !ok {
		return nil, ErrPlanNotFound
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsBlocked {
		return nil, ErrUserBlocked
	}

	now := time.Now()
	sub := &model.Subscription{
		UserID:    userID,
		Plan:      req.Plan,
		Price:     plan.Price,
		StartedAt: now,
		ExpiresAt: now.AddDate(0, 0, plan.DurationDays),
		Status:    subscriptionStatusActive,
	}
	code := strings.ToUpper(strings.TrimSpace(req.CouponCode))
	if code != "" {
		sub.CouponCode = &code
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if code != "" {
			redeemed, err := s.couponRepo.WithTx(tx).Redeem(ctx, code)
			if err != nil {
				return err
			}
			if !redeemed {
				return ErrCouponNotApplicable
			}
			coupon, err := s.couponRepo.WithTx(tx).GetByCode(ctx, code)
			if err != nil {
				return err
			}
			discount := coupon.Discount
			sub.AppliedDiscount = &discount
		}
		return s.subRepo.WithTx(tx).Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	coupons, err := s.couponRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Info("subscription created",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("user_id", userID),
		zap.String("plan", req.Plan),
		zap.String("coupon", code))

	return toSubscriptionRevenue(sub, ledger.ComputeRevenue(sub, coupons), user, nil), nil
}

// ListMySubscriptions 获取学员自己的订阅及实付金额
func (s *SubscriptionService) ListMySubscriptions(ctx context.Context, userID int64) ([]*dto.SubscriptionRevenue, error) {
	subs, err := s.subRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	coupons, err := s.couponRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SubscriptionRevenue, 0, len(subs))
	for _, sub := range subs {
		items = append(items, toSubscriptionRevenue(sub, ledger.ComputeRevenue(sub, coupons), nil, nil))
	}
	return items, nil
}

func toSubscriptionRevenue(sub *model.Subscription, rev ledger.Revenue, user *model.User, agent *model.Agent) *dto.SubscriptionRevenue {
	row := &dto.SubscriptionRevenue{
		SubscriptionID:     sub.ID,
		UserID:             sub.UserID,
		Plan:               sub.Plan,
		Status:             sub.Status,
		OriginalPrice:      rev.OriginalPrice,
		DiscountPercentage: rev.DiscountPercentage,
		DiscountAmount:     rev.DiscountAmount,
		AmountPaid:         rev.AmountPaid,
		CouponCode:         rev.CouponCode,
		StartedAt:          sub.StartedAt.Format(time.RFC3339),
		ExpiresAt:          sub.ExpiresAt.Format(time.RFC3339),
	}
	if user != nil {
		row.UserEmail = user.Email
		row.AgentID = user.AgentID
	}
	if agent != nil {
		row.AgentName = agent.Name
	}
	return row
}
