package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

var (
	ErrCouponExists        = errors.New("优惠券代码已存在")
	ErrCouponNotFound      = errors.New("优惠券不存在")
	ErrCouponNotApplicable = errors.New("优惠券已失效或已用完")
	ErrInvalidCoupon       = errors.New("优惠券参数无效")
)

var couponStatuses = map[string]bool{
	model.CouponStatusActive:   true,
	model.CouponStatusInactive: true,
	model.CouponStatusExpired:  true,
}

type CouponService struct {
	couponRepo *repository.CouponRepository
	log        *zap.Logger
}

func NewCouponService(couponRepo *repository.CouponRepository, log *zap.Logger) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		log:        log,
	}
}

// CreateCoupon 创建优惠券
func (s *CouponService) CreateCoupon(ctx context.Context, req *dto.CreateCouponRequest) (*model.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" || req.Discount < 0 || req.Discount > 100 || req.MaxUses < 1 {
		return nil, ErrInvalidCoupon
	}

	exists, err := s.couponRepo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCouponExists
	}

	coupon := &model.Coupon{
		Code:     code,
		Discount: req.Discount,
		MaxUses:  req.MaxUses,
		Status:   model.CouponStatusActive,
	}
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponExists
		}
		return nil, err
	}

	s.log.Info("coupon created", zap.String("code", code), zap.Float64("discount", req.Discount))
	return coupon, nil
}

// ListCoupons 获取全部优惠券
func (s *CouponService) ListCoupons(ctx context.Context) ([]*model.Coupon, error) {
	return s.couponRepo.All(ctx)
}

// UpdateCouponStatus 更新优惠券状态
func (s *CouponService) UpdateCouponStatus(ctx context.Context, code, status string) error {
	if !couponStatuses[status] {
		return ErrInvalidCoupon
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if _, err := s.couponRepo.GetByCode(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return err
	}

	return s.couponRepo.UpdateStatus(ctx, code, status)
}
