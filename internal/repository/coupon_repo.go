package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *CouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Coupon{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// Redeem 在仍有效时占用一次使用次数，返回是否成功
func (r *CouponRepository) Redeem(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("code = ? AND status = ? AND used_count < max_uses", code, model.CouponStatusActive).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CouponRepository) UpdateStatus(ctx context.Context, code, status string) error {
	return r.db.WithContext(ctx).Model(&model.Coupon{}).Where("code = ?", code).Update("status", status).Error
}

// All 全量扫描
func (r *CouponRepository) All(ctx context.Context) ([]*model.Coupon, error) {
	var coupons []*model.Coupon
	err := r.db.WithContext(ctx).Order("id ASC").Find(&coupons).Error
	return coupons, err
}

func (r *CouponRepository) WithTx(tx *gorm.DB) *CouponRepository {
	return &CouponRepository{db: tx}
}
