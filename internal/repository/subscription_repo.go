package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubscriptionRepository) ListByUserID(ctx context.Context, userID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&subs).Error
	return subs, err
}

// List 分页获取订阅
func (r *SubscriptionRepository) List(ctx context.Context, page, pageSize int) ([]*model.Subscription, int64, error) {
	var subs []*model.Subscription
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Subscription{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// All 全量扫描，供收入统计使用
func (r *SubscriptionRepository) All(ctx context.Context) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).Order("id ASC").Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}
