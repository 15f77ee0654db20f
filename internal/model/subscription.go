package model

import (
	"time"
)

type Subscription struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	UserID     int64   `gorm:"not null;index" json:"user_id"`
	Plan       string  `gorm:"size:20;not null" json:"plan"`
	Price      float64 `gorm:"type:decimal(10,2);not null" json:"price"` // 原价，折扣按需计算
	CouponCode *string `gorm:"size:50;index" json:"coupon_code,omitempty"`
	// 下单时实际享受的折扣百分比，为空时按优惠券当前状态计算
	AppliedDiscount *float64  `gorm:"type:decimal(5,2)" json:"applied_discount,omitempty"`
	StartedAt       time.Time `gorm:"not null" json:"started_at"`
	ExpiresAt       time.Time `gorm:"not null;index" json:"expires_at"`
	Status          string    `gorm:"size:20;default:active;index" json:"status"` // active, expired, cancelled
	CreatedAt       time.Time `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
