package model

import (
	"time"
)

const (
	CouponStatusActive   = "active"
	CouponStatusInactive = "inactive"
	CouponStatusExpired  = "expired"
)

type Coupon struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Discount  float64   `gorm:"type:decimal(5,2);not null" json:"discount"` // percent
	MaxUses   int       `gorm:"not null" json:"max_uses"`
	UsedCount int       `gorm:"default:0" json:"used_count"`
	Status    string    `gorm:"size:20;default:active;index" json:"status"` // active, inactive, expired
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// Effective reports whether the coupon still grants its discount.
func (c *Coupon) Effective() bool {
	return c.Status == CouponStatusActive && c.UsedCount < c.MaxUses
}
