// Package ledger computes coupon-adjusted revenue and agent commission from
// snapshots of agents, users, subscriptions and coupons. Every function here is
// pure: no storage access, no counters, identical input gives identical output.
package ledger

import (
	"github.com/qs3c/edu_referral_server/internal/model"
)

const (
	NoCoupon       = "N/A"
	inactiveSuffix = " (Inactive/Used)"
)

// DiscountStatus tells "no coupon" apart from "coupon given but not honoured".
type DiscountStatus string

const (
	DiscountNone     DiscountStatus = "none"
	DiscountApplied  DiscountStatus = "applied"
	DiscountInactive DiscountStatus = "inactive"
)

type Discount struct {
	Percentage     float64
	NormalizedCode string
	Status         DiscountStatus
}

// ResolveDiscount finds the effective coupon for code. It never touches
// UsedCount; redemption is the subscription service's job.
func ResolveDiscount(code string, coupons []*model.Coupon) Discount {
	if code == "" {
		return Discount{Percentage: 0, NormalizedCode: NoCoupon, Status: DiscountNone}
	}

	for _, c := range coupons {
		if c.Code == code && c.Effective() {
			return Discount{Percentage: c.Discount, NormalizedCode: c.Code, Status: DiscountApplied}
		}
	}

	return Discount{Percentage: 0, NormalizedCode: code + inactiveSuffix, Status: DiscountInactive}
}
