package ledger

import (
	"github.com/qs3c/edu_referral_server/internal/model"
)

type Revenue struct {
	OriginalPrice      float64
	DiscountAmount     float64
	AmountPaid         float64
	CouponCode         string
	DiscountPercentage float64
}

// ComputeRevenue applies the subscription's coupon to its price. A discount
// recorded at redemption wins over the coupon's current state, so later usage
// or status changes never reprice an existing subscription.
// No rounding happens here; out-of-range coupon discounts propagate as stored.
func ComputeRevenue(sub *model.Subscription, coupons []*model.Coupon) Revenue {
	code := ""
	if sub.CouponCode != nil {
		code = *sub.CouponCode
	}

	var d Discount
	if code != "" && sub.AppliedDiscount != nil {
		d = Discount{Percentage: *sub.AppliedDiscount, NormalizedCode: code, Status: DiscountApplied}
	} else {
		d = ResolveDiscount(code, coupons)
	}
	discountAmount := sub.Price * d.Percentage / 100

	return Revenue{
		OriginalPrice:      sub.Price,
		DiscountAmount:     discountAmount,
		AmountPaid:         sub.Price - discountAmount,
		CouponCode:         d.NormalizedCode,
		DiscountPercentage: d.Percentage,
	}
}
