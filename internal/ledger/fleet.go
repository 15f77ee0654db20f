package ledger

import (
	"github.com/qs3c/edu_referral_server/internal/model"
)

type Fleet struct {
	TotalRevenue         float64
	TotalOriginalRevenue float64
	TotalDiscount        float64
	TotalCommission      float64
	SubscriptionCount    int
	// UnattributedRevenue is paid revenue from students without an agent.
	UnattributedRevenue float64
	Agents              []Result
}

// ComputeFleet produces one Result per agent, in the order given, plus
// platform-wide totals over every subscription.
func ComputeFleet(agents []*model.Agent, users []*model.User,
	subscriptions []*model.Subscription, coupons []*model.Coupon) Fleet {

	var fleet Fleet
	for _, a := range agents {
		r := ComputePerformance(a.ID, agents, users, subscriptions, coupons)
		fleet.TotalCommission += r.CommissionPaid
		fleet.Agents = append(fleet.Agents, r)
	}

	owner := make(map[int64]*int64, len(users))
	for _, u := range users {
		owner[u.ID] = u.AgentID
	}

	for _, sub := range subscriptions {
		rev := ComputeRevenue(sub, coupons)
		fleet.TotalRevenue += rev.AmountPaid
		fleet.TotalOriginalRevenue += rev.OriginalPrice
		fleet.TotalDiscount += rev.DiscountAmount
		fleet.SubscriptionCount++
		if owner[sub.UserID] == nil {
			fleet.UnattributedRevenue += rev.AmountPaid
		}
	}

	return fleet
}

type CouponUsage struct {
	Code          string
	Discount      float64
	Status        string
	MaxUses       int
	UsedCount     int
	RemainingUses int
	Effective     bool
	Redemptions   int
	TotalDiscount float64
}

// ComputeCouponUtilization reports, per coupon, how many subscriptions carry its
// code and how much discount those subscriptions currently resolve to.
func ComputeCouponUtilization(subscriptions []*model.Subscription, coupons []*model.Coupon) []CouponUsage {
	usage := make([]CouponUsage, len(coupons))
	index := make(map[string]int, len(coupons))
	for i, c := range coupons {
		remaining := c.MaxUses - c.UsedCount
		if remaining < 0 {
			remaining = 0
		}
		usage[i] = CouponUsage{
			Code:          c.Code,
			Discount:      c.Discount,
			Status:        c.Status,
			MaxUses:       c.MaxUses,
			UsedCount:     c.UsedCount,
			RemainingUses: remaining,
			Effective:     c.Effective(),
		}
		index[c.Code] = i
	}

	for _, sub := range subscriptions {
		if sub.CouponCode == nil {
			continue
		}
		i, ok := index[*sub.CouponCode]
		if !ok {
			continue
		}
		usage[i].Redemptions++
		usage[i].TotalDiscount += ComputeRevenue(sub, coupons).DiscountAmount
	}

	return usage
}
