package ledger

import (
	"github.com/qs3c/edu_referral_server/internal/model"
)

type Performance struct {
	TotalRevenue         float64
	TotalOriginalRevenue float64
	CommissionPaid       float64
	// UserCount counts matched subscriptions, so a student with two
	// subscriptions contributes two. DistinctUsers counts students.
	UserCount     int
	DistinctUsers int
}

// Result is Found=false with zeroed totals when the agent id is unknown.
type Result struct {
	AgentID        int64
	AgentName      string
	CommissionRate float64
	Found          bool
	Performance
}

// ComputePerformance aggregates revenue and commission over every subscription
// whose owner was referred by agentID.
func ComputePerformance(agentID int64, agents []*model.Agent, users []*model.User,
	subscriptions []*model.Subscription, coupons []*model.Coupon) Result {

	agent := findAgent(agentID, agents)
	if agent == nil {
		return Result{AgentID: agentID}
	}

	owners := make(map[int64]bool)
	for _, u := range users {
		if u.AgentID != nil && *u.AgentID == agentID {
			owners[u.ID] = true
		}
	}

	res := Result{
		AgentID:        agent.ID,
		AgentName:      agent.Name,
		CommissionRate: agent.CommissionRate,
		Found:          true,
	}

	seen := make(map[int64]bool)
	for _, sub := range subscriptions {
		if !owners[sub.UserID] {
			continue
		}
		rev := ComputeRevenue(sub, coupons)
		res.TotalRevenue += rev.AmountPaid
		res.TotalOriginalRevenue += rev.OriginalPrice
		res.UserCount++
		if !seen[sub.UserID] {
			seen[sub.UserID] = true
			res.DistinctUsers++
		}
	}

	res.CommissionPaid = commission(res.TotalRevenue, agent.CommissionRate)
	return res
}

func commission(revenue, rate float64) float64 {
	if rate == 0 {
		return 0
	}
	return revenue * (rate / 100)
}

func findAgent(id int64, agents []*model.Agent) *model.Agent {
	for _, a := range agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}
