package dto

// AgentPerformance 代理业绩
type AgentPerformance struct {
	AgentID              int64   `json:"agent_id"`
	AgentName            string  `json:"agent_name,omitempty"`
	Found                bool    `json:"found"`
	CommissionRate       float64 `json:"commission_rate"`
	TotalRevenue         float64 `json:"total_revenue"`
	TotalOriginalRevenue float64 `json:"total_original_revenue"`
	CommissionPaid       float64 `json:"commission_paid"`
	UserCount            int     `json:"user_count"`
	DistinctUsers        int     `json:"distinct_users"`
}

// FleetSummary 全平台收入汇总
type FleetSummary struct {
	TotalRevenue         float64             `json:"total_revenue"`
	TotalOriginalRevenue float64             `json:"total_original_revenue"`
	TotalDiscount        float64             `json:"total_discount"`
	TotalCommission      float64             `json:"total_commission"`
	SubscriptionCount    int                 `json:"subscription_count"`
	UnattributedRevenue  float64             `json:"unattributed_revenue"`
	Agents               []*AgentPerformance `json:"agents"`
}
