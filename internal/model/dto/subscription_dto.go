package dto

// CreateSubscriptionRequest 创建订阅请求
type CreateSubscriptionRequest struct {
	Plan       string `json:"plan" binding:"required,max=20"`
	CouponCode string `json:"coupon_code,omitempty" binding:"omitempty,max=50"`
}

// SubscriptionRevenue 单条订阅的收入明细
type SubscriptionRevenue struct {
	SubscriptionID     int64   `json:"subscription_id"`
	UserID             int64   `json:"user_id"`
	UserEmail          string  `json:"user_email,omitempty"`
	AgentID            *int64  `json:"agent_id,omitempty"`
	AgentName          string  `json:"agent_name,omitempty"`
	Plan               string  `json:"plan"`
	Status             string  `json:"status"`
	OriginalPrice      float64 `json:"original_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount"`
	AmountPaid         float64 `json:"amount_paid"`
	CouponCode         string  `json:"coupon_code"`
	StartedAt          string  `json:"started_at"`
	ExpiresAt          string  `json:"expires_at"`
}
