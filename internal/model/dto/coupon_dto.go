package dto

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Code     string  `json:"code" binding:"required,max=50"`
	Discount float64 `json:"discount" binding:"gte=0,lte=100"`
	MaxUses  int     `json:"max_uses" binding:"required,min=1"`
}

// UpdateCouponStatusRequest 更新优惠券状态
type UpdateCouponStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive expired"`
}

// CouponUtilization 优惠券使用统计
type CouponUtilization struct {
	Code          string  `json:"code"`
	Discount      float64 `json:"discount"`
	Status        string  `json:"status"`
	MaxUses       int     `json:"max_uses"`
	UsedCount     int     `json:"used_count"`
	RemainingUses int     `json:"remaining_uses"`
	Effective     bool    `json:"effective"`
	Redemptions   int     `json:"redemptions"`
	TotalDiscount float64 `json:"total_discount"`
}
