package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type RevenueHandler struct {
	revenueService *service.RevenueService
}

func NewRevenueHandler(revenueService *service.RevenueService) *RevenueHandler {
	return &RevenueHandler{
		revenueService: revenueService,
	}
}

// Summary 全平台收入汇总
// GET /api/v1/admin/revenue/summary
func (h *RevenueHandler) Summary(c *gin.Context) {
	summary, err := h.revenueService.FleetSummary(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, summary)
}

// Subscriptions 订阅收入明细
// GET /api/v1/admin/revenue/subscriptions
func (h *RevenueHandler) Subscriptions(c *gin.Context) {
	page, pageSize := pageParams(c)

	items, total, err := h.revenueService.SubscriptionRevenue(c.Request.Context(), page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}
