package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/api/middleware"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Create 购买订阅
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.CreateSubscription(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrUserBlocked):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrCouponNotApplicable):
			response.Error(c, response.CodeCouponRejected, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "订阅成功", sub)
}

// ListMine 我的订阅
// GET /api/v1/subscriptions
func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.subscriptionService.ListMySubscriptions(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"subscriptions": items,
	})
}
