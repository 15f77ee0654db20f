package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type CouponHandler struct {
	couponService  *service.CouponService
	revenueService *service.RevenueService
}

func NewCouponHandler(couponService *service.CouponService, revenueService *service.RevenueService) *CouponHandler {
	return &CouponHandler{
		couponService:  couponService,
		revenueService: revenueService,
	}
}

// Create 创建优惠券
// POST /api/v1/admin/coupons
func (h *CouponHandler) Create(c *gin.Context) {
	var req dto.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoupon):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrCouponExists):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "优惠券创建成功", coupon)
}

// List 优惠券列表
// GET /api/v1/admin/coupons
func (h *CouponHandler) List(c *gin.Context) {
	coupons, err := h.couponService.ListCoupons(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"coupons": coupons,
	})
}

// UpdateStatus 更新优惠券状态
// PUT /api/v1/admin/coupons/:code/status
func (h *CouponHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateCouponStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.couponService.UpdateCouponStatus(c.Request.Context(), c.Param("code"), req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoupon):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrCouponNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, nil)
}

// Utilization 优惠券使用统计
// GET /api/v1/admin/coupons/utilization
func (h *CouponHandler) Utilization(c *gin.Context) {
	items, err := h.revenueService.CouponUtilization(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"coupons": items,
	})
}
