package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type ReferralHandler struct {
	referralService *service.ReferralService
}

func NewReferralHandler(referralService *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
	}
}

// Validate 校验推荐码
// POST /api/v1/referral/validate
func (h *ReferralHandler) Validate(c *gin.Context) {
	var req dto.ValidateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	agent, err := h.referralService.ValidateReferralCode(c.Request.Context(), req.Code, req.Email)
	if err != nil {
		referralError(c, err)
		return
	}

	response.Success(c, agent)
}

// referralError 推荐码校验失败的统一响应，注册流程也会用到
func referralError(c *gin.Context, err error) {
	var mismatch *service.DomainMismatchError
	switch {
	case errors.As(err, &mismatch):
		response.ErrorWithData(c, response.CodeDomainMismatch, service.ErrDomainMismatch.Error(), dto.DomainMismatchData{
			ExpectedDomain: mismatch.Expected,
			ReceivedDomain: mismatch.Received,
		})
	case errors.Is(err, service.ErrCodeNotFound):
		response.ReferralError(c, err.Error())
	case errors.Is(err, service.ErrMissingField), errors.Is(err, service.ErrInvalidEmail):
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
