package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 学员注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			response.DuplicateError(c, err.Error())
		default:
			referralError(c, err)
		}
		return
	}

	response.SuccessWithMessage(c, "注册成功", resp)
}

// Login 学员登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrUserBlocked):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
