package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/api/middleware"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// Login 管理员登录
// POST /api/v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.adminService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AuthError(c, "用户名或密码错误")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// Logout 管理员退出
// POST /api/v1/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	token := c.GetHeader(middleware.AdminSessionHeader)
	if token == "" {
		response.AuthError(c, "")
		return
	}

	if err := h.adminService.Logout(c.Request.Context(), token); err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "已退出登录", nil)
}
