package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/api/middleware"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile 获取当前学员信息
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, profile)
}

// List 学员列表，可按 agent_id 过滤
// GET /api/v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	var agentID *int64
	if raw := c.Query("agent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.ParamError(c, "无效的代理ID")
			return
		}
		agentID = &id
	}

	items, total, err := h.userService.ListUsers(c.Request.Context(), page, pageSize, agentID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// SetBlocked 封禁或解封学员
// PUT /api/v1/admin/users/:id/block
func (h *UserHandler) SetBlocked(c *gin.Context) {
	userID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的用户ID")
		return
	}

	var req dto.SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.SetBlocked(c.Request.Context(), userID, *req.Blocked); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, nil)
}
