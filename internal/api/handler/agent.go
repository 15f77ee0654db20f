package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

type AgentHandler struct {
	referralService *service.ReferralService
	revenueService  *service.RevenueService
}

func NewAgentHandler(referralService *service.ReferralService, revenueService *service.RevenueService) *AgentHandler {
	return &AgentHandler{
		referralService: referralService,
		revenueService:  revenueService,
	}
}

// Create 创建代理
// POST /api/v1/admin/agents
func (h *AgentHandler) Create(c *gin.Context) {
	var req dto.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	agent, err := h.referralService.CreateAgent(c.Request.Context(), &req)
	if err != nil {
		agentError(c, err)
		return
	}

	response.SuccessWithMessage(c, "代理创建成功", agent)
}

// List 代理列表
// GET /api/v1/admin/agents
func (h *AgentHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	items, total, err := h.referralService.ListAgents(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 代理详情
// GET /api/v1/admin/agents/:id
func (h *AgentHandler) Get(c *gin.Context) {
	agentID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的代理ID")
		return
	}

	agent, err := h.referralService.GetAgent(c.Request.Context(), agentID)
	if err != nil {
		agentError(c, err)
		return
	}

	response.Success(c, agent)
}

// Update 更新代理
// PUT /api/v1/admin/agents/:id
func (h *AgentHandler) Update(c *gin.Context) {
	agentID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的代理ID")
		return
	}

	var req dto.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	agent, err := h.referralService.UpdateAgent(c.Request.Context(), agentID, &req)
	if err != nil {
		agentError(c, err)
		return
	}

	response.Success(c, agent)
}

// Delete 删除代理
// DELETE /api/v1/admin/agents/:id
func (h *AgentHandler) Delete(c *gin.Context) {
	agentID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的代理ID")
		return
	}

	if err := h.referralService.DeleteAgent(c.Request.Context(), agentID); err != nil {
		agentError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// RegenerateCode 重新生成推荐码
// POST /api/v1/admin/agents/:id/referral-code/regenerate
func (h *AgentHandler) RegenerateCode(c *gin.Context) {
	agentID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的代理ID")
		return
	}

	code, err := h.referralService.RegenerateReferralCode(c.Request.Context(), agentID)
	if err != nil {
		agentError(c, err)
		return
	}

	response.Success(c, dto.RegenerateReferralResponse{ReferralCode: code})
}

// ToggleCode 启用或停用推荐码
// PUT /api/v1/admin/agents/:id/referral-code/status
func (h *AgentHandler) ToggleCode(c *gin.Context) {
	agentID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的代理ID")
		return
	}

	var req dto.ToggleReferralCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.referralService.ToggleReferralCodeStatus(c.Request.Context(), agentID, *req.Active); err != nil {
		agentError(c, err)
		return
	}

	response.Success(c, gin.H{
		"referral_code_active": *req.Active,
	})
}

// Students 代理名下学员
// GET /api/v1/admin/agents/:id/students
func (h *AgentHandler) Students(c *gin.Context) {
	agentID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的代理ID")
		return
	}
	page, pageSize := pageParams(c)

	items, total, err := h.referralService.ListAgentStudents(c.Request.Context(), agentID, page, pageSize)
	if err != nil {
		agentError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Performance 代理业绩
// GET /api/v1/admin/agents/:id/performance
func (h *AgentHandler) Performance(c *gin.Context) {
	agentID, ok := idParam(c)
	if !ok {
		response.ParamError(c, "无效的代理ID")
		return
	}

	perf, err := h.revenueService.AgentPerformance(c.Request.Context(), agentID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	// 未知代理返回 found=false 的零值结果，而不是错误
	response.Success(c, perf)
}

func agentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidDomainFormat),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidCommissionRate):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateDomain),
		errors.Is(err, service.ErrAlreadyExists):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrAgentNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrAgentHasStudents):
		response.ConflictError(c, err.Error())
	case errors.Is(err, service.ErrCodeGenerationExhausted):
		response.ServerError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
