package dto

// CreateAgentRequest 创建代理请求
type CreateAgentRequest struct {
	Name           string   `json:"name"`
	AuthorityName  string   `json:"authority_name,omitempty" binding:"omitempty,max=200"`
	Email          string   `json:"email"`
	EmailDomain    string   `json:"email_domain"`
	CommissionRate *float64 `json:"commission_rate,omitempty"`
}

// UpdateAgentRequest 更新代理请求
type UpdateAgentRequest struct {
	Name           *string  `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	AuthorityName  *string  `json:"authority_name,omitempty" binding:"omitempty,max=200"`
	Email          *string  `json:"email,omitempty" binding:"omitempty,email"`
	EmailDomain    *string  `json:"email_domain,omitempty"`
	CommissionRate *float64 `json:"commission_rate,omitempty"`
	ReferralActive *bool    `json:"referral_code_active,omitempty"`
}

// ToggleReferralCodeRequest 启用/停用推荐码
type ToggleReferralCodeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ValidateReferralRequest 推荐码校验请求
type ValidateReferralRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// RegenerateReferralResponse 重新生成推荐码响应
type RegenerateReferralResponse struct {
	ReferralCode string `json:"referral_code"`
}

// AgentPublic 推荐码校验通过后返回的代理公开信息
type AgentPublic struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	AuthorityName  string  `json:"authority_name"`
	EmailDomain    string  `json:"email_domain"`
	CommissionRate float64 `json:"commission_rate"`
}

// AgentDetail 管理后台代理详情
type AgentDetail struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	AuthorityName      string  `json:"authority_name"`
	Email              string  `json:"email"`
	EmailDomain        string  `json:"email_domain"`
	ReferralCode       string  `json:"referral_code"`
	ReferralCodeActive bool    `json:"referral_code_active"`
	CommissionRate     float64 `json:"commission_rate"`
	TotalStudents      int     `json:"total_students"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// DomainMismatchData 域名不匹配时附带的数据
type DomainMismatchData struct {
	ExpectedDomain string `json:"expected_domain"`
	ReceivedDomain string `json:"received_domain"`
}
