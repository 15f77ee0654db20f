package dto

// RegisterRequest 学员注册请求
type RegisterRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=32"`
	ReferralCode string `json:"referral_code,omitempty" binding:"omitempty,max=20"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID int64        `json:"user_id"`
	Agent  *AgentPublic `json:"agent,omitempty"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	IsBlocked bool         `json:"is_blocked"`
	AgentID   *int64       `json:"agent_id,omitempty"`
	Agent     *AgentPublic `json:"agent,omitempty"`
	CreatedAt string       `json:"created_at,omitempty"`
}

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse 管理员登录响应
type AdminLoginResponse struct {
	SessionToken string `json:"session_token"`
	ExpiresAt    string `json:"expires_at"`
}

// SetBlockedRequest 封禁/解封用户
type SetBlockedRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}
