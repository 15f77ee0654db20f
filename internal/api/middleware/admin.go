package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/service"
)

const (
	AdminIDKey         = "adminID"
	AdminSessionHeader = "X-Admin-Session"
)

// SessionAuthenticator 校验管理员会话
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// AdminSession 管理员会话中间件，会话保存在 Redis，过期即失效
func AdminSession(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(AdminSessionHeader)
		if token == "" {
			response.AuthError(c, "请先登录管理后台")
			c.Abort()
			return
		}

		adminID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) {
				response.AuthError(c, err.Error())
			} else {
				response.ServerError(c, "会话校验失败")
			}
			c.Abort()
			return
		}

		c.Set(AdminIDKey, adminID)
		c.Next()
	}
}

// GetAdminID 从上下文获取管理员 ID
func GetAdminID(c *gin.Context) (int64, bool) {
	adminID, exists := c.Get(AdminIDKey)
	if !exists {
		return 0, false
	}
	id, ok := adminID.(int64)
	return id, ok
}
