package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_referral_server/internal/pkg/jwt"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
)

// Auth 学员 JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.AuthError(c, "登录已过期，请重新登录")
			} else {
				response.AuthError(c, "认证失败")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
