package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/giftshop-console/internal/service"
	"github.com/d60-Lab/giftshop-console/internal/session"
	"github.com/d60-Lab/giftshop-console/pkg/response"
)

// Auth 解析 Bearer 令牌并把会话身份注入请求上下文。
// 令牌缺失/无效/会话过期一律 401。
func Auth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		info, err := auth.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Request = c.Request.WithContext(session.WithUserInfo(c.Request.Context(), info))
		c.Next()
	}
}
