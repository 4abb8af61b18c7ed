package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/giftshop-console/pkg/response"
)

// RateLimit 按客户端IP限流（登录接口防爆破）
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		lim, ok := limiters[ip]
		if !ok {
			lim = rate.NewLimiter(r, burst)
			limiters[ip] = lim
		}
		mu.Unlock()

		if !lim.Allow() {
			response.TooManyRequests(c, "too many requests")
			return
		}
		c.Next()
	}
}
