package api

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "github.com/d60-Lab/giftshop-console/docs" // swagger 文档注册
	"github.com/d60-Lab/giftshop-console/internal/api/handler"
	"github.com/d60-Lab/giftshop-console/internal/api/middleware"
	"github.com/d60-Lab/giftshop-console/internal/service"
	"github.com/d60-Lab/giftshop-console/pkg/logger"
	"github.com/d60-Lab/giftshop-console/pkg/response"
)

// RouterOptions 路由装配参数
type RouterOptions struct {
	Debug      bool
	LoginRate  float64
	LoginBurst int
}

// NewRouter 装配 gin 引擎：中间件、swagger 与全部业务路由
func NewRouter(h *handler.Handler, auth service.AuthService, opts RouterOptions) *gin.Engine {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()
	r.Use(requestLog())
	r.Use(recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("giftshop-console"))

	r.GET("/healthz", func(c *gin.Context) { response.Success(c, gin.H{"status": "up"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		users.POST("/login", middleware.RateLimit(rate.Limit(opts.LoginRate), opts.LoginBurst), h.Login)
		users.POST("/logout", h.Logout)

		orders := v1.Group("/orders", middleware.Auth(auth))
		{
			orders.GET("", h.ListOrders)
			orders.GET("/:id", h.GetOrder)
			orders.PATCH("/:id/status", h.UpdateOrderStatus)
		}
	}

	return r
}

// requestLog 访问日志（zap）
func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", time.Since(start)),
		)
	}
}

// recovery panic 恢复：上报 Sentry 后返回 500
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				sentry.CurrentHub().Recover(err)
				logger.Error("panic recovered", zap.Any("err", err))
				c.AbortWithStatus(500)
			}
		}()
		c.Next()
	}
}
