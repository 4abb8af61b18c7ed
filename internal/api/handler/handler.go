package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/giftshop-console/internal/service"
	"github.com/d60-Lab/giftshop-console/internal/status"
)

// Handler 聚合全部 HTTP 处理器依赖
type Handler struct {
	orderService service.OrderService
	authService  service.AuthService
}

func New(orders service.OrderService, auth service.AuthService) *Handler {
	return &Handler{orderService: orders, authService: auth}
}

// RegisterValidators 注册自定义校验规则（orderstatus：合法订单状态，大小写不敏感）
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
			_, ok := status.Parse(fl.Field().String())
			return ok
		})
	}
}
