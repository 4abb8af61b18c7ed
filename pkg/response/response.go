package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应包装
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 200 成功
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "ok", Data: data})
}

// BadRequest 400 参数或业务校验失败
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: message})
}

// Unauthorized 401 未认证
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: message})
}

// Forbidden 403 无权限
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{Code: http.StatusForbidden, Message: message})
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: message})
}

// Conflict 409 状态冲突
func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Response{Code: http.StatusConflict, Message: message})
}

// InternalError 500 服务端错误
func InternalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: err.Error()})
}

// TooManyRequests 429 触发限流
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Message: message})
}
