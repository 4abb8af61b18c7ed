package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/giftshop-console/internal/service"
	"github.com/d60-Lab/giftshop-console/pkg/response"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login 管理员登录
// @Summary 登录并签发令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录凭据"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 登出并销毁会话
// @Summary 登出
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/users/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		response.Unauthorized(c, "missing bearer token")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}
	response.Success(c, nil)
}
