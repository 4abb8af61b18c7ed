package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/giftshop-console/internal/repository"
	"github.com/d60-Lab/giftshop-console/internal/service"
	"github.com/d60-Lab/giftshop-console/internal/status"
	"github.com/d60-Lab/giftshop-console/pkg/response"
)

type listOrdersQuery struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
	CustomerName  string `form:"customerName"`
	CustomerPhone string `form:"customerPhone"`
	Status        string `form:"status" binding:"omitempty,orderstatus"`
}

// ListOrders 分页查询订单
// @Summary 订单列表
// @Tags 订单
// @Produce json
// @Param page query int false "页码（1-based）" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param customerName query string false "客户姓名（模糊）"
// @Param customerPhone query string false "客户电话（模糊）"
// @Param status query string false "订单状态" Enums(pending,processing,shipped,delivered,returned,cancelled,completed)
// @Success 200 {object} response.Response{data=service.OrdersPage}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	st, _ := status.Parse(q.Status) // 空串保持零值，表示不过滤
	page, err := h.orderService.List(c.Request.Context(), repository.OrderQuery{
		Page:          q.Page,
		Limit:         q.Limit,
		CustomerName:  q.CustomerName,
		CustomerPhone: q.CustomerPhone,
		Status:        st,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, page)
}

// GetOrder 查询订单详情
// @Summary 订单详情（含客户历史统计）
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=service.OrderDetail}
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	detail, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, detail)
}

type updateStatusRequest struct {
	Status     string `json:"status" binding:"required,orderstatus"`
	TrackingID string `json:"trackingId"`
}

// UpdateOrderStatus 变更订单状态
// @Summary 订单状态变更（服务端校验转换表/运单号/权限）
// @Tags 订单
// @Accept json
// @Produce json
// @Param id path int true "订单ID"
// @Param request body updateStatusRequest true "目标状态与可选运单号"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/orders/{id}/status [patch]
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err = h.orderService.UpdateStatus(c.Request.Context(), id, req.Status, req.TrackingID)
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, repository.ErrOrderNotFound):
		response.NotFound(c, "order not found")
	case errors.Is(err, service.ErrTransitionNotAllowed):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrUnknownStatus), errors.Is(err, service.ErrTrackingRequired):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrCompletionForbidden):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
