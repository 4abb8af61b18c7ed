package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/giftshop-console/internal/model"
	"github.com/d60-Lab/giftshop-console/internal/repository"
	"github.com/d60-Lab/giftshop-console/internal/session"
	"github.com/d60-Lab/giftshop-console/internal/status"
	"github.com/d60-Lab/giftshop-console/pkg/logger"
)

var (
	ErrUnknownStatus        = errors.New("unknown order status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrTrackingRequired     = errors.New("tracking id required for shipped")
	ErrCompletionForbidden  = errors.New("completed requires super_admin")
)

// OrdersPage 一页订单与分页信息
type OrdersPage struct {
	Data  []model.Order `json:"data"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

// CustomerStats 客户历史成交统计（详情页展示用）
type CustomerStats struct {
	TotalCompletedItems int64 `json:"totalCompletedItems"`
	TotalReturnedItems  int64 `json:"totalReturnedItems"`
}

// OrderDetail 订单详情 = 订单 + 客户统计
type OrderDetail struct {
	model.Order
	CustomerStats *CustomerStats `json:"customerStats,omitempty"`
}

// OrderService 订单查询与状态变更服务
type OrderService interface {
	List(ctx context.Context, q repository.OrderQuery) (*OrdersPage, error)
	Get(ctx context.Context, orderID int64) (*OrderDetail, error)
	// UpdateStatus 服务端兜底校验与提交：转换表成员、shipped 运单号、
	// completed 权限（来自请求上下文的会话角色）。
	UpdateStatus(ctx context.Context, orderID int64, rawStatus, trackingID string) error
}

type orderService struct {
	repo  repository.OrderRepository
	roles session.RoleProvider
	cache *redis.Client
	ttl   time.Duration
}

// NewOrderService 创建订单服务；cache 可为 nil（关闭列表缓存）
func NewOrderService(repo repository.OrderRepository, roles session.RoleProvider, cache *redis.Client, ttl time.Duration) OrderService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &orderService{repo: repo, roles: roles, cache: cache, ttl: ttl}
}

const listGenKey = "orders:list:gen"

// listCacheKey 缓存键包含代数号，状态提交后整体失效
func (s *orderService) listCacheKey(ctx context.Context, q repository.OrderQuery) string {
	gen, _ := s.cache.Get(ctx, listGenKey).Int64()
	return fmt.Sprintf("orders:list:%d:%d:%d:%s:%s:%s", gen, q.Page, q.Limit, q.CustomerName, q.CustomerPhone, q.Status)
}

func (s *orderService) List(ctx context.Context, q repository.OrderQuery) (*OrdersPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}

	var key string
	if s.cache != nil {
		key = s.listCacheKey(ctx, q)
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var page OrdersPage
			if uErr := json.Unmarshal(data, &page); uErr == nil {
				return &page, nil
			}
		}
	}

	orders, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	page := &OrdersPage{Data: orders, Page: q.Page, Limit: q.Limit, Total: total}

	if s.cache != nil {
		if payload, mErr := json.Marshal(page); mErr == nil {
			_ = s.cache.Set(ctx, key, payload, s.ttl).Err()
		}
	}
	return page, nil
}

func (s *orderService) Get(ctx context.Context, orderID int64) (*OrderDetail, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	detail := &OrderDetail{Order: *order}

	completed, cErr := s.repo.CountItemsByCustomerStatus(ctx, order.CustomerID, status.Completed)
	returned, rErr := s.repo.CountItemsByCustomerStatus(ctx, order.CustomerID, status.Returned)
	if cErr == nil && rErr == nil {
		detail.CustomerStats = &CustomerStats{TotalCompletedItems: completed, TotalReturnedItems: returned}
	} else {
		// 统计失败不阻塞详情
		logger.Warn("customer stats unavailable", zap.Int64("order", orderID))
	}
	return detail, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, rawStatus, trackingID string) error {
	next, ok := status.Parse(rawStatus)
	if !ok {
		return ErrUnknownStatus
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	current, _ := status.Parse(order.Status)
	if !status.CanTransition(current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, order.Status, next)
	}

	tracking := strings.TrimSpace(trackingID)
	if next == status.Shipped && tracking == "" {
		return ErrTrackingRequired
	}
	if next == status.Completed && !s.roles.HasElevatedPrivilege(ctx) {
		return ErrCompletionForbidden
	}

	var trackingPtr *string
	if tracking != "" {
		trackingPtr = &tracking
	}
	if err := s.repo.UpdateStatus(ctx, orderID, next, trackingPtr); err != nil {
		return err
	}

	if s.cache != nil {
		// 推进代数号使所有列表缓存失效
		if err := s.cache.Incr(ctx, listGenKey).Err(); err != nil {
			logger.Warn("list cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}
