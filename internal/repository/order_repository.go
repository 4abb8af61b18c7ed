package repository

import (
	"context"

	"github.com/d60-Lab/giftshop-console/internal/model"
	"github.com/d60-Lab/giftshop-console/internal/status"
)

// OrderQuery 订单列表查询条件；空字符串过滤项不参与查询
type OrderQuery struct {
	Page          int                // 1-based
	Limit         int                // 每页条数
	CustomerName  string             // 模糊匹配
	CustomerPhone string             // 模糊匹配
	Status        status.OrderStatus // 精确匹配，空值表示全部
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单（含行项目）
	Create(ctx context.Context, order *model.Order) error

	// List 按条件分页查询订单，返回当前页数据与总数
	List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error)

	// Get 根据订单ID查询订单详情（含行项目）
	Get(ctx context.Context, orderID int64) (*model.Order, error)

	// UpdateStatus 更新订单状态；trackingID 为 nil 时保持原值。
	// 相同参数重试得到相同终态（幂等）。
	UpdateStatus(ctx context.Context, orderID int64, s status.OrderStatus, trackingID *string) error

	// CountItemsByCustomerStatus 统计某客户处于指定状态订单的行项目总数
	CountItemsByCustomerStatus(ctx context.Context, customerID int64, s status.OrderStatus) (int64, error)

	// Close 关闭数据库连接
	Close() error
}
