package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/giftshop-console/internal/model"
	"github.com/d60-Lab/giftshop-console/internal/status"
)

// ErrOrderNotFound 订单不存在（已被删除或ID非法）
var ErrOrderNotFound = errors.New("order not found")

// GormOrderRepository 基于 gorm 的订单仓储实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建订单仓储
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 创建订单
func (r *GormOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// List 按条件分页查询订单
func (r *GormOrderRepository) List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}

	tx := r.db.WithContext(ctx).Model(&model.Order{})
	if q.CustomerName != "" {
		tx = tx.Where("customer_name LIKE ?", "%"+q.CustomerName+"%")
	}
	if q.CustomerPhone != "" {
		tx = tx.Where("customer_phone LIKE ?", "%"+q.CustomerPhone+"%")
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status.String())
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := tx.
		Preload("Items").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Get 根据订单ID查询订单详情
func (r *GormOrderRepository) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus 更新订单状态；目标订单不存在时返回 ErrOrderNotFound
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID int64, s status.OrderStatus, trackingID *string) error {
	updates := map[string]interface{}{"status": s.String()}
	if trackingID != nil {
		updates["tracking_id"] = *trackingID
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Select("id").Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		return tx.Model(&model.Order{}).Where("id = ?", orderID).Updates(updates).Error
	})
}

// CountItemsByCustomerStatus 统计客户在某状态下的行项目数量
func (r *GormOrderRepository) CountItemsByCustomerStatus(ctx context.Context, customerID int64, s status.OrderStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND orders.status = ?", customerID, s.String()).
		Count(&total).Error
	return total, err
}

// Close 关闭数据库连接
func (r *GormOrderRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema 初始化数据库表结构
func (r *GormOrderRepository) InitSchema() error {
	if err := r.db.AutoMigrate(&model.Order{}, &model.OrderItem{}); err != nil {
		return fmt.Errorf("failed to migrate order tables: %w", err)
	}
	return nil
}
