package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/giftshop-console/internal/model"
)

// ErrUserNotFound 管理员账号不存在
var ErrUserNotFound = errors.New("admin user not found")

// AdminUserRepository 管理员账号仓储接口
type AdminUserRepository interface {
	Create(ctx context.Context, user *model.AdminUser) error
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
}

// GormAdminUserRepository 基于 gorm 的管理员仓储实现
type GormAdminUserRepository struct {
	db *gorm.DB
}

func NewGormAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &GormAdminUserRepository{db: db}
}

func (r *GormAdminUserRepository) Create(ctx context.Context, user *model.AdminUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormAdminUserRepository) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var user model.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
