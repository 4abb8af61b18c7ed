package model

import "time"

// AdminUser 后台管理员账号
type AdminUser struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(64);not null"`
	Email     string    `json:"email" gorm:"type:varchar(128);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(128);not null"` // bcrypt hash
	Role      string    `json:"role" gorm:"type:varchar(32);not null;default:'admin'"` // admin / super_admin
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AdminUser) TableName() string { return "admin_users" }
